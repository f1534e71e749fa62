// Package dashboard renders the migration status view: metric cards, a daily
// sparkline and the recent activity feed.
package dashboard

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/cleared-dev/spendmigrate/internal/clarify"
	"github.com/cleared-dev/spendmigrate/internal/migrationlog"
	"github.com/cleared-dev/spendmigrate/internal/model"
	"github.com/cleared-dev/spendmigrate/internal/store"
)

// DayCount is the number of profiles migrated or resolved on one day.
type DayCount struct {
	Day   time.Time
	Count int
}

// ViewState is everything Render needs. It is built once and passed down;
// renderers never read the workspace themselves.
type ViewState struct {
	Workspace string
	Total     int
	Legacy    int // profiles still carrying travel
	Migrated  int // profiles on the new schema
	Pending   int // clarifications waiting for an answer
	Resolved  int
	Invalid   int // invalid outcomes in the most recent run
	Daily     []DayCount
	Recent    []migrationlog.Entry
	Width     int
}

// BuildOptions controls how much history Build collects.
type BuildOptions struct {
	Workspace string
	Days      int // length of the daily series
	Recent    int // activity feed rows
	Width     int
	Now       time.Time
}

// Build gathers a ViewState from the store, the clarification queue and the
// migration log of a workspace.
func Build(ctx context.Context, s store.Store, q *clarify.Queue, repoRoot string, opts BuildOptions) (ViewState, error) {
	if opts.Days < 1 {
		opts.Days = 14
	}
	if opts.Recent < 1 {
		opts.Recent = 8
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	v := ViewState{Workspace: opts.Workspace, Width: opts.Width}

	total, legacy, err := countProfiles(ctx, s)
	if err != nil {
		return ViewState{}, err
	}
	v.Total = total
	v.Legacy = legacy
	v.Migrated = v.Total - v.Legacy

	all, err := q.All()
	if err != nil {
		return ViewState{}, errors.Wrap(err, "read clarifications")
	}
	for _, c := range all {
		if c.Status == model.ClarificationPending {
			v.Pending++
		} else {
			v.Resolved++
		}
	}

	entries, err := migrationlog.Read(repoRoot)
	if err != nil {
		return ViewState{}, errors.Wrap(err, "read migration log")
	}
	v.Daily = DailySeries(entries, opts.Now, opts.Days)
	v.Recent = migrationlog.Recent(entries, opts.Recent)
	v.Invalid = lastRunInvalid(entries)
	return v, nil
}

// profileCounter is implemented by stores that can count without decoding
// every profile.
type profileCounter interface {
	Count(ctx context.Context) (int, error)
	CountLegacy(ctx context.Context) (int, error)
}

func countProfiles(ctx context.Context, s store.Store) (total, legacy int, err error) {
	if c, ok := s.(profileCounter); ok {
		if total, err = c.Count(ctx); err != nil {
			return 0, 0, err
		}
		if legacy, err = c.CountLegacy(ctx); err != nil {
			return 0, 0, err
		}
		return total, legacy, nil
	}

	profiles, err := s.List(ctx)
	if err != nil {
		return 0, 0, errors.Wrap(err, "list profiles")
	}
	for _, p := range profiles {
		if p.IsLegacy() {
			legacy++
		}
	}
	return len(profiles), legacy, nil
}

// DailySeries counts migrated and resolved entries per UTC day for the days
// ending at now, oldest first.
func DailySeries(entries []migrationlog.Entry, now time.Time, days int) []DayCount {
	end := truncateDay(now)
	start := end.AddDate(0, 0, -(days - 1))

	series := make([]DayCount, days)
	for i := range series {
		series[i].Day = start.AddDate(0, 0, i)
	}
	for _, e := range entries {
		if e.Action != migrationlog.ActionMigrated && e.Action != migrationlog.ActionResolved {
			continue
		}
		d := truncateDay(e.Timestamp)
		if d.Before(start) || d.After(end) {
			continue
		}
		idx := int(d.Sub(start).Hours() / 24)
		series[idx].Count++
	}
	return series
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func lastRunInvalid(entries []migrationlog.Entry) int {
	runID := ""
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Action != migrationlog.ActionResolved && entries[i].Action != migrationlog.ActionImported {
			runID = entries[i].RunID
			break
		}
	}
	if runID == "" {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.RunID == runID && e.Action == migrationlog.ActionInvalid {
			n++
		}
	}
	return n
}
