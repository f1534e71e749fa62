// Package runner migrates every profile in a store in one batch.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/spendmigrate/internal/clarify"
	"github.com/cleared-dev/spendmigrate/internal/logger"
	"github.com/cleared-dev/spendmigrate/internal/migrate"
	"github.com/cleared-dev/spendmigrate/internal/migrationlog"
	"github.com/cleared-dev/spendmigrate/internal/model"
	"github.com/cleared-dev/spendmigrate/internal/store"
)

// Options configures a batch run.
type Options struct {
	Store    store.Store
	Queue    *clarify.Queue
	RepoRoot string
	RunID    string
	Workers  int
	DryRun   bool
	UserID   string // migrate a single profile when set
	Now      func() time.Time
}

// Outcome is what happened to one profile.
type Outcome struct {
	UserID          string
	Action          migrationlog.Action
	Details         string
	ClarificationID string
	Err             error
}

// Summary counts the outcomes of a run.
type Summary struct {
	RunID     string
	Total     int
	Migrated  int
	Unchanged int
	Ambiguous int
	Queued    int // new clarifications; re-runs do not queue a user twice
	Invalid   int
	Outcomes  []Outcome
}

// Run migrates profiles and writes the results back.
//
// Migrated profiles are stored, ambiguous ones are queued for clarification
// and every outcome is appended to the migration log. With DryRun nothing is
// written. Invalid or ambiguous profiles do not fail the run; store errors do.
func Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.Store == nil {
		return Summary{}, errors.New("runner: nil store")
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.RunID != "" {
		ctx = logger.WithFields(ctx, zap.String("run_id", opts.RunID))
	}

	profiles, err := load(ctx, opts)
	if err != nil {
		return Summary{}, err
	}

	outcomes := make([]Outcome, len(profiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range profiles {
		g.Go(func() error {
			o, err := migrateOne(gctx, opts, p)
			if err != nil {
				return errors.Wrapf(err, "profile %s", p.UserID)
			}
			outcomes[i] = o
			return nil
		})
	}
	// Profiles already written before a store failure still get their log rows.
	runErr := g.Wait()

	sum := Summary{RunID: opts.RunID, Total: len(profiles)}
	var entries []migrationlog.Entry
	var done []Outcome
	for i := range outcomes {
		o := &outcomes[i]
		if o.Action == "" {
			continue
		}
		switch o.Action {
		case migrationlog.ActionMigrated:
			sum.Migrated++
		case migrationlog.ActionUnchanged:
			sum.Unchanged++
		case migrationlog.ActionInvalid:
			sum.Invalid++
		case migrationlog.ActionClarificationRequested:
			sum.Ambiguous++
			if !opts.DryRun && opts.Queue != nil {
				var amb *migrate.AmbiguousMigrationError
				errors.As(o.Err, &amb)
				clrID, added, err := opts.Queue.Add(o.UserID, amb)
				if err != nil {
					runErr = errors.Join(runErr, errors.Wrapf(err, "queue clarification for %s", o.UserID))
					continue
				}
				o.ClarificationID = clrID
				o.Details = clrID + ": " + o.Details
				if added {
					sum.Queued++
					logger.Info(ctx, "Clarification queued",
						zap.String("user_id", o.UserID), zap.String("clarification_id", clrID))
				}
			}
		}
		entries = append(entries, migrationlog.Entry{
			Timestamp: now(),
			RunID:     opts.RunID,
			UserID:    o.UserID,
			Action:    o.Action,
			Details:   o.Details,
		})
		done = append(done, *o)
	}
	sum.Outcomes = done

	if !opts.DryRun {
		if err := migrationlog.Append(opts.RepoRoot, entries); err != nil {
			return sum, errors.Join(runErr, errors.Wrap(err, "append migration log"))
		}
	}
	if runErr != nil {
		logger.Error(ctx, "Migration run aborted", zap.Int("logged", len(entries)), zap.Error(runErr))
		return sum, runErr
	}

	logger.Info(ctx, "Migration run finished",
		zap.Int("total", sum.Total),
		zap.Int("migrated", sum.Migrated),
		zap.Int("unchanged", sum.Unchanged),
		zap.Int("ambiguous", sum.Ambiguous),
		zap.Int("invalid", sum.Invalid),
		zap.Bool("dry_run", opts.DryRun),
	)
	return sum, nil
}

func load(ctx context.Context, opts Options) ([]model.Profile, error) {
	if opts.UserID == "" {
		profiles, err := opts.Store.List(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "list profiles")
		}
		return profiles, nil
	}
	p, err := opts.Store.Get(ctx, opts.UserID)
	if err != nil {
		return nil, errors.Wrapf(err, "get profile %s", opts.UserID)
	}
	return []model.Profile{p}, nil
}

// migrateOne returns an error only for store failures; migration errors are
// reported through the outcome.
func migrateOne(ctx context.Context, opts Options, p model.Profile) (Outcome, error) {
	o := Outcome{UserID: p.UserID}
	before := p.Spend

	res, err := migrate.Migrate(p.Spend)
	switch {
	case errors.Is(err, migrate.ErrAmbiguousMigration):
		o.Action = migrationlog.ActionClarificationRequested
		o.Details = err.Error()
		o.Err = err
		logger.Debug(ctx, "Ambiguous profile", zap.String("user_id", p.UserID))
		return o, nil
	case errors.Is(err, migrate.ErrInvalidAmount):
		o.Action = migrationlog.ActionInvalid
		o.Details = err.Error()
		o.Err = err
		logger.Warn(ctx, "Invalid profile", zap.String("user_id", p.UserID), zap.Error(err))
		return o, nil
	case err != nil:
		return o, err
	}

	if !res.Changed() {
		o.Action = migrationlog.ActionUnchanged
		return o, nil
	}

	o.Action = migrationlog.ActionMigrated
	o.Details = describeSplit(before, res.Spend)
	if opts.DryRun {
		return o, nil
	}
	p.Spend = res.Spend
	if err := opts.Store.Put(ctx, p); err != nil {
		return o, err
	}
	logger.Debug(ctx, "Profile migrated", zap.String("user_id", p.UserID), zap.String("details", o.Details))
	return o, nil
}

func describeSplit(before, after model.Spend) string {
	return fmt.Sprintf("travel %s -> %s %s, %s %s",
		before.Amount(model.CategoryTravel),
		model.CategoryInternationalTravel, after.Amount(model.CategoryInternationalTravel),
		model.CategoryDomesticTransport, after.Amount(model.CategoryDomesticTransport),
	)
}
