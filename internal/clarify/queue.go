// Package clarify keeps the queue of spend profiles that need the user to say
// how their legacy travel amount should be applied.
package clarify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cleared-dev/spendmigrate/internal/id"
	"github.com/cleared-dev/spendmigrate/internal/migrate"
	"github.com/cleared-dev/spendmigrate/internal/model"
)

// ErrNotFound is returned when a clarification ID is not in the queue.
var ErrNotFound = errors.New("clarification not found")

const queueFile = "queue/clarifications.csv"

// Queue provides access to <repoRoot>/queue/clarifications.csv.
// It is not safe for concurrent use.
type Queue struct {
	repoRoot string
	now      func() time.Time
}

// NewQueue creates a Queue rooted at a workspace directory.
func NewQueue(repoRoot string) *Queue {
	return &Queue{repoRoot: repoRoot, now: time.Now}
}

// Path returns the queue file path.
func (q *Queue) Path() string {
	return filepath.Join(q.repoRoot, queueFile)
}

// All returns every clarification, pending and resolved.
func (q *Queue) All() ([]model.Clarification, error) {
	f, err := os.Open(q.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening clarification queue: %w", err)
	}
	defer f.Close()

	rows, err := ReadClarifications(f)
	if err != nil {
		return nil, fmt.Errorf("reading clarification queue: %w", err)
	}
	return rows, nil
}

// Pending returns clarifications still waiting for an answer.
func (q *Queue) Pending() ([]model.Clarification, error) {
	all, err := q.All()
	if err != nil {
		return nil, err
	}
	var out []model.Clarification
	for _, c := range all {
		if c.Status == model.ClarificationPending {
			out = append(out, c)
		}
	}
	return out, nil
}

// Get returns a clarification by ID.
func (q *Queue) Get(clarificationID string) (model.Clarification, error) {
	all, err := q.All()
	if err != nil {
		return model.Clarification{}, err
	}
	want := id.Normalize(clarificationID)
	for _, c := range all {
		if c.ID == want {
			return c, nil
		}
	}
	return model.Clarification{}, fmt.Errorf("%s: %w", clarificationID, ErrNotFound)
}

// Add queues a clarification for an ambiguous profile and returns its ID.
// A user who already has a pending clarification is not queued twice; the
// existing ID is returned with added=false.
func (q *Queue) Add(userID string, amb *migrate.AmbiguousMigrationError) (clarificationID string, added bool, err error) {
	all, err := q.All()
	if err != nil {
		return "", false, err
	}

	for _, c := range all {
		if c.UserID == userID && c.Status == model.ClarificationPending {
			return c.ID, false, nil
		}
	}

	now := q.now().UTC()
	seq := nextSeq(all, now.Year(), int(now.Month()))
	c := model.Clarification{
		ID:            id.FormatClarificationID(now.Year(), int(now.Month()), seq),
		UserID:        userID,
		Legacy:        amb.Legacy,
		International: amb.International,
		Domestic:      amb.Domestic,
		Status:        model.ClarificationPending,
		CreatedAt:     now,
	}

	if err := q.save(append(all, c)); err != nil {
		return "", false, err
	}
	return c.ID, true, nil
}

// MarkResolved records the resolution of a pending clarification.
func (q *Queue) MarkResolved(clarificationID string, resolution migrate.Resolution) error {
	all, err := q.All()
	if err != nil {
		return err
	}

	want := id.Normalize(clarificationID)
	for i := range all {
		if all[i].ID != want {
			continue
		}
		if all[i].Status == model.ClarificationResolved {
			return fmt.Errorf("clarification %s already resolved", want)
		}
		all[i].Status = model.ClarificationResolved
		all[i].ResolvedAt = q.now().UTC()
		all[i].Resolution = resolution.String()
		return q.save(all)
	}
	return fmt.Errorf("%s: %w", clarificationID, ErrNotFound)
}

// save rewrites the queue file through a temp file so readers never see a
// half-written queue.
func (q *Queue) save(rows []model.Clarification) error {
	path := q.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating queue dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".clarifications-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp queue file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("setting queue file mode: %w", err)
	}

	if err := WriteClarifications(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("writing clarification queue: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp queue file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing clarification queue: %w", err)
	}
	return nil
}

// nextSeq returns the next sequence number for a month.
func nextSeq(rows []model.Clarification, year, month int) int {
	maxSeq := 0
	for _, c := range rows {
		y, m, seq, err := id.ParseClarificationID(c.ID)
		if err != nil || y != year || m != month {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}
