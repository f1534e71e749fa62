package runner

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/cleared-dev/spendmigrate/internal/clarify"
	"github.com/cleared-dev/spendmigrate/internal/logger"
	"github.com/cleared-dev/spendmigrate/internal/migrate"
	"github.com/cleared-dev/spendmigrate/internal/migrationlog"
	"github.com/cleared-dev/spendmigrate/internal/model"
	"github.com/cleared-dev/spendmigrate/internal/store"
)

// ResolveOptions identifies a pending clarification and the user's answer.
type ResolveOptions struct {
	Store           store.Store
	Queue           *clarify.Queue
	RepoRoot        string
	RunID           string
	ClarificationID string
	Resolution      migrate.Resolution
	Now             func() time.Time
}

// ErrAlreadyResolved is returned when the clarification was answered before.
var ErrAlreadyResolved = errors.New("clarification already resolved")

// Resolve applies a clarification answer to the stored profile, marks the
// clarification resolved and logs the outcome. It returns the updated profile.
func Resolve(ctx context.Context, opts ResolveOptions) (model.Profile, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	c, err := opts.Queue.Get(opts.ClarificationID)
	if err != nil {
		return model.Profile{}, err
	}
	if c.Status == model.ClarificationResolved {
		return model.Profile{}, errors.Wrap(ErrAlreadyResolved, c.ID)
	}

	p, err := opts.Store.Get(ctx, c.UserID)
	if err != nil {
		return model.Profile{}, errors.Wrapf(err, "get profile %s", c.UserID)
	}

	res, err := migrate.Resolve(p.Spend, opts.Resolution)
	if err != nil {
		return model.Profile{}, errors.Wrapf(err, "resolve %s", c.ID)
	}
	if res.Changed() {
		p.Spend = res.Spend
		if err := opts.Store.Put(ctx, p); err != nil {
			return model.Profile{}, errors.Wrapf(err, "put profile %s", c.UserID)
		}
	}

	if err := opts.Queue.MarkResolved(c.ID, opts.Resolution); err != nil {
		return model.Profile{}, err
	}

	entry := migrationlog.Entry{
		Timestamp: now(),
		RunID:     opts.RunID,
		UserID:    c.UserID,
		Action:    migrationlog.ActionResolved,
		Details:   c.ID + ": " + opts.Resolution.String(),
	}
	if err := migrationlog.Append(opts.RepoRoot, []migrationlog.Entry{entry}); err != nil {
		return model.Profile{}, errors.Wrap(err, "append migration log")
	}

	logger.Info(ctx, "Clarification resolved",
		zap.String("clarification_id", c.ID),
		zap.String("user_id", c.UserID),
		zap.Stringer("resolution", opts.Resolution),
	)
	return p, nil
}
