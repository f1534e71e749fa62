// Package store persists spend profiles, either as one JSON file per user or
// in a SQLite database.
package store

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/cleared-dev/spendmigrate/internal/config"
	"github.com/cleared-dev/spendmigrate/internal/model"
)

// ErrNotFound is returned when a profile does not exist.
var ErrNotFound = errors.New("profile not found")

// Store reads and writes spend profiles. Implementations are safe for
// concurrent use by multiple goroutines.
type Store interface {
	Get(ctx context.Context, userID string) (model.Profile, error)
	Put(ctx context.Context, p model.Profile) error
	List(ctx context.Context) ([]model.Profile, error)
	Close() error
}

// Open returns the store selected by cfg for a workspace root.
func Open(cfg *config.Config, repoRoot string) (Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendDir:
		return NewDir(repoRoot), nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLitePath(repoRoot))
	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// CheckUserID rejects IDs that cannot be used as a file name. Leading dots
// are reserved for hidden and temporary files, which Dir.List skips.
func CheckUserID(userID string) error {
	switch {
	case userID == "":
		return errors.New("empty user id")
	case strings.HasPrefix(userID, "."):
		return errors.Errorf("invalid user id %q: leading dot", userID)
	case strings.ContainsAny(userID, "/\\\x00"):
		return errors.Errorf("invalid user id %q", userID)
	}
	return nil
}
