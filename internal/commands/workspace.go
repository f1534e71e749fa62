package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cleared-dev/spendmigrate/internal/clarify"
	"github.com/cleared-dev/spendmigrate/internal/config"
	"github.com/cleared-dev/spendmigrate/internal/gitops"
	"github.com/cleared-dev/spendmigrate/internal/logger"
	"github.com/cleared-dev/spendmigrate/internal/store"
)

// workspace is an opened spendmigrate directory for one command invocation.
type workspace struct {
	root  string
	cfg   *config.Config
	store store.Store
	queue *clarify.Queue
	runID string
}

func openWorkspace(repoDir string) (*workspace, error) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(config.Path(root))
	if err != nil {
		return nil, fmt.Errorf("%s is not a spendmigrate workspace: %w", root, err)
	}
	if err := logger.Setup(cfg.Logging.Environment); err != nil {
		return nil, fmt.Errorf("setting up logger: %w", err)
	}

	s, err := store.Open(cfg, root)
	if err != nil {
		return nil, fmt.Errorf("opening profile store: %w", err)
	}

	return &workspace{
		root:  root,
		cfg:   cfg,
		store: s,
		queue: clarify.NewQueue(root),
		runID: uuid.NewString(),
	}, nil
}

// context returns ctx with a logger tagged with the run ID.
func (w *workspace) context(ctx context.Context) context.Context {
	return logger.WithFields(ctx, zap.String("run_id", w.runID))
}

func (w *workspace) Close() error {
	logger.Sync()
	return w.store.Close()
}

// commit records the workspace state when auto-commit is on. It returns an
// empty hash when nothing was committed.
func (w *workspace) commit(ctx context.Context, message string) (string, error) {
	if !w.cfg.Git.AutoCommit || !gitops.IsRepo(w.root) {
		return "", nil
	}
	author := gitops.Author{Name: w.cfg.Git.AuthorName, Email: w.cfg.Git.AuthorEmail}
	hash, err := gitops.CommitIfChanged(w.root, message, author)
	if err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}
	if hash != "" {
		logger.Debug(ctx, "Committed workspace", zap.String("commit", hash), zap.String("message", message))
	}
	return hash, nil
}
