package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"

	"github.com/cleared-dev/spendmigrate/internal/model"
	"github.com/cleared-dev/spendmigrate/internal/profile"
)

const profilesDir = "profiles"

// Dir stores each profile as <repoRoot>/profiles/<user_id>.json.
type Dir struct {
	root string
}

// NewDir creates a directory-backed store for a workspace root.
func NewDir(repoRoot string) *Dir {
	return &Dir{root: filepath.Join(repoRoot, profilesDir)}
}

func (d *Dir) path(userID string) string {
	return filepath.Join(d.root, userID+".json")
}

// Get reads one profile.
func (d *Dir) Get(_ context.Context, userID string) (model.Profile, error) {
	if err := CheckUserID(userID); err != nil {
		return model.Profile{}, err
	}
	return d.read(d.path(userID))
}

func (d *Dir) read(path string) (model.Profile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return model.Profile{}, errors.Wrap(ErrNotFound, filepath.Base(path))
	}
	if err != nil {
		return model.Profile{}, errors.Wrap(err, "read profile")
	}

	p, err := profile.DecodeProfile(data)
	if err != nil {
		return model.Profile{}, errors.Wrapf(err, "%s", filepath.Base(path))
	}

	if info, err := os.Stat(path); err == nil {
		p.UpdatedAt = info.ModTime().UTC()
	}
	return p, nil
}

// Put writes one profile, replacing any previous version.
func (d *Dir) Put(_ context.Context, p model.Profile) error {
	if err := CheckUserID(p.UserID); err != nil {
		return err
	}
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return errors.Wrap(err, "create profiles dir")
	}

	tmp, err := os.CreateTemp(d.root, "."+p.UserID+"-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp profile")
	}
	defer os.Remove(tmp.Name())

	data := append(profile.EncodeProfile(p), '\n')
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write profile")
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return errors.Wrap(err, "chmod profile")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close profile")
	}
	if err := os.Rename(tmp.Name(), d.path(p.UserID)); err != nil {
		return errors.Wrap(err, "replace profile")
	}
	return nil
}

// List returns every profile ordered by user id.
func (d *Dir) List(ctx context.Context) ([]model.Profile, error) {
	entries, err := os.ReadDir(d.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read profiles dir")
	}

	var out []model.Profile
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		p, err := d.read(filepath.Join(d.root, name))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Close is a no-op.
func (d *Dir) Close() error { return nil }
