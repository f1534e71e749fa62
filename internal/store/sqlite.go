package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"

	"github.com/cleared-dev/spendmigrate/internal/model"
	"github.com/cleared-dev/spendmigrate/internal/profile"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLite stores profiles as JSON documents in a SQLite database.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens or creates the database at dbPath.
func OpenSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, errors.Wrap(err, "create database dir")
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	// One writer at a time; concurrent callers queue in database/sql.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create schema")
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get reads one profile.
func (s *SQLite) Get(ctx context.Context, userID string) (model.Profile, error) {
	var doc, updated string
	err := s.db.QueryRowContext(ctx,
		"SELECT document, updated_at FROM profiles WHERE user_id = ?", userID,
	).Scan(&doc, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, errors.Wrap(ErrNotFound, userID)
	}
	if err != nil {
		return model.Profile{}, errors.Wrap(err, "query profile")
	}
	return decodeRow(userID, doc, updated)
}

// Put inserts or replaces one profile.
func (s *SQLite) Put(ctx context.Context, p model.Profile) error {
	if err := CheckUserID(p.UserID); err != nil {
		return err
	}
	legacy := 0
	if p.IsLegacy() {
		legacy = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO profiles (user_id, document, legacy, updated_at) VALUES (?, ?, ?, ?)`,
		p.UserID, string(profile.EncodeProfile(p)), legacy, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrap(err, "upsert profile")
	}
	return nil
}

// List returns every profile ordered by user id.
func (s *SQLite) List(ctx context.Context) ([]model.Profile, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT user_id, document, updated_at FROM profiles ORDER BY user_id")
	if err != nil {
		return nil, errors.Wrap(err, "query profiles")
	}
	defer func() { _ = rows.Close() }()

	var out []model.Profile
	for rows.Next() {
		var userID, doc, updated string
		if err := rows.Scan(&userID, &doc, &updated); err != nil {
			return nil, errors.Wrap(err, "scan profile")
		}
		p, err := decodeRow(userID, doc, updated)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of stored profiles.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count profiles")
	}
	return n, nil
}

// CountLegacy returns how many stored profiles still carry the travel key.
func (s *SQLite) CountLegacy(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles WHERE legacy = 1").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count legacy profiles")
	}
	return n, nil
}

func decodeRow(userID, doc, updated string) (model.Profile, error) {
	p, err := profile.DecodeProfile([]byte(doc))
	if err != nil {
		return model.Profile{}, errors.Wrapf(err, "profile %s", userID)
	}
	if ts, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		p.UpdatedAt = ts
	}
	return p, nil
}
