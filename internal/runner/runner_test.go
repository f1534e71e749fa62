package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/spendmigrate/internal/clarify"
	"github.com/cleared-dev/spendmigrate/internal/importer"
	"github.com/cleared-dev/spendmigrate/internal/migrate"
	"github.com/cleared-dev/spendmigrate/internal/migrationlog"
	"github.com/cleared-dev/spendmigrate/internal/model"
	"github.com/cleared-dev/spendmigrate/internal/store"
)

func testProfile(userID string, kv ...string) model.Profile {
	p := model.Profile{UserID: userID}
	for i := 0; i+1 < len(kv); i += 2 {
		p.Spend.Set(kv[i], decimal.RequireFromString(kv[i+1]))
	}
	return p
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func seed(t *testing.T, root string) store.Store {
	t.Helper()
	s := store.NewDir(root)
	ctx := context.Background()

	bad := testProfile("u-bad", "dining", "10")
	bad.Spend.SetEntry(model.Entry{Category: "travel", Raw: `"lots"`})

	for _, p := range []model.Profile{
		testProfile("u-legacy", "travel", "2000", "dining", "1500"),
		testProfile("u-new", "international_travel", "0", "domestic_transport", "1500"),
		testProfile("u-amb", "travel", "100", "international_travel", "50"),
		bad,
	} {
		require.NoError(t, s.Put(ctx, p))
	}
	return s
}

func TestRun_MigratesBatch(t *testing.T) {
	root := t.TempDir()
	s := seed(t, root)
	q := clarify.NewQueue(root)
	ctx := context.Background()

	sum, err := Run(ctx, Options{Store: s, Queue: q, RepoRoot: root, RunID: "run-1", Workers: 2, Now: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 1, sum.Migrated)
	assert.Equal(t, 1, sum.Unchanged)
	assert.Equal(t, 1, sum.Ambiguous)
	assert.Equal(t, 1, sum.Queued)
	assert.Equal(t, 1, sum.Invalid)

	got, err := s.Get(ctx, "u-legacy")
	require.NoError(t, err)
	assert.Equal(t, []string{"international_travel", "domestic_transport", "dining"}, got.Spend.Keys())
	assert.Equal(t, "1400", got.Spend.Amount("international_travel").String())
	assert.Equal(t, "600", got.Spend.Amount("domestic_transport").String())

	amb, err := s.Get(ctx, "u-amb")
	require.NoError(t, err)
	assert.True(t, amb.Spend.Has("travel"), "ambiguous profile is left as is")

	pending, err := q.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "u-amb", pending[0].UserID)
	assert.Equal(t, "100", pending[0].Legacy.String())

	entries, err := migrationlog.Read(root)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	counts := migrationlog.CountByAction(entries)
	assert.Equal(t, 1, counts[migrationlog.ActionMigrated])
	assert.Equal(t, 1, counts[migrationlog.ActionUnchanged])
	assert.Equal(t, 1, counts[migrationlog.ActionClarificationRequested])
	assert.Equal(t, 1, counts[migrationlog.ActionInvalid])
	for _, e := range entries {
		assert.Equal(t, "run-1", e.RunID)
	}
}

func TestRun_Idempotent(t *testing.T) {
	root := t.TempDir()
	s := seed(t, root)
	q := clarify.NewQueue(root)
	ctx := context.Background()

	_, err := Run(ctx, Options{Store: s, Queue: q, RepoRoot: root, RunID: "run-1", Workers: 4, Now: fixedNow})
	require.NoError(t, err)
	first, err := s.Get(ctx, "u-legacy")
	require.NoError(t, err)

	sum, err := Run(ctx, Options{Store: s, Queue: q, RepoRoot: root, RunID: "run-2", Workers: 4, Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Migrated)
	assert.Equal(t, 2, sum.Unchanged)
	assert.Equal(t, 1, sum.Ambiguous)
	assert.Equal(t, 0, sum.Queued, "pending user is not queued twice")

	second, err := s.Get(ctx, "u-legacy")
	require.NoError(t, err)
	assert.True(t, first.Spend.Equal(second.Spend))

	pending, err := q.Pending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	root := t.TempDir()
	s := seed(t, root)
	q := clarify.NewQueue(root)
	ctx := context.Background()

	sum, err := Run(ctx, Options{Store: s, Queue: q, RepoRoot: root, RunID: "dry", DryRun: true, Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Migrated)
	assert.Equal(t, 1, sum.Ambiguous)

	got, err := s.Get(ctx, "u-legacy")
	require.NoError(t, err)
	assert.True(t, got.Spend.Has("travel"))

	pending, err := q.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	entries, err := migrationlog.Read(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_SingleUser(t *testing.T) {
	root := t.TempDir()
	s := seed(t, root)
	ctx := context.Background()

	sum, err := Run(ctx, Options{Store: s, Queue: clarify.NewQueue(root), RepoRoot: root, UserID: "u-legacy", Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 1, sum.Migrated)
	require.Len(t, sum.Outcomes, 1)
	assert.Equal(t, "travel 2000 -> international_travel 1400, domestic_transport 600", sum.Outcomes[0].Details)
}

func TestRun_ImportedTrailingZeros(t *testing.T) {
	root := t.TempDir()
	s := store.NewDir(root)
	ctx := context.Background()

	profiles, err := (&importer.CSVParser{}).Parse(strings.NewReader("user_id,category,amount\nu-1,travel,2000.50\n"))
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	require.NoError(t, s.Put(ctx, profiles[0]))

	sum, err := Run(ctx, Options{Store: s, Queue: clarify.NewQueue(root), RepoRoot: root, Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Migrated)

	got, err := s.Get(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "1400.35", model.FormatAmount(got.Spend.Amount("international_travel")))
	assert.Equal(t, "600.15", model.FormatAmount(got.Spend.Amount("domestic_transport")))
}

var errDiskFull = errors.New("disk full")

// failingStore fails Put for one user.
type failingStore struct {
	store.Store
	userID string
}

func (f *failingStore) Put(ctx context.Context, p model.Profile) error {
	if p.UserID == f.userID {
		return errDiskFull
	}
	return f.Store.Put(ctx, p)
}

func TestRun_StoreFailureKeepsLogRows(t *testing.T) {
	root := t.TempDir()
	dir := store.NewDir(root)
	ctx := context.Background()
	for _, p := range []model.Profile{
		testProfile("u-a", "travel", "100"),
		testProfile("u-b", "travel", "200"),
		testProfile("u-c", "travel", "300"),
	} {
		require.NoError(t, dir.Put(ctx, p))
	}
	s := &failingStore{Store: dir, userID: "u-c"}

	sum, err := Run(ctx, Options{Store: s, Queue: clarify.NewQueue(root), RepoRoot: root, RunID: "run-1", Workers: 1, Now: fixedNow})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errDiskFull))
	assert.Equal(t, 2, sum.Migrated)

	entries, err := migrationlog.Read(root)
	require.NoError(t, err)
	logged := make(map[string]migrationlog.Action)
	for _, e := range entries {
		logged[e.UserID] = e.Action
	}
	assert.Equal(t, migrationlog.ActionMigrated, logged["u-a"])
	assert.Equal(t, migrationlog.ActionMigrated, logged["u-b"])
	assert.NotContains(t, logged, "u-c")

	a, err := dir.Get(ctx, "u-a")
	require.NoError(t, err)
	assert.False(t, a.Spend.Has("travel"))
	c, err := dir.Get(ctx, "u-c")
	require.NoError(t, err)
	assert.True(t, c.Spend.Has("travel"))
}

func TestRun_UnknownUser(t *testing.T) {
	root := t.TempDir()
	s := seed(t, root)

	_, err := Run(context.Background(), Options{Store: s, RepoRoot: root, UserID: "nobody"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestRun_EmptyStore(t *testing.T) {
	root := t.TempDir()
	sum, err := Run(context.Background(), Options{Store: store.NewDir(root), RepoRoot: root})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Total)
}

func TestRun_NilStore(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)
}

func TestResolve_SplitAdd(t *testing.T) {
	root := t.TempDir()
	s := seed(t, root)
	q := clarify.NewQueue(root)
	ctx := context.Background()

	sum, err := Run(ctx, Options{Store: s, Queue: q, RepoRoot: root, RunID: "run-1", Now: fixedNow})
	require.NoError(t, err)
	var clrID string
	for _, o := range sum.Outcomes {
		if o.UserID == "u-amb" {
			clrID = o.ClarificationID
		}
	}
	require.NotEmpty(t, clrID)

	p, err := Resolve(ctx, ResolveOptions{
		Store:           s,
		Queue:           q,
		RepoRoot:        root,
		RunID:           "run-2",
		ClarificationID: clrID,
		Resolution:      migrate.Resolution{Kind: migrate.ResolveSplitAndAdd},
		Now:             fixedNow,
	})
	require.NoError(t, err)
	assert.False(t, p.Spend.Has("travel"))
	assert.Equal(t, "120", p.Spend.Amount("international_travel").String())
	assert.Equal(t, "30", p.Spend.Amount("domestic_transport").String())

	stored, err := s.Get(ctx, "u-amb")
	require.NoError(t, err)
	assert.True(t, p.Spend.Equal(stored.Spend))

	c, err := q.Get(clrID)
	require.NoError(t, err)
	assert.Equal(t, model.ClarificationResolved, c.Status)
	assert.Equal(t, "split-add", c.Resolution)

	entries, err := migrationlog.Read(root)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, migrationlog.ActionResolved, last.Action)
	assert.Equal(t, "u-amb", last.UserID)

	_, err = Resolve(ctx, ResolveOptions{Store: s, Queue: q, RepoRoot: root, ClarificationID: clrID,
		Resolution: migrate.Resolution{Kind: migrate.ResolveKeepExisting}})
	assert.True(t, errors.Is(err, ErrAlreadyResolved))
}

func TestResolve_UnknownClarification(t *testing.T) {
	root := t.TempDir()
	_, err := Resolve(context.Background(), ResolveOptions{
		Store:           store.NewDir(root),
		Queue:           clarify.NewQueue(root),
		RepoRoot:        root,
		ClarificationID: "CLR-2026-03-001",
		Resolution:      migrate.Resolution{Kind: migrate.ResolveKeepExisting},
	})
	assert.True(t, errors.Is(err, clarify.ErrNotFound))
}

func TestResolve_ExplicitNegativeRejected(t *testing.T) {
	root := t.TempDir()
	s := seed(t, root)
	q := clarify.NewQueue(root)
	ctx := context.Background()

	_, err := Run(ctx, Options{Store: s, Queue: q, RepoRoot: root, Now: fixedNow})
	require.NoError(t, err)
	pending, err := q.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = Resolve(ctx, ResolveOptions{
		Store:           s,
		Queue:           q,
		RepoRoot:        root,
		ClarificationID: pending[0].ID,
		Resolution: migrate.Resolution{
			Kind:          migrate.ResolveExplicit,
			International: decimal.RequireFromString("-1"),
			Domestic:      decimal.RequireFromString("5"),
		},
	})
	assert.True(t, errors.Is(err, migrate.ErrInvalidAmount))

	still, err := q.Pending()
	require.NoError(t, err)
	assert.Len(t, still, 1)
}
