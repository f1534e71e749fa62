package clarify

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/spendmigrate/internal/migrate"
	"github.com/cleared-dev/spendmigrate/internal/model"
)

func newTestQueue(t *testing.T, now time.Time) *Queue {
	t.Helper()
	q := NewQueue(t.TempDir())
	q.now = func() time.Time { return now }
	return q
}

func ambiguous(legacy, intl string) *migrate.AmbiguousMigrationError {
	return &migrate.AmbiguousMigrationError{
		Legacy:        decimal.RequireFromString(legacy),
		International: decimal.NullDecimal{Decimal: decimal.RequireFromString(intl), Valid: true},
	}
}

func TestQueue_EmptyWhenMissing(t *testing.T) {
	q := NewQueue(t.TempDir())
	all, err := q.All()
	require.NoError(t, err)
	assert.Nil(t, all)
}

func TestQueue_AddAssignsSequentialIDs(t *testing.T) {
	q := newTestQueue(t, time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))

	id1, added, err := q.Add("u1", ambiguous("100", "50"))
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "CLR-2026-10-001", id1)

	id2, added, err := q.Add("u2", ambiguous("200", "10"))
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "CLR-2026-10-002", id2)

	pending, err := q.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "u1", pending[0].UserID)
	assert.Equal(t, "100", pending[0].Legacy.String())
	assert.True(t, pending[0].International.Valid)
	assert.False(t, pending[0].Domestic.Valid)
}

func TestQueue_AddIsIdempotentPerUser(t *testing.T) {
	q := newTestQueue(t, time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))

	id1, _, err := q.Add("u1", ambiguous("100", "50"))
	require.NoError(t, err)

	id2, added, err := q.Add("u1", ambiguous("100", "50"))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, id1, id2)

	all, err := q.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestQueue_SequenceRestartsPerMonth(t *testing.T) {
	q := newTestQueue(t, time.Date(2026, 10, 31, 9, 0, 0, 0, time.UTC))
	_, _, err := q.Add("u1", ambiguous("1", "1"))
	require.NoError(t, err)

	q.now = func() time.Time { return time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC) }
	id2, _, err := q.Add("u2", ambiguous("1", "1"))
	require.NoError(t, err)
	assert.Equal(t, "CLR-2026-11-001", id2)
}

func TestQueue_MarkResolved(t *testing.T) {
	q := newTestQueue(t, time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
	cid, _, err := q.Add("u1", ambiguous("100", "50"))
	require.NoError(t, err)

	err = q.MarkResolved(strings.ToLower(cid), migrate.Resolution{Kind: migrate.ResolveSplitAndAdd})
	require.NoError(t, err)

	c, err := q.Get(cid)
	require.NoError(t, err)
	assert.Equal(t, model.ClarificationResolved, c.Status)
	assert.Equal(t, "split-add", c.Resolution)
	assert.False(t, c.ResolvedAt.IsZero())

	pending, err := q.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	err = q.MarkResolved(cid, migrate.Resolution{Kind: migrate.ResolveKeepExisting})
	assert.Error(t, err, "resolving twice should fail")

	// A resolved user can be queued again.
	_, added, err := q.Add("u1", ambiguous("7", "1"))
	require.NoError(t, err)
	assert.True(t, added)
}

func TestQueue_GetUnknown(t *testing.T) {
	q := NewQueue(t.TempDir())
	_, err := q.Get("CLR-2026-10-001")
	assert.ErrorIs(t, err, ErrNotFound)

	err = q.MarkResolved("CLR-2026-10-001", migrate.Resolution{Kind: migrate.ResolveKeepExisting})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueue_FileFormat(t *testing.T) {
	q := newTestQueue(t, time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC))
	_, _, err := q.Add("u1", ambiguous("100", "50"))
	require.NoError(t, err)

	data, err := os.ReadFile(q.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, Header, lines[0])
	assert.Equal(t, "CLR-2026-10-001,u1,100,50,,pending,2026-10-17T09:00:00Z,,", lines[1])
}

func TestUnmarshalClarification_Errors(t *testing.T) {
	good := []string{"CLR-2026-10-001", "u1", "100", "", "", "pending", "", "", ""}
	_, err := UnmarshalClarification(good)
	require.NoError(t, err)

	bad := func(col int, v string) []string {
		row := append([]string(nil), good...)
		row[col] = v
		return row
	}
	for _, row := range [][]string{
		bad(colLegacy, "abc"),
		bad(colIntl, "x"),
		bad(colDomestic, "y"),
		bad(colStatus, "done"),
		bad(colCreatedAt, "yesterday"),
		bad(colResolvedAt, "tomorrow"),
		good[:3],
	} {
		_, err := UnmarshalClarification(row)
		assert.Error(t, err, "row %v", row)
	}
}
