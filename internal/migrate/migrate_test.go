package migrate

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/spendmigrate/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// spend builds a profile from alternating category/amount strings.
func spend(kv ...string) model.Spend {
	var s model.Spend
	for i := 0; i+1 < len(kv); i += 2 {
		s.Set(kv[i], dec(kv[i+1]))
	}
	return s
}

func TestMigrate_Example(t *testing.T) {
	in := spend("travel", "2000", "dining", "1500")

	res, err := Migrate(in)
	require.NoError(t, err)

	assert.Equal(t, OutcomeMigrated, res.Outcome)
	assert.True(t, res.Changed())
	assert.Equal(t, []string{"international_travel", "domestic_transport", "dining"}, res.Spend.Keys())
	assert.Equal(t, "1400", res.Spend.Amount("international_travel").String())
	assert.Equal(t, "600", res.Spend.Amount("domestic_transport").String())
	assert.Equal(t, "1500", res.Spend.Amount("dining").String())
	assert.False(t, res.Spend.Has("travel"))
}

func TestMigrate_DoesNotModifyInput(t *testing.T) {
	in := spend("travel", "2000", "dining", "1500")
	_, err := Migrate(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"travel", "dining"}, in.Keys())
}

func TestMigrate_Idempotent(t *testing.T) {
	first, err := Migrate(spend("groceries", "1200", "travel", "999", "fuel", "300"))
	require.NoError(t, err)

	second, err := Migrate(first.Spend)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, second.Outcome)
	assert.False(t, second.Changed())
	assert.True(t, first.Spend.Equal(second.Spend))
}

func TestMigrate_NoTravelPassesThrough(t *testing.T) {
	in := spend("international_travel", "50", "dining", "10")
	res, err := Migrate(in)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchanged, res.Outcome)
	assert.True(t, in.Equal(res.Spend))
}

func TestMigrate_Empty(t *testing.T) {
	res, err := Migrate(model.Spend{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Spend.Len())
	assert.Equal(t, OutcomeUnchanged, res.Outcome)
}

func TestMigrate_ConservationAndRatio(t *testing.T) {
	tests := []struct {
		amount   string
		wantIntl string
		wantDom  string
	}{
		{"2000", "1400", "600"},
		{"999", "699", "300"},
		{"5", "4", "1"},   // 3.5 rounds half away from zero
		{"1", "1", "0"},   // 0.7 rounds up
		{"2", "1", "1"},   // 1.4 rounds down
		{"0", "0", "0"},
		{"2000.50", "1400.35", "600.15"},
		{"10.5", "7.4", "3.1"}, // 7.35 -> 7.4
		{"0.01", "0.01", "0"},
		{"123456789.99", "86419752.99", "37037037"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			a := dec(tt.amount)
			res, err := Migrate(spend("travel", tt.amount))
			require.NoError(t, err)

			intl := res.Spend.Amount("international_travel")
			dom := res.Spend.Amount("domestic_transport")

			assert.True(t, dec(tt.wantIntl).Equal(intl), "international: got %s", intl)
			assert.True(t, dec(tt.wantDom).Equal(dom), "domestic: got %s", dom)
			assert.True(t, a.Equal(intl.Add(dom)), "parts must sum to the legacy amount")
			assert.True(t, a.Mul(InternationalShare).Round(Places(a)).Equal(intl))
			assert.LessOrEqual(t, Places(intl), Places(a), "no new fractional digits")
			assert.LessOrEqual(t, Places(dom), Places(a), "no new fractional digits")
			assert.False(t, res.Spend.Has("travel"))
		})
	}
}

func TestMigrate_ZeroTravelStillMigrates(t *testing.T) {
	res, err := Migrate(spend("travel", "0"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeMigrated, res.Outcome)
	assert.True(t, res.Spend.Amount("international_travel").IsZero())
	assert.True(t, res.Spend.Amount("domestic_transport").IsZero())
	assert.Equal(t, 2, res.Spend.Len())
}

func TestMigrate_PassthroughOtherCategories(t *testing.T) {
	in := spend("dining", "1500.25", "travel", "100", "groceries", "1200", "crypto", "7")
	res, err := Migrate(in)
	require.NoError(t, err)

	for _, c := range []string{"dining", "groceries", "crypto"} {
		assert.True(t, in.Amount(c).Equal(res.Spend.Amount(c)), c)
	}
	assert.Equal(t,
		[]string{"dining", "international_travel", "domestic_transport", "groceries", "crypto"},
		res.Spend.Keys())
}

func TestMigrate_Ambiguous(t *testing.T) {
	tests := []struct {
		name    string
		in      model.Spend
		hasIntl bool
		hasDom  bool
	}{
		{"international present", spend("travel", "100", "international_travel", "50"), true, false},
		{"domestic present", spend("travel", "100", "domestic_transport", "20"), false, true},
		{"both present", spend("travel", "100", "international_travel", "50", "domestic_transport", "20"), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.in.Clone()
			_, err := Migrate(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAmbiguousMigration)
			assert.NotErrorIs(t, err, ErrInvalidAmount)

			var amb *AmbiguousMigrationError
			require.ErrorAs(t, err, &amb)
			assert.Equal(t, "100", amb.Legacy.String())
			assert.Equal(t, tt.hasIntl, amb.International.Valid)
			assert.Equal(t, tt.hasDom, amb.Domestic.Valid)
			assert.Contains(t, err.Error(), "clarification required")
			assert.True(t, before.Equal(tt.in), "input untouched")
		})
	}
}

func TestMigrate_InvalidAmounts(t *testing.T) {
	tests := []struct {
		name     string
		in       model.Spend
		category string
		value    string
	}{
		{
			name:     "negative travel",
			in:       spend("travel", "-5"),
			category: "travel",
			value:    "-5",
		},
		{
			name:     "negative unrelated category",
			in:       spend("travel", "100", "dining", "-1.50"),
			category: "dining",
			value:    "-1.50",
		},
		{
			name:     "non-numeric",
			in:       model.NewSpend(model.Entry{Category: "travel", Raw: `"lots"`}),
			category: "travel",
			value:    `"lots"`,
		},
		{
			name: "null on migrated record",
			in: model.NewSpend(
				model.Entry{Category: "international_travel", Amount: dec("1")},
				model.Entry{Category: "fuel", Raw: "null"},
			),
			category: "fuel",
			value:    "null",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Migrate(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAmount)

			var inv *InvalidAmountError
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, tt.category, inv.Category)
			assert.Equal(t, tt.value, inv.Value)
		})
	}
}

func TestMigrate_InvalidBeatsAmbiguous(t *testing.T) {
	_, err := Migrate(spend("travel", "100", "international_travel", "-1"))
	assert.True(t, errors.Is(err, ErrInvalidAmount))
}

func TestMigrate_Concurrent(t *testing.T) {
	shared := spend("travel", "2000", "dining", "1500")

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := Migrate(shared)
			assert.NoError(t, err)
			assert.Equal(t, "1400", res.Spend.Amount("international_travel").String())
		}()
	}
	wg.Wait()
	assert.True(t, shared.Has("travel"))
}

func TestPlaces(t *testing.T) {
	assert.Equal(t, int32(0), Places(dec("2000")))
	assert.Equal(t, int32(1), Places(dec("2000.5")))
	assert.Equal(t, int32(2), Places(dec("2000.50")))
	assert.Equal(t, int32(0), Places(dec("2e3")))
}
