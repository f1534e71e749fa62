// Package migrate converts spend profiles carrying the legacy travel category
// to the split international_travel / domestic_transport schema.
//
// Every function in this package is pure: inputs are never modified and no
// I/O happens, so callers may run them concurrently on independent records.
package migrate

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/spendmigrate/internal/model"
)

// InternationalShare is the fraction of a legacy travel amount assigned to
// international_travel when nothing else is known. The rest goes to
// domestic_transport.
var InternationalShare = decimal.RequireFromString("0.7")

// Outcome describes what Migrate or Resolve did to a record.
type Outcome string

const (
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeMigrated  Outcome = "migrated"
	OutcomeResolved  Outcome = "resolved"
)

// Result is the output of a successful migration.
type Result struct {
	Spend   model.Spend
	Outcome Outcome
}

// Changed reports whether the record differs from the input.
func (r Result) Changed() bool {
	return r.Outcome != OutcomeUnchanged
}

// Migrate applies the legacy travel migration to s.
//
// A record without travel is returned unchanged. A record with travel and
// neither new category gets the 70/30 split. A record with travel and at
// least one new category yields *AmbiguousMigrationError. Negative or
// non-numeric values yield *InvalidAmountError.
func Migrate(s model.Spend) (Result, error) {
	if err := CheckAmounts(s); err != nil {
		return Result{}, err
	}

	legacy, ok := s.Get(model.CategoryTravel)
	if !ok {
		return Result{Spend: s.Clone(), Outcome: OutcomeUnchanged}, nil
	}

	intl, hasIntl := s.Get(model.CategoryInternationalTravel)
	dom, hasDom := s.Get(model.CategoryDomesticTransport)
	if hasIntl || hasDom {
		return Result{}, &AmbiguousMigrationError{
			Legacy:        legacy.Amount,
			International: decimal.NullDecimal{Decimal: intl.Amount, Valid: hasIntl},
			Domestic:      decimal.NullDecimal{Decimal: dom.Amount, Valid: hasDom},
		}
	}

	intlAmt, domAmt := Split(legacy.Amount)
	out := s.Clone()
	out.Replace(model.CategoryTravel,
		model.Entry{Category: model.CategoryInternationalTravel, Amount: intlAmt},
		model.Entry{Category: model.CategoryDomesticTransport, Amount: domAmt},
	)
	return Result{Spend: out, Outcome: OutcomeMigrated}, nil
}

// Split divides a legacy travel amount into international and domestic parts.
// The international part is rounded half away from zero to the amount's own
// precision and the domestic part is the remainder, so the two always sum to
// amount exactly.
func Split(amount decimal.Decimal) (international, domestic decimal.Decimal) {
	international = amount.Mul(InternationalShare).Round(Places(amount))
	domestic = amount.Sub(international)
	return international, domestic
}

// Places returns the number of fractional digits d was written with.
func Places(d decimal.Decimal) int32 {
	return model.Places(d)
}

// CheckAmounts returns *InvalidAmountError for the first category whose value
// is not a non-negative number.
func CheckAmounts(s model.Spend) error {
	for _, e := range s.Entries() {
		if !e.IsNumeric() || e.Amount.IsNegative() {
			return &InvalidAmountError{Category: e.Category, Value: e.Value()}
		}
	}
	return nil
}
