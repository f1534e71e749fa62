package migrate

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount matches any *InvalidAmountError.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAmbiguousMigration matches any *AmbiguousMigrationError.
	ErrAmbiguousMigration = errors.New("ambiguous migration")
)

// InvalidAmountError reports a category whose value is negative or not a
// number. The record is left untouched.
type InvalidAmountError struct {
	Category string
	Value    string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount for %q: %s", e.Category, e.Value)
}

// Is makes errors.Is(err, ErrInvalidAmount) succeed.
func (e *InvalidAmountError) Is(target error) bool {
	return target == ErrInvalidAmount
}

// AmbiguousMigrationError reports a record carrying the legacy travel amount
// alongside one or both of the new categories. The user has to say how the
// legacy amount should be applied before the record counts as migrated.
type AmbiguousMigrationError struct {
	Legacy        decimal.Decimal
	International decimal.NullDecimal
	Domestic      decimal.NullDecimal
}

func (e *AmbiguousMigrationError) Error() string {
	msg := fmt.Sprintf("travel=%s coexists with", e.Legacy)
	if e.International.Valid {
		msg += fmt.Sprintf(" international_travel=%s", e.International.Decimal)
	}
	if e.Domestic.Valid {
		msg += fmt.Sprintf(" domestic_transport=%s", e.Domestic.Decimal)
	}
	return msg + "; clarification required"
}

// Is makes errors.Is(err, ErrAmbiguousMigration) succeed.
func (e *AmbiguousMigrationError) Is(target error) bool {
	return target == ErrAmbiguousMigration
}
