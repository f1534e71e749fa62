package profile

import (
	"fmt"

	"github.com/cleared-dev/spendmigrate/internal/model"
)

// Rule numbers reported by Validate.
const (
	RuleNonNumeric      = 1
	RuleNegative        = 2
	RuleUnknownCategory = 3
	RuleLegacyCategory  = 4
	RuleMissingUserID   = 5
)

// ValidationError describes a single rule violation.
type ValidationError struct {
	Rule        int
	UserID      string
	Category    string
	Description string
	Warning     bool // warnings do not block migration
}

func (e ValidationError) Error() string {
	level := "error"
	if e.Warning {
		level = "warning"
	}
	if e.Category == "" {
		return fmt.Sprintf("%s rule %d [%s]: %s", level, e.Rule, e.UserID, e.Description)
	}
	return fmt.Sprintf("%s rule %d [%s/%s]: %s", level, e.Rule, e.UserID, e.Category, e.Description)
}

// CategoryChecker tests whether a category is in the catalog.
type CategoryChecker interface {
	Known(category string) bool
}

// Validate checks a profile and returns every violation found. A nil checker
// skips the unknown-category rule.
func Validate(p model.Profile, catalog CategoryChecker) []ValidationError {
	var errs []ValidationError

	if p.UserID == "" {
		errs = append(errs, ValidationError{
			Rule:        RuleMissingUserID,
			Description: "profile has no user_id",
		})
	}

	for _, e := range p.Spend.Entries() {
		if !e.IsNumeric() {
			errs = append(errs, ValidationError{
				Rule:        RuleNonNumeric,
				UserID:      p.UserID,
				Category:    e.Category,
				Description: fmt.Sprintf("value %s is not a number", e.Raw),
			})
		} else if e.Amount.IsNegative() {
			errs = append(errs, ValidationError{
				Rule:        RuleNegative,
				UserID:      p.UserID,
				Category:    e.Category,
				Description: fmt.Sprintf("amount %s is negative", e.Amount),
			})
		}

		if e.Category == model.CategoryTravel {
			errs = append(errs, ValidationError{
				Rule:        RuleLegacyCategory,
				UserID:      p.UserID,
				Category:    e.Category,
				Description: "legacy travel category not migrated",
				Warning:     true,
			})
		} else if catalog != nil && !catalog.Known(e.Category) {
			errs = append(errs, ValidationError{
				Rule:        RuleUnknownCategory,
				UserID:      p.UserID,
				Category:    e.Category,
				Description: "category not in catalog",
				Warning:     true,
			})
		}
	}

	return errs
}

// HasBlocking reports whether any finding is an error rather than a warning.
func HasBlocking(errs []ValidationError) bool {
	for _, e := range errs {
		if !e.Warning {
			return true
		}
	}
	return false
}
