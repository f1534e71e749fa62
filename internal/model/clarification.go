package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClarificationStatus represents the lifecycle state of a clarification request.
type ClarificationStatus string

const (
	ClarificationPending  ClarificationStatus = "pending"
	ClarificationResolved ClarificationStatus = "resolved"
)

// Clarification is a row in queue/clarifications.csv: a profile whose legacy
// travel amount cannot be migrated without asking the user.
type Clarification struct {
	ID            string // "CLR-YYYY-MM-NNN"
	UserID        string
	Legacy        decimal.Decimal
	International decimal.NullDecimal // invalid when the key was absent
	Domestic      decimal.NullDecimal
	Status        ClarificationStatus
	CreatedAt     time.Time
	ResolvedAt    time.Time
	Resolution    string // resolution kind, e.g. "keep-existing"
}
