package model

import "time"

// Field is a top-level profile document field other than user_id and spend,
// kept as raw JSON so it round-trips untouched.
type Field struct {
	Key string
	Raw []byte
}

// Profile is a user's spend profile document.
type Profile struct {
	UserID    string
	Spend     Spend
	Extra     []Field
	UpdatedAt time.Time // set by the store; not part of the document
}

// IsLegacy reports whether the profile still carries the legacy travel key.
func (p Profile) IsLegacy() bool {
	return p.Spend.Has(CategoryTravel)
}
