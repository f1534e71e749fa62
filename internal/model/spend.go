package model

import "github.com/shopspring/decimal"

// Category names a spend category in a profile.
type Category = string

const (
	// CategoryTravel is the legacy category superseded by the two below.
	CategoryTravel Category = "travel"
	// CategoryInternationalTravel covers flights, hotels and foreign-currency spending.
	CategoryInternationalTravel Category = "international_travel"
	// CategoryDomesticTransport covers ride-hailing, public transit, parking and tolls.
	CategoryDomesticTransport Category = "domestic_transport"
)

// Entry is one category/amount pair of a spend profile.
type Entry struct {
	Category Category
	Amount   decimal.Decimal
	Raw      string // literal JSON of a non-numeric value; empty for numbers
}

// IsNumeric reports whether the entry holds a number.
func (e Entry) IsNumeric() bool {
	return e.Raw == ""
}

// Value returns the entry value as it would be written to JSON.
func (e Entry) Value() string {
	if e.Raw != "" {
		return e.Raw
	}
	return FormatAmount(e.Amount)
}

// Places returns the number of fractional digits d was written with.
func Places(d decimal.Decimal) int32 {
	if exp := d.Exponent(); exp < 0 {
		return -exp
	}
	return 0
}

// FormatAmount renders d with the fractional digits it was written with, so
// 2000.50 stays 2000.50 instead of collapsing to 2000.5.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(Places(d))
}

// Spend is an insertion-ordered mapping from category to monthly amount.
// The zero value is an empty profile.
type Spend struct {
	entries []Entry
}

// NewSpend builds a Spend from entries, keeping their order. A repeated
// category replaces the earlier value in place.
func NewSpend(entries ...Entry) Spend {
	var s Spend
	for _, e := range entries {
		s.SetEntry(e)
	}
	return s
}

// Len returns the number of categories.
func (s Spend) Len() int { return len(s.entries) }

// Entries returns a copy of the entries in order.
func (s Spend) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Keys returns the category names in order.
func (s Spend) Keys() []Category {
	keys := make([]Category, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.Category
	}
	return keys
}

// Has reports whether the category is present.
func (s Spend) Has(c Category) bool {
	return s.index(c) >= 0
}

// Get returns the entry for a category.
func (s Spend) Get(c Category) (Entry, bool) {
	i := s.index(c)
	if i < 0 {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Amount returns the numeric amount for a category, or zero.
func (s Spend) Amount(c Category) decimal.Decimal {
	e, ok := s.Get(c)
	if !ok {
		return decimal.Zero
	}
	return e.Amount
}

// Set assigns a numeric amount. Existing categories keep their position.
func (s *Spend) Set(c Category, amount decimal.Decimal) {
	s.SetEntry(Entry{Category: c, Amount: amount})
}

// SetEntry assigns an entry. Existing categories keep their position.
func (s *Spend) SetEntry(e Entry) {
	if i := s.index(e.Category); i >= 0 {
		s.entries[i] = e
		return
	}
	s.entries = append(s.entries, e)
}

// Delete removes a category. Missing categories are ignored.
func (s *Spend) Delete(c Category) {
	i := s.index(c)
	if i < 0 {
		return
	}
	s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
}

// Replace swaps category old for the given entries at old's position.
// If old is absent the entries are appended.
func (s *Spend) Replace(old Category, with ...Entry) {
	i := s.index(old)
	if i < 0 {
		for _, e := range with {
			s.SetEntry(e)
		}
		return
	}
	out := make([]Entry, 0, len(s.entries)-1+len(with))
	out = append(out, s.entries[:i]...)
	out = append(out, with...)
	out = append(out, s.entries[i+1:]...)
	s.entries = out
}

// Clone returns an independent copy.
func (s Spend) Clone() Spend {
	return Spend{entries: s.Entries()}
}

// Equal reports whether two profiles hold the same categories in the same
// order with numerically equal values.
func (s Spend) Equal(o Spend) bool {
	if len(s.entries) != len(o.entries) {
		return false
	}
	for i, e := range s.entries {
		oe := o.entries[i]
		if e.Category != oe.Category || e.Raw != oe.Raw || !e.Amount.Equal(oe.Amount) {
			return false
		}
	}
	return true
}

func (s Spend) index(c Category) int {
	for i, e := range s.entries {
		if e.Category == c {
			return i
		}
	}
	return -1
}
