package migrate

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/spendmigrate/internal/model"
)

// ResolutionKind names how a user chose to apply an ambiguous legacy amount.
type ResolutionKind string

const (
	// ResolveKeepExisting discards the legacy amount.
	ResolveKeepExisting ResolutionKind = "keep-existing"
	// ResolveAddToInternational adds the legacy amount to international_travel.
	ResolveAddToInternational ResolutionKind = "add-international"
	// ResolveAddToDomestic adds the legacy amount to domestic_transport.
	ResolveAddToDomestic ResolutionKind = "add-domestic"
	// ResolveSplitAndAdd splits the legacy amount 70/30 onto the existing values.
	ResolveSplitAndAdd ResolutionKind = "split-add"
	// ResolveExplicit replaces both categories with user-entered amounts.
	ResolveExplicit ResolutionKind = "explicit"
)

// ResolutionKinds lists every kind in display order.
var ResolutionKinds = []ResolutionKind{
	ResolveKeepExisting,
	ResolveAddToInternational,
	ResolveAddToDomestic,
	ResolveSplitAndAdd,
	ResolveExplicit,
}

// ParseResolutionKind validates a resolution kind name.
func ParseResolutionKind(s string) (ResolutionKind, error) {
	k := ResolutionKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ResolutionKinds {
		if k == known {
			return k, nil
		}
	}
	return "", errors.Errorf("unknown resolution %q", s)
}

// Resolution is a user's answer to a clarification request.
type Resolution struct {
	Kind ResolutionKind
	// International and Domestic are only read for ResolveExplicit.
	International decimal.Decimal
	Domestic      decimal.Decimal
}

// String renders the resolution for logs and the clarification queue.
func (r Resolution) String() string {
	if r.Kind == ResolveExplicit {
		return fmt.Sprintf("%s(%s/%s)", r.Kind, r.International, r.Domestic)
	}
	return string(r.Kind)
}

// Resolve applies a clarification answer to s and drops the legacy travel key.
// A record without travel is returned unchanged whatever the resolution. A
// record with travel but neither new category is not ambiguous and gets the
// standard split from Migrate instead.
func Resolve(s model.Spend, r Resolution) (Result, error) {
	if err := CheckAmounts(s); err != nil {
		return Result{}, err
	}

	legacy, ok := s.Get(model.CategoryTravel)
	if !ok {
		return Result{Spend: s.Clone(), Outcome: OutcomeUnchanged}, nil
	}
	if !s.Has(model.CategoryInternationalTravel) && !s.Has(model.CategoryDomesticTransport) {
		return Migrate(s)
	}

	intl := s.Amount(model.CategoryInternationalTravel)
	dom := s.Amount(model.CategoryDomesticTransport)

	switch r.Kind {
	case ResolveKeepExisting:
	case ResolveAddToInternational:
		intl = intl.Add(legacy.Amount)
	case ResolveAddToDomestic:
		dom = dom.Add(legacy.Amount)
	case ResolveSplitAndAdd:
		i, d := Split(legacy.Amount)
		intl = intl.Add(i)
		dom = dom.Add(d)
	case ResolveExplicit:
		if r.International.IsNegative() {
			return Result{}, &InvalidAmountError{Category: model.CategoryInternationalTravel, Value: r.International.String()}
		}
		if r.Domestic.IsNegative() {
			return Result{}, &InvalidAmountError{Category: model.CategoryDomesticTransport, Value: r.Domestic.String()}
		}
		intl, dom = r.International, r.Domestic
	default:
		return Result{}, errors.Errorf("unknown resolution %q", r.Kind)
	}

	out := s.Clone()
	out.Set(model.CategoryInternationalTravel, intl)
	out.Set(model.CategoryDomesticTransport, dom)
	out.Delete(model.CategoryTravel)
	return Result{Spend: out, Outcome: OutcomeResolved}, nil
}
