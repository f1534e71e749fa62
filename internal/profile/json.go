// Package profile encodes spend profiles to and from JSON and checks them
// for problems.
//
// The codec is order-preserving: categories and unknown top-level fields are
// written back in the order they were read.
package profile

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/spendmigrate/internal/model"
)

const (
	fieldUserID = "user_id"
	fieldSpend  = "spend"
)

// DecodeSpend parses a flat JSON object of category -> amount.
// Numbers are read exactly from their literal text. Any other value is kept
// verbatim in Entry.Raw.
func DecodeSpend(data []byte) (model.Spend, error) {
	d := jx.DecodeBytes(data)
	s, err := decodeSpend(d)
	if err == nil {
		err = checkEnd(d)
	}
	if err != nil {
		return model.Spend{}, errors.Wrap(err, "decode spend")
	}
	return s, nil
}

// checkEnd fails unless only whitespace follows the decoded value.
func checkEnd(d *jx.Decoder) error {
	if err := d.Skip(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after object")
	}
	return nil
}

func decodeSpend(d *jx.Decoder) (model.Spend, error) {
	if d.Next() != jx.Object {
		return model.Spend{}, errors.Errorf("expected object, got %s", d.Next())
	}
	var s model.Spend
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		entry := model.Entry{Category: string(key)}
		if d.Next() == jx.Number {
			num, err := d.Num()
			if err != nil {
				return errors.Wrapf(err, "category %q", key)
			}
			amt, err := decimal.NewFromString(num.String())
			if err != nil {
				return errors.Wrapf(err, "category %q", key)
			}
			entry.Amount = amt
		} else {
			raw, err := d.Raw()
			if err != nil {
				return errors.Wrapf(err, "category %q", key)
			}
			entry.Raw = raw.String()
		}
		s.SetEntry(entry)
		return nil
	})
	if err != nil {
		return model.Spend{}, err
	}
	return s, nil
}

// EncodeSpend writes a spend profile as a JSON object.
func EncodeSpend(s model.Spend) []byte {
	var e jx.Encoder
	encodeSpend(&e, s)
	return e.Bytes()
}

func encodeSpend(e *jx.Encoder, s model.Spend) {
	e.ObjStart()
	for _, entry := range s.Entries() {
		e.FieldStart(entry.Category)
		if entry.IsNumeric() {
			e.Num(jx.Num(model.FormatAmount(entry.Amount)))
		} else {
			e.Raw([]byte(entry.Raw))
		}
	}
	e.ObjEnd()
}

// DecodeProfile parses a profile document:
//
//	{"user_id": "u-1", "spend": {...}, "salary": 15000, ...}
//
// Fields other than user_id and spend are kept in Profile.Extra.
func DecodeProfile(data []byte) (model.Profile, error) {
	var p model.Profile
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return p, errors.New("decode profile: expected object")
	}
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case fieldUserID:
			id, err := d.Str()
			if err != nil {
				return errors.Wrap(err, fieldUserID)
			}
			p.UserID = id
		case fieldSpend:
			s, err := decodeSpend(d)
			if err != nil {
				return errors.Wrap(err, fieldSpend)
			}
			p.Spend = s
		default:
			raw, err := d.Raw()
			if err != nil {
				return errors.Wrapf(err, "field %q", key)
			}
			p.Extra = append(p.Extra, model.Field{Key: string(key), Raw: append([]byte(nil), raw...)})
		}
		return nil
	})
	if err == nil {
		err = checkEnd(d)
	}
	if err != nil {
		return model.Profile{}, errors.Wrap(err, "decode profile")
	}
	return p, nil
}

// EncodeProfile writes a profile document. user_id and spend come first,
// followed by the extra fields in their original order.
func EncodeProfile(p model.Profile) []byte {
	var e jx.Encoder
	e.SetIdent(2)
	e.ObjStart()
	e.FieldStart(fieldUserID)
	e.Str(p.UserID)
	e.FieldStart(fieldSpend)
	encodeSpend(&e, p.Spend)
	for _, f := range p.Extra {
		e.FieldStart(f.Key)
		e.Raw(f.Raw)
	}
	e.ObjEnd()
	return e.Bytes()
}
