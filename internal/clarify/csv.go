package clarify

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/spendmigrate/internal/model"
)

// Header is the CSV header for clarifications.csv.
const Header = "id,user_id,legacy,international,domestic,status,created_at,resolved_at,resolution"

const (
	numFields     = 9
	colID         = 0
	colUserID     = 1
	colLegacy     = 2
	colIntl       = 3
	colDomestic   = 4
	colStatus     = 5
	colCreatedAt  = 6
	colResolvedAt = 7
	colResolution = 8
)

// ReadClarifications reads all rows from a clarifications.csv reader.
func ReadClarifications(r io.Reader) ([]model.Clarification, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading clarifications CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var out []model.Clarification
	for i, rec := range records[1:] {
		c, err := UnmarshalClarification(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// WriteClarifications writes rows to a clarifications.csv writer (including header).
func WriteClarifications(w io.Writer, rows []model.Clarification) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, c := range rows {
		if err := cw.Write(MarshalClarification(c)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalClarification converts a Clarification to a CSV row.
func MarshalClarification(c model.Clarification) []string {
	row := make([]string, numFields)
	row[colID] = c.ID
	row[colUserID] = c.UserID
	row[colLegacy] = model.FormatAmount(c.Legacy)
	row[colIntl] = formatNull(c.International)
	row[colDomestic] = formatNull(c.Domestic)
	row[colStatus] = string(c.Status)
	row[colCreatedAt] = formatTime(c.CreatedAt)
	row[colResolvedAt] = formatTime(c.ResolvedAt)
	row[colResolution] = c.Resolution
	return row
}

// UnmarshalClarification converts a CSV row to a Clarification.
func UnmarshalClarification(record []string) (model.Clarification, error) {
	if len(record) != numFields {
		return model.Clarification{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	legacy, err := decimal.NewFromString(record[colLegacy])
	if err != nil {
		return model.Clarification{}, fmt.Errorf("parsing legacy %q: %w", record[colLegacy], err)
	}

	intl, err := parseNull(record[colIntl])
	if err != nil {
		return model.Clarification{}, fmt.Errorf("parsing international %q: %w", record[colIntl], err)
	}

	dom, err := parseNull(record[colDomestic])
	if err != nil {
		return model.Clarification{}, fmt.Errorf("parsing domestic %q: %w", record[colDomestic], err)
	}

	created, err := parseTime(record[colCreatedAt])
	if err != nil {
		return model.Clarification{}, fmt.Errorf("parsing created_at %q: %w", record[colCreatedAt], err)
	}

	resolved, err := parseTime(record[colResolvedAt])
	if err != nil {
		return model.Clarification{}, fmt.Errorf("parsing resolved_at %q: %w", record[colResolvedAt], err)
	}

	status := model.ClarificationStatus(record[colStatus])
	if status != model.ClarificationPending && status != model.ClarificationResolved {
		return model.Clarification{}, fmt.Errorf("unknown status %q", record[colStatus])
	}

	return model.Clarification{
		ID:            record[colID],
		UserID:        record[colUserID],
		Legacy:        legacy,
		International: intl,
		Domestic:      dom,
		Status:        status,
		CreatedAt:     created,
		ResolvedAt:    resolved,
		Resolution:    record[colResolution],
	}, nil
}

func formatNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return model.FormatAmount(d.Decimal)
}

func parseNull(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
