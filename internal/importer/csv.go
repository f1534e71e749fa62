package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/spendmigrate/internal/model"
)

// CSVParser parses long-format exports: one user_id,category,amount row per
// category. Rows of the same user are grouped in first-seen order.
type CSVParser struct{}

const (
	csvNumFields = 3
	csvColUserID = 0
	csvColCat    = 1
	csvColAmount = 2
)

var csvHeader = [csvNumFields]string{"user_id", "category", "amount"}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Extension returns the handled file extension.
func (p *CSVParser) Extension() string { return ".csv" }

// Parse reads the export and returns one profile per user.
func (p *CSVParser) Parse(r io.Reader) ([]model.Profile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = csvNumFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading export CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}
	for i, name := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(records[0][i]), name) {
			return nil, fmt.Errorf("unexpected header %q, want %q",
				strings.Join(records[0], ","), strings.Join(csvHeader[:], ","))
		}
	}

	var profiles []model.Profile
	index := make(map[string]int)
	for i, rec := range records[1:] {
		userID := strings.TrimSpace(rec[csvColUserID])
		category := strings.TrimSpace(rec[csvColCat])
		if userID == "" || category == "" {
			return nil, fmt.Errorf("row %d: user_id and category are required", i+2)
		}

		n, ok := index[userID]
		if !ok {
			n = len(profiles)
			index[userID] = n
			profiles = append(profiles, model.Profile{UserID: userID})
		}
		profiles[n].Spend.SetEntry(parseAmount(category, rec[csvColAmount]))
	}
	return profiles, nil
}

// parseAmount keeps unparseable amounts as a raw JSON string so the migrator
// reports them instead of the importer guessing.
func parseAmount(category, text string) model.Entry {
	text = strings.TrimSpace(text)
	amt, err := decimal.NewFromString(text)
	if err != nil {
		return model.Entry{Category: category, Raw: strconv.Quote(text)}
	}
	return model.Entry{Category: category, Amount: amt}
}
