package categories

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cleared-dev/spendmigrate/internal/model"
)

const (
	numFields     = 6
	colName       = 0
	colLabel      = 1
	colGroup      = 2
	colDeprecated = 3
	colReplacedBy = 4
	colDesc       = 5
)

// ReadCatalog reads catalog.csv.
func ReadCatalog(r io.Reader) ([]model.CategoryInfo, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading catalog CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var cats []model.CategoryInfo
	for i, rec := range records[1:] {
		c, err := UnmarshalCategory(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// WriteCatalog writes catalog.csv.
func WriteCatalog(w io.Writer, cats []model.CategoryInfo) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"category", "label", "group", "deprecated", "replaced_by", "description"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, c := range cats {
		if err := cw.Write(MarshalCategory(c)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalCategory converts a CategoryInfo to a CSV row.
func MarshalCategory(c model.CategoryInfo) []string {
	row := make([]string, numFields)
	row[colName] = c.Name
	row[colLabel] = c.Label
	row[colGroup] = string(c.Group)
	row[colDeprecated] = strconv.FormatBool(c.Deprecated)
	row[colReplacedBy] = c.ReplacedBy
	row[colDesc] = c.Description
	return row
}

// UnmarshalCategory converts a CSV row to a CategoryInfo.
func UnmarshalCategory(record []string) (model.CategoryInfo, error) {
	if len(record) != numFields {
		return model.CategoryInfo{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colName] == "" {
		return model.CategoryInfo{}, fmt.Errorf("empty category name")
	}

	var deprecated bool
	if record[colDeprecated] != "" {
		var err error
		deprecated, err = strconv.ParseBool(record[colDeprecated])
		if err != nil {
			return model.CategoryInfo{}, fmt.Errorf("parsing deprecated %q: %w", record[colDeprecated], err)
		}
	}

	return model.CategoryInfo{
		Name:        record[colName],
		Label:       record[colLabel],
		Group:       model.CategoryGroup(record[colGroup]),
		Deprecated:  deprecated,
		ReplacedBy:  record[colReplacedBy],
		Description: record[colDesc],
	}, nil
}
