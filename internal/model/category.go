package model

// CategoryGroup clusters spend categories for reporting.
type CategoryGroup string

const (
	GroupEveryday  CategoryGroup = "everyday"
	GroupTravel    CategoryGroup = "travel"
	GroupLifestyle CategoryGroup = "lifestyle"
)

// CategoryInfo represents a row in categories/catalog.csv.
type CategoryInfo struct {
	Name        Category
	Label       string
	Group       CategoryGroup
	Deprecated  bool
	ReplacedBy  string // semicolon-separated successor categories
	Description string
}
