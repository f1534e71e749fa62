package categories

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cleared-dev/spendmigrate/internal/model"
)

// Service provides in-memory lookup over the category catalog.
type Service struct {
	cats   []model.CategoryInfo
	byName map[string]model.CategoryInfo
}

// NewService creates a Service from a slice of categories.
func NewService(cats []model.CategoryInfo) *Service {
	byName := make(map[string]model.CategoryInfo, len(cats))
	for _, c := range cats {
		byName[c.Name] = c
	}
	return &Service{cats: cats, byName: byName}
}

// Load reads categories/catalog.csv from a workspace root and returns a Service.
func Load(repoRoot string) (*Service, error) {
	path := filepath.Join(repoRoot, "categories", "catalog.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening category catalog: %w", err)
	}
	defer f.Close()

	cats, err := ReadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("reading category catalog: %w", err)
	}
	return NewService(cats), nil
}

// All returns all categories.
func (s *Service) All() []model.CategoryInfo {
	return s.cats
}

// Get returns a category by name.
func (s *Service) Get(name string) (model.CategoryInfo, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// Known reports whether a category is in the catalog and not deprecated.
func (s *Service) Known(name string) bool {
	c, ok := s.byName[name]
	return ok && !c.Deprecated
}

// Label returns the display label for a category, falling back to its name.
func (s *Service) Label(name string) string {
	if c, ok := s.byName[name]; ok && c.Label != "" {
		return c.Label
	}
	return name
}

// ByGroup returns all categories in the given group.
func (s *Service) ByGroup(group model.CategoryGroup) []model.CategoryInfo {
	var result []model.CategoryInfo
	for _, c := range s.cats {
		if c.Group == group {
			result = append(result, c)
		}
	}
	return result
}

// Save writes the catalog to categories/catalog.csv.
func (s *Service) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, "categories")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating categories dir: %w", err)
	}

	path := filepath.Join(dir, "catalog.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating catalog file: %w", err)
	}
	defer f.Close()

	if err := WriteCatalog(f, s.cats); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}
