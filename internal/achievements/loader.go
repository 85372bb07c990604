package achievements

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(b []byte) ([]Definition, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(b, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("validate catalog: %w", err)
	}
	return catalog.Achievements, nil
}

// LoadCatalogFile reads a catalog from disk.
func LoadCatalogFile(path string) ([]Definition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defs, err := ParseCatalog(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// DefaultCatalog returns a fresh copy of the built-in catalog.
func DefaultCatalog() []Definition {
	defs, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in achievement catalog is invalid: %v", err))
	}
	return defs
}
