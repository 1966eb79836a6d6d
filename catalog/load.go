package catalog

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Loader is the subset of a key-value store the catalog needs.
type Loader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

type document struct {
	Products []Product `yaml:"products"`
	Meals    []Meal    `yaml:"meals"`
}

// Parse decodes a catalog document. YAML is a superset of JSON, so both formats
// are accepted.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	for i := range doc.Products {
		if err := normalizeAllergens(doc.Products[i].ID, doc.Products[i].Allergens); err != nil {
			return nil, err
		}
	}
	for i := range doc.Meals {
		if err := normalizeAllergens(doc.Meals[i].ID, doc.Meals[i].Allergens); err != nil {
			return nil, err
		}
	}

	return New(doc.Products, doc.Meals), nil
}

// Load reads the catalog document stored under key.
func Load(ctx context.Context, l Loader, key string) (*Catalog, error) {
	b, err := l.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// normalizeAllergens rewrites list in place to canonical allergen names.
func normalizeAllergens(id string, list []AllergenType) error {
	for i, a := range list {
		parsed, err := ParseAllergen(string(a))
		if err != nil {
			return fmt.Errorf("catalog item %q: %w", id, err)
		}
		list[i] = parsed
	}
	return nil
}
