package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"foodagent/catalog"
)

const defaultSearchLimit = 10

type CatalogSearch struct{ catalog *catalog.Catalog }

func NewCatalogSearch(c *catalog.Catalog) *CatalogSearch { return &CatalogSearch{catalog: c} }

func (t *CatalogSearch) Name() string  { return "catalog_search" }
func (t *CatalogSearch) Title() string { return "Search Catalog" }
func (t *CatalogSearch) Description() string {
	return "Finds in-stock products by text, optionally restricted to a category and excluding allergens."
}

func (t *CatalogSearch) InputSchema() *jsonschema.Schema {
	minLimit := 1.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query":    {Type: "string"},
			"category": {Type: "string"},
			"exclude_allergens": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
			"limit": {Type: "integer", Minimum: &minLimit},
		},
	}
}

func (t *CatalogSearch) OutputSchema() *jsonschema.Schema {
	minPrice := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"products": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"id":        {Type: "string"},
						"name":      {Type: "string"},
						"category":  {Type: "string"},
						"price":     {Type: "number", Minimum: &minPrice},
						"unit":      {Type: "string"},
						"allergens": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
					},
					Required: []string{"id", "name", "price"},
				},
			},
			"total": {Type: "integer"},
		},
		Required: []string{"products", "total"},
	}
}

func (t *CatalogSearch) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	var banned []catalog.AllergenType
	for _, s := range stringsArg(input, "exclude_allergens") {
		a, err := catalog.ParseAllergen(s)
		if err != nil {
			return nil, fmt.Errorf("catalog_search: %w", err)
		}
		banned = append(banned, a)
	}

	limit := defaultSearchLimit
	if v, ok := numberArg(input, "limit"); ok && v >= 1 {
		limit = int(v)
	}
	category := strings.TrimSpace(stringArg(input, "category"))

	type outProduct struct {
		ID        string                 `json:"id"`
		Name      string                 `json:"name"`
		Category  string                 `json:"category"`
		Price     float64                `json:"price"`
		Unit      string                 `json:"unit"`
		Allergens []catalog.AllergenType `json:"allergens"`
	}
	out := struct {
		Products []outProduct `json:"products"`
		Total    int          `json:"total"`
	}{Products: make([]outProduct, 0)}

	for _, p := range t.catalog.Search(stringArg(input, "query")) {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if p.HasAnyAllergen(banned) {
			continue
		}
		out.Total++
		if len(out.Products) < limit {
			allergens := p.Allergens
			if allergens == nil {
				allergens = []catalog.AllergenType{}
			}
			out.Products = append(out.Products, outProduct{
				ID: p.ID, Name: p.Name, Category: p.Category, Price: p.EffectivePrice(), Unit: p.Unit, Allergens: allergens,
			})
		}
	}

	return toMap(out)
}
