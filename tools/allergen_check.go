package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"foodagent"
	"foodagent/allergen"
	"foodagent/catalog"
)

type AllergenCheck struct {
	catalog  *catalog.Catalog
	profiles foodagent.ProfileProvider
}

func NewAllergenCheck(c *catalog.Catalog, profiles foodagent.ProfileProvider) *AllergenCheck {
	return &AllergenCheck{catalog: c, profiles: profiles}
}

func (t *AllergenCheck) Name() string  { return "allergen_check" }
func (t *AllergenCheck) Title() string { return "Check Allergens" }
func (t *AllergenCheck) Description() string {
	return "Checks a product or meal against the organization's allergen exclusions and returns the warning to show before adding it."
}

func (t *AllergenCheck) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"product_id": {Type: "string"},
			"meal_id":    {Type: "string"},
		},
	}
}

func (t *AllergenCheck) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"item":               {Type: "string"},
			"has_violation":      {Type: "boolean"},
			"violated_allergens": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			"warning_message":    {Type: "string"},
		},
		Required: []string{"item", "has_violation", "violated_allergens", "warning_message"},
	}
}

func (t *AllergenCheck) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	var item allergen.Item
	switch {
	case stringArg(input, "product_id") != "":
		id := stringArg(input, "product_id")
		p, ok := t.catalog.Product(id)
		if !ok {
			return nil, fmt.Errorf("allergen_check: unknown product %q", id)
		}
		item = allergen.FromProduct(p)
	case stringArg(input, "meal_id") != "":
		id := stringArg(input, "meal_id")
		m, ok := t.catalog.Meal(id)
		if !ok {
			return nil, fmt.Errorf("allergen_check: unknown meal %q", id)
		}
		item = allergen.FromMeal(m)
	default:
		return nil, fmt.Errorf("allergen_check: product_id or meal_id is required")
	}

	prof, err := t.profiles.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("allergen_check: %w", err)
	}

	res := allergen.Check(item, prof)
	out, err := toMap(res)
	if err != nil {
		return nil, err
	}
	out["item"] = item.Name
	return out, nil
}
