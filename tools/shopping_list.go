package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"foodagent/catalog"
	"foodagent/mealplan"
)

// PlanReader loads a stored weekly meal plan.
type PlanReader interface {
	Week(ctx context.Context, weekStart time.Time) (mealplan.Plan, error)
}

type ShoppingList struct {
	plans   PlanReader
	catalog *catalog.Catalog
	now     func() time.Time
}

func NewShoppingList(plans PlanReader, c *catalog.Catalog) *ShoppingList {
	return &ShoppingList{plans: plans, catalog: c, now: time.Now}
}

func (t *ShoppingList) Name() string  { return "shopping_list" }
func (t *ShoppingList) Title() string { return "Build Shopping List" }
func (t *ShoppingList) Description() string {
	return "Aggregates the meal components of a weekly plan into a shopping list, linking each item to an in-stock product when one matches. week defaults to the current week (YYYY-MM-DD, any day of the week)."
}

func (t *ShoppingList) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"week": {Type: "string"},
		},
	}
}

func (t *ShoppingList) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"week_start": {Type: "string"},
			"items": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"name":     {Type: "string"},
						"servings": {Type: "integer"},
						"meals":    {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
						"product":  {Type: "object"},
					},
					Required: []string{"name", "servings", "meals"},
				},
			},
		},
		Required: []string{"week_start", "items"},
	}
}

func (t *ShoppingList) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	day := t.now()
	if s := stringArg(input, "week"); s != "" {
		parsed, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return nil, fmt.Errorf("shopping_list: week must be YYYY-MM-DD: %w", err)
		}
		day = parsed
	}
	weekStart := mealplan.WeekStart(day)

	plan, err := t.plans.Week(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("shopping_list: %w", err)
	}

	items := mealplan.ShoppingList(plan, t.catalog.Products())
	if items == nil {
		items = []mealplan.ShoppingItem{}
	}
	return toMap(struct {
		WeekStart string                  `json:"week_start"`
		Items     []mealplan.ShoppingItem `json:"items"`
	}{WeekStart: weekStart.Format(time.DateOnly), Items: items})
}
