package agents

import (
	"fmt"
	"slices"
	"strings"

	"foodagent"
	"foodagent/catalog"
)

var mainCourseCategories = []string{"Vegetarian", "Poultry", "Fish", "Meat"}

// MealPlanning suggests meals for a meal type and diet, or lists ingredients.
// Neither branch applies the profile's allergen exclusions.
type MealPlanning struct {
	catalog foodagent.CatalogProvider
	rules   []rule
}

func NewMealPlanning(c foodagent.CatalogProvider) *MealPlanning {
	a := &MealPlanning{catalog: c}
	a.rules = []rule{
		{match: keywords("meal plan", "menu", "recipe", "breakfast", "lunch", "dinner"), handle: a.meals},
		{match: keywords("ingredients", "shopping list"), handle: a.ingredients},
	}
	return a
}

func (a *MealPlanning) Type() Type { return TypeMealPlanning }

func (a *MealPlanning) Analyze(req Request) *Response {
	return dispatch(a.rules, req)
}

func (a *MealPlanning) meals(q string, req Request) *Response {
	meals := slices.Clone(a.catalog.Meals())
	var occasion string

	switch {
	case strings.Contains(q, "breakfast"):
		occasion = "breakfast"
		meals = filterMeals(meals, func(m catalog.Meal) bool {
			return m.Category == "Bread" || (m.Category == "Dessert" && strings.Contains(m.Name, "Joghurt"))
		})
	case containsAny(q, "lunch", "dinner"):
		occasion = "lunch and dinner"
		meals = filterMeals(meals, func(m catalog.Meal) bool {
			return slices.Contains(mainCourseCategories, m.Category)
		})
	}

	switch {
	case containsAny(q, veganKeywords...):
		meals = filterMeals(meals, func(m catalog.Meal) bool { return m.HasTag("Vegan") })
	case containsAny(q, vegetarianKeywords...):
		meals = filterMeals(meals, func(m catalog.Meal) bool { return m.HasTag("Vegetarian") || m.HasTag("Vegan") })
	}
	meals = first(meals, 6)
	related := a.relatedProducts(meals)

	var b strings.Builder
	b.WriteString("🍽️ Meal planning")
	if occasion != "" {
		fmt.Fprintf(&b, " for %s", occasion)
	}
	if name := profileName(req.Profile); name != "" {
		fmt.Fprintf(&b, " at %s", name)
	}
	fmt.Fprintf(&b, ":\n\nI suggest %d meals", len(meals))
	if len(related) > 0 {
		fmt.Fprintf(&b, " and %d products you need to prepare them", len(related))
	}
	b.WriteString(".")

	return &Response{
		Agent:   TypeMealPlanning,
		Message: b.String(),
		Data: &ResponseData{
			Meals:    meals,
			Products: related,
		},
	}
}

// relatedProducts maps meal components onto product categories and returns up
// to four catalog products from those categories, regardless of stock.
func (a *MealPlanning) relatedProducts(meals []catalog.Meal) []catalog.Product {
	categories := map[string]bool{}
	for _, m := range meals {
		if m.HasAllergen(catalog.AllergenDairy) {
			categories["Dairy"] = true
		}
		for _, c := range m.Components {
			c = strings.ToLower(c)
			if containsAny(c, "pasta", "reis") {
				categories["Pasta & Grains"] = true
			}
			if strings.Contains(c, "käse") {
				categories["Dairy"] = true
			}
			if containsAny(c, "soße", "sauce") {
				categories["Sauces & Condiments"] = true
			}
		}
	}

	var related []catalog.Product
	for _, p := range a.catalog.Products() {
		if categories[p.Category] {
			related = append(related, p)
		}
	}
	return first(related, 4)
}

func (a *MealPlanning) ingredients(_ string, req Request) *Response {
	products := first(catalog.InStock(a.catalog.Products()), 8)
	return &Response{
		Agent:   TypeMealPlanning,
		Message: fmt.Sprintf("🛒 Here are %d in-stock products to build your shopping list from. Add meals to your weekly plan to get exact quantities.", len(products)),
		Data: &ResponseData{
			Products: products,
		},
	}
}

func filterMeals(meals []catalog.Meal, keep func(catalog.Meal) bool) []catalog.Meal {
	out := meals[:0]
	for _, m := range meals {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
