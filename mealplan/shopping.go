package mealplan

import (
	"sort"
	"strings"

	"foodagent/catalog"
)

// ShoppingItem is one component needed by a plan.
type ShoppingItem struct {
	Name     string           `json:"name"`
	Servings int              `json:"servings"`
	Meals    []string         `json:"meals"`
	Product  *catalog.Product `json:"product,omitempty"`
}

// ShoppingList aggregates the components of every planned meal, scaled by
// servings and sorted by name. Components are matched case-insensitively; each
// item links the first in-stock product whose name contains it.
func ShoppingList(plan Plan, products []catalog.Product) []ShoppingItem {
	index := map[string]int{}
	var items []ShoppingItem

	for _, e := range plan.Entries {
		for _, c := range e.Meal.Components {
			name := strings.TrimSpace(c)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			i, ok := index[key]
			if !ok {
				i = len(items)
				index[key] = i
				items = append(items, ShoppingItem{Name: name, Meals: []string{}})
			}
			items[i].Servings += e.Servings
			if !contains(items[i].Meals, e.Meal.Name) {
				items[i].Meals = append(items[i].Meals, e.Meal.Name)
			}
		}
	}

	stocked := catalog.InStock(products)
	for i := range items {
		items[i].Product = matchProduct(items[i].Name, stocked)
	}

	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items
}

func matchProduct(component string, products []catalog.Product) *catalog.Product {
	want := strings.ToLower(component)
	for i := range products {
		if strings.Contains(strings.ToLower(products[i].Name), want) {
			p := products[i]
			return &p
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
