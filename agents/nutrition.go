package agents

import (
	"fmt"
	"math"
	"sort"

	"foodagent"
	"foodagent/catalog"
)

// Nutrition ranks in-stock products by macro nutrients. It does not apply the
// profile's allergen exclusions.
type Nutrition struct {
	catalog foodagent.CatalogProvider
	rules   []rule
}

func NewNutrition(c foodagent.CatalogProvider) *Nutrition {
	a := &Nutrition{catalog: c}
	a.rules = []rule{
		{match: keywords("protein", "high-protein"), handle: a.strategy(
			"💪 High-protein products",
			func(p catalog.Product) bool { return p.NutritionalInfo.Protein > 15 },
			func(x, y catalog.Product) bool { return x.NutritionalInfo.Protein > y.NutritionalInfo.Protein },
		)},
		{match: keywords("low-fat", "low fat"), handle: a.strategy(
			"🥬 Low-fat products",
			func(p catalog.Product) bool { return p.NutritionalInfo.Fat < 10 },
			func(x, y catalog.Product) bool { return x.NutritionalInfo.Fat < y.NutritionalInfo.Fat },
		)},
		{match: keywords("calories", "low-calorie"), handle: a.strategy(
			"🔥 Low-calorie products",
			func(p catalog.Product) bool { return p.NutritionalInfo.Calories < 300 },
			func(x, y catalog.Product) bool { return x.NutritionalInfo.Calories < y.NutritionalInfo.Calories },
		)},
		{match: keywords("nutrition", "healthy"), handle: a.strategy(
			"⚖️ Balanced products",
			nil,
			func(x, y catalog.Product) bool { return balance(x) > balance(y) },
		)},
	}
	return a
}

func (a *Nutrition) Type() Type { return TypeNutrition }

func (a *Nutrition) Analyze(req Request) *Response {
	return dispatch(a.rules, req)
}

func (a *Nutrition) strategy(title string, keep func(catalog.Product) bool, less func(x, y catalog.Product) bool) func(string, Request) *Response {
	return func(_ string, req Request) *Response {
		products := catalog.InStock(a.catalog.Products())
		if keep != nil {
			kept := products[:0]
			for _, p := range products {
				if keep(p) {
					kept = append(kept, p)
				}
			}
			products = kept
		}
		sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
		products = first(products, 6)

		summary := averages(products)
		msg := fmt.Sprintf("%s:\n\nI selected %d products. On average they provide %d kcal, %dg protein, %dg carbs and %dg fat.",
			title, len(products), summary.AvgCalories, summary.AvgProtein, summary.AvgCarbs, summary.AvgFat)
		if name := profileName(req.Profile); name != "" {
			msg += fmt.Sprintf("\n\nThese should fit the menu plans at %s.", name)
		}

		return &Response{
			Agent:   TypeNutrition,
			Message: msg,
			Data: &ResponseData{
				Products:  products,
				Nutrition: &summary,
			},
		}
	}
}

func balance(p catalog.Product) float64 {
	return p.NutritionalInfo.Protein - p.NutritionalInfo.Fat/2
}

// averages is zero for an empty selection.
func averages(products []catalog.Product) NutritionSummary {
	if len(products) == 0 {
		return NutritionSummary{}
	}
	var sum catalog.NutritionalInfo
	for _, p := range products {
		sum.Calories += p.NutritionalInfo.Calories
		sum.Protein += p.NutritionalInfo.Protein
		sum.Carbs += p.NutritionalInfo.Carbs
		sum.Fat += p.NutritionalInfo.Fat
	}
	n := float64(len(products))
	return NutritionSummary{
		AvgCalories: int(math.Round(sum.Calories / n)),
		AvgProtein:  int(math.Round(sum.Protein / n)),
		AvgCarbs:    int(math.Round(sum.Carbs / n)),
		AvgFat:      int(math.Round(sum.Fat / n)),
	}
}
