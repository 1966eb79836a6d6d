package agents

import (
	"fmt"
	"sort"
	"strings"

	"foodagent"
	"foodagent/catalog"
)

const defaultServings = 100

// Budget recommends the cheapest in-stock products the organization may order.
type Budget struct {
	catalog foodagent.CatalogProvider
	rules   []rule
}

func NewBudget(c foodagent.CatalogProvider) *Budget {
	a := &Budget{catalog: c}
	a.rules = []rule{
		{match: keywords("budget", "cheap", "save", "cost", "price"), handle: a.cheapest},
	}
	return a
}

func (a *Budget) Type() Type { return TypeBudget }

func (a *Budget) Analyze(req Request) *Response {
	return dispatch(a.rules, req)
}

func (a *Budget) cheapest(_ string, req Request) *Response {
	exclusions := req.Profile.Exclusions()
	products := without(catalog.InStock(a.catalog.Products()), exclusions)
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].EffectivePrice() < products[j].EffectivePrice()
	})
	products = first(products, 6)

	var total, savings float64
	for _, p := range products {
		total += p.EffectivePrice()
		if p.BulkPrice != nil {
			savings += p.Price - *p.BulkPrice
		}
	}

	// The structured per-serving figure only honours an explicit servings
	// count; the message below falls back to the profile capacity.
	var perServing float64
	if req.Servings > 0 {
		perServing = total / float64(req.Servings)
	}

	var b strings.Builder
	b.WriteString("💰 Budget analysis")
	if name := profileName(req.Profile); name != "" {
		fmt.Fprintf(&b, " for %s", name)
	}
	fmt.Fprintf(&b, ":\n\nI found %d cost-effective products with a combined price of €%.2f.", len(products), total)

	if target := budgetTarget(req); target != nil {
		servings := effectiveServings(req)
		cost := total / float64(servings)
		if cost <= *target {
			fmt.Fprintf(&b, "\n\nAt %d servings that is €%.2f per serving, within your target of €%.2f.", servings, cost, *target)
		} else {
			fmt.Fprintf(&b, "\n\nAt %d servings that is €%.2f per serving, €%.2f over your target of €%.2f.", servings, cost, cost-*target, *target)
		}
	}

	fmt.Fprintf(&b, "\n\nBuying in bulk could save you €%.2f.", savings)
	if len(exclusions) > 0 {
		fmt.Fprintf(&b, "\n\nProducts containing %s were left out.", joinAllergens(exclusions))
	}

	return &Response{
		Agent:   TypeBudget,
		Message: b.String(),
		Data: &ResponseData{
			Products: products,
			Budget: &BudgetSummary{
				Total:            total,
				PerServing:       perServing,
				PotentialSavings: savings,
			},
		},
	}
}

func budgetTarget(req Request) *float64 {
	if req.Budget != nil {
		return req.Budget
	}
	if req.Profile != nil {
		return req.Profile.Preferences.BudgetPerServing
	}
	return nil
}

func effectiveServings(req Request) int {
	switch {
	case req.Servings > 0:
		return req.Servings
	case req.Profile != nil && req.Profile.ServingCapacity > 0:
		return req.Profile.ServingCapacity
	default:
		return defaultServings
	}
}
