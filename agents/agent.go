// Package agents holds the rule-based specialists the coordinator consults.
// Every specialist is a pure function of its Request and the read-only
// catalog: no I/O, no shared mutable state.
package agents

import (
	"strings"

	"foodagent/catalog"
	"foodagent/order"
	"foodagent/profile"
)

// Type names an agent.
type Type string

const (
	TypeCoordinator  Type = "coordinator"
	TypeBudget       Type = "budget"
	TypeNutrition    Type = "nutrition"
	TypeDietary      Type = "dietary"
	TypeMealPlanning Type = "meal-planning"
)

// Specialists lists the specialist types in coordinator dispatch order.
var Specialists = []Type{TypeDietary, TypeNutrition, TypeBudget, TypeMealPlanning}

// ParseType maps a case-insensitive name onto a Type.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeCoordinator, TypeBudget, TypeNutrition, TypeDietary, TypeMealPlanning:
		return t, true
	case "mealplanning", "meal_planning", "mealplan":
		return TypeMealPlanning, true
	}
	return "", false
}

// Request is everything an agent may look at for one user message. Budget and
// Servings are optional overrides of the profile's values; zero means unset for
// Servings.
type Request struct {
	UserQuery           string                       `json:"user_query"`
	Profile             *profile.OrganizationProfile `json:"profile,omitempty"`
	OrderHistory        []order.Order                `json:"order_history,omitempty"`
	Budget              *float64                     `json:"budget,omitempty"`
	Servings            int                          `json:"servings,omitempty"`
	DietaryRestrictions []string                     `json:"dietary_restrictions,omitempty"`
}

// Response is one agent's recommendation.
type Response struct {
	Agent   Type          `json:"agent"`
	Message string        `json:"message"`
	Data    *ResponseData `json:"data,omitempty"`
}

type ResponseData struct {
	Products  []catalog.Product `json:"products,omitempty"`
	Meals     []catalog.Meal    `json:"meals,omitempty"`
	Budget    *BudgetSummary    `json:"budget,omitempty"`
	Nutrition *NutritionSummary `json:"nutrition,omitempty"`
	Dietary   *DietarySummary   `json:"dietary,omitempty"`
}

type BudgetSummary struct {
	Total            float64 `json:"total"`
	PerServing       float64 `json:"per_serving"`
	PotentialSavings float64 `json:"potential_savings"`
}

// NutritionSummary holds averages rounded to the nearest integer.
type NutritionSummary struct {
	AvgCalories int `json:"avg_calories"`
	AvgProtein  int `json:"avg_protein"`
	AvgCarbs    int `json:"avg_carbs"`
	AvgFat      int `json:"avg_fat"`
}

type DietarySummary struct {
	Restrictions []string `json:"restrictions"`
	Warnings     []string `json:"warnings"`
}

// Agent is a specialist. Analyze returns nil when the request does not concern it.
type Agent interface {
	Type() Type
	Analyze(req Request) *Response
}

// rule pairs a trigger with the handler that answers it. q is the lower-cased
// query.
type rule struct {
	match  func(q string, req Request) bool
	handle func(q string, req Request) *Response
}

// dispatch evaluates rules top to bottom; the first match answers.
func dispatch(rules []rule, req Request) *Response {
	q := strings.ToLower(req.UserQuery)
	for _, r := range rules {
		if r.match(q, req) {
			return r.handle(q, req)
		}
	}
	return nil
}

func keywords(kw ...string) func(string, Request) bool {
	return func(q string, _ Request) bool {
		return containsAny(q, kw...)
	}
}

func containsAny(q string, kw ...string) bool {
	for _, k := range kw {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

func first[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func without(products []catalog.Product, banned []catalog.AllergenType) []catalog.Product {
	if len(banned) == 0 {
		return products
	}
	out := products[:0:0]
	for _, p := range products {
		if !p.HasAnyAllergen(banned) {
			out = append(out, p)
		}
	}
	return out
}

func joinAllergens(list []catalog.AllergenType) string {
	names := make([]string, len(list))
	for i, a := range list {
		names[i] = a.Title()
	}
	return strings.Join(names, ", ")
}

func profileName(p *profile.OrganizationProfile) string {
	if p == nil {
		return ""
	}
	return p.Name
}
