package mealplan

import (
	"fmt"

	"foodagent/profile"
)

// Violation is a dietary enforcement rule the plan does not meet. Day is nil
// for weekly rules.
type Violation struct {
	Rule    string `json:"rule"`
	Day     *Day   `json:"day,omitempty"`
	Message string `json:"message"`
}

const (
	RuleVegetarianDaily   = "require_vegetarian_daily"
	RuleVeganDaily        = "require_vegan_daily"
	RuleMinVegetarianWeek = "minimum_vegetarian_per_week"
	RuleMinVeganWeek      = "minimum_vegan_per_week"
)

// Enforce checks plan against the profile's dietary enforcement settings.
// Vegan meals count as vegetarian. No profile or no settings means no
// violations.
func Enforce(plan Plan, p *profile.OrganizationProfile) []Violation {
	if p == nil || p.Preferences.DietaryEnforcement == nil {
		return nil
	}
	rules := p.Preferences.DietaryEnforcement

	var violations []Violation
	var vegetarian, vegan int
	for _, d := range Days {
		var dayVegetarian, dayVegan bool
		for _, e := range plan.Day(d) {
			if e.vegetarian() {
				vegetarian++
				dayVegetarian = true
			}
			if e.vegan() {
				vegan++
				dayVegan = true
			}
		}

		day := d
		if rules.RequireVegetarianDaily && !dayVegetarian {
			violations = append(violations, Violation{
				Rule:    RuleVegetarianDaily,
				Day:     &day,
				Message: fmt.Sprintf("No vegetarian meal planned on %s.", d),
			})
		}
		if rules.RequireVeganDaily && !dayVegan {
			violations = append(violations, Violation{
				Rule:    RuleVeganDaily,
				Day:     &day,
				Message: fmt.Sprintf("No vegan meal planned on %s.", d),
			})
		}
	}

	if vegetarian < rules.MinimumVegetarianPerWeek {
		violations = append(violations, Violation{
			Rule:    RuleMinVegetarianWeek,
			Message: fmt.Sprintf("%d vegetarian meals planned, at least %d required.", vegetarian, rules.MinimumVegetarianPerWeek),
		})
	}
	if vegan < rules.MinimumVeganPerWeek {
		violations = append(violations, Violation{
			Rule:    RuleMinVeganWeek,
			Message: fmt.Sprintf("%d vegan meals planned, at least %d required.", vegan, rules.MinimumVeganPerWeek),
		})
	}
	return violations
}
