// Package allergen decides whether an item conflicts with an organization's
// allergen exclusions and phrases the warning shown before an override.
package allergen

import (
	"errors"
	"fmt"
	"strings"

	"foodagent/catalog"
	"foodagent/profile"
)

// ErrOverrideRequired is returned by callers that refuse to add an item whose
// check reported a violation without an explicit override.
var ErrOverrideRequired = errors.New("allergen violation requires explicit override")

// Item is anything that can be checked: a product, a meal or a cart line.
type Item struct {
	Name      string
	Allergens []catalog.AllergenType
}

func FromProduct(p catalog.Product) Item { return Item{Name: p.Name, Allergens: p.Allergens} }

func FromMeal(m catalog.Meal) Item { return Item{Name: m.Name, Allergens: m.Allergens} }

// Result is the verdict of a single check.
type Result struct {
	HasViolation      bool                   `json:"has_violation"`
	ViolatedAllergens []catalog.AllergenType `json:"violated_allergens"`
	WarningMessage    string                 `json:"warning_message"`
}

func noViolation() Result {
	return Result{ViolatedAllergens: []catalog.AllergenType{}}
}

// Check intersects the item's allergens with the profile's exclusions. A nil
// profile never reports a violation.
func Check(item Item, p *profile.OrganizationProfile) Result {
	exclusions := p.Exclusions()
	if len(exclusions) == 0 {
		return noViolation()
	}

	violated := make([]catalog.AllergenType, 0, len(item.Allergens))
	for _, a := range item.Allergens {
		if p.ExcludesAllergen(a) && !contains(violated, a) {
			violated = append(violated, a)
		}
	}
	if len(violated) == 0 {
		return noViolation()
	}

	return Result{
		HasViolation:      true,
		ViolatedAllergens: violated,
		WarningMessage:    warning(item.Name, p, violated),
	}
}

func warning(itemName string, p *profile.OrganizationProfile, violated []catalog.AllergenType) string {
	titled := make([]string, len(violated))
	lower := make([]string, len(violated))
	for i, a := range violated {
		titled[i] = a.Title()
		lower[i] = string(a)
	}
	list := strings.Join(lower, ", ")

	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ Allergen warning for %s\n\n", p.Name)
	fmt.Fprintf(&b, "%q contains allergens your organization has excluded: %s.\n\n", itemName, strings.Join(titled, ", "))
	b.WriteString(populationNote(p.Type, list))
	b.WriteString("\n\nDo you still want to add this item?")
	return b.String()
}

func populationNote(t profile.OrganizationType, allergens string) string {
	switch t {
	case profile.TypeHospital:
		return fmt.Sprintf("As a hospital you may be serving patients with %s allergies, for whom exposure can cause serious medical complications.", allergens)
	case profile.TypeSchool:
		return fmt.Sprintf("Children with %s allergies may be among your students and depend on staff to keep unsafe food off their plates.", allergens)
	case profile.TypeCareHome:
		return fmt.Sprintf("Elderly residents with %s allergies react more severely and may not be able to recognise the risk themselves.", allergens)
	default:
		return fmt.Sprintf("Members of your organization with %s allergies could be put at risk.", allergens)
	}
}

func contains(list []catalog.AllergenType, a catalog.AllergenType) bool {
	for _, have := range list {
		if have == a {
			return true
		}
	}
	return false
}
