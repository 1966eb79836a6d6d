package agents

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"foodagent"
	"foodagent/catalog"
	"foodagent/profile"
)

// allergenKeywords maps query phrases onto allergens. Phrases match anywhere
// in the query; words only match whole words, so "veggie" does not mean eggs
// and "shellfish" does not mean fish.
var allergenKeywords = []struct {
	allergen catalog.AllergenType
	phrases  []string
	words    []string
}{
	{catalog.AllergenGluten, []string{"gluten", "celiac", "coeliac"}, nil},
	{catalog.AllergenDairy, []string{"dairy", "lactose", "milk"}, nil},
	{catalog.AllergenNuts, nil, []string{"nut", "nuts", "peanut", "peanuts"}},
	{catalog.AllergenSoy, []string{"soy"}, nil},
	{catalog.AllergenEggs, nil, []string{"egg", "eggs"}},
	{catalog.AllergenFish, nil, []string{"fish"}},
	{catalog.AllergenShellfish, []string{"shellfish", "seafood"}, nil},
}

var (
	veganKeywords      = []string{"vegan"}
	vegetarianKeywords = []string{"vegetarian", "veggie"}

	veganBanned      = []catalog.AllergenType{catalog.AllergenDairy, catalog.AllergenEggs, catalog.AllergenFish, catalog.AllergenShellfish}
	vegetarianBanned = []catalog.AllergenType{catalog.AllergenFish, catalog.AllergenShellfish}
)

const nutCrossContactWarning = "⚠️ Baking products may be processed in facilities that also handle nuts. Check the labels for cross-contamination."

// Dietary filters the catalog down to products that are safe for the
// organization's allergen exclusions, diets and the restrictions named in the
// query. It also answers without a keyword when the profile carries any
// dietary settings.
type Dietary struct {
	catalog foodagent.CatalogProvider
	rules   []rule
}

func NewDietary(c foodagent.CatalogProvider) *Dietary {
	a := &Dietary{catalog: c}
	a.rules = []rule{
		{match: dietaryTrigger, handle: a.safeProducts},
	}
	return a
}

func (a *Dietary) Type() Type { return TypeDietary }

func (a *Dietary) Analyze(req Request) *Response {
	return dispatch(a.rules, req)
}

func dietaryTrigger(q string, req Request) bool {
	q = dietaryText(q, req)
	if len(keywordAllergens(q)) > 0 || containsAny(q, veganKeywords...) || containsAny(q, vegetarianKeywords...) {
		return true
	}
	p := req.Profile
	if p == nil {
		return false
	}
	return len(p.Preferences.AllergenExclusions) > 0 ||
		len(p.Preferences.DietaryRestrictions) > 0 ||
		strings.TrimSpace(p.Preferences.SpecialRequirements) != ""
}

// dietaryText appends the request's explicit restrictions to the query so both
// are matched the same way.
func dietaryText(q string, req Request) string {
	if len(req.DietaryRestrictions) == 0 {
		return q
	}
	return q + " " + strings.ToLower(strings.Join(req.DietaryRestrictions, " "))
}

func keywordAllergens(q string) []catalog.AllergenType {
	words := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var found []catalog.AllergenType
	for _, entry := range allergenKeywords {
		if containsAny(q, entry.phrases...) || slices.ContainsFunc(entry.words, func(w string) bool {
			return slices.Contains(words, w)
		}) {
			found = append(found, entry.allergen)
		}
	}
	return found
}

func (a *Dietary) safeProducts(q string, req Request) *Response {
	q = dietaryText(q, req)
	prof := req.Profile
	exclusions := prof.Exclusions()

	var detected []string
	addDetected := func(s string) {
		if !slices.Contains(detected, s) {
			detected = append(detected, s)
		}
	}
	for _, ex := range exclusions {
		addDetected(string(ex))
	}
	if prof != nil {
		for _, r := range prof.Preferences.DietaryRestrictions {
			addDetected(string(r))
		}
	}

	products := without(catalog.InStock(a.catalog.Products()), exclusions)

	switch {
	case prof.HasRestriction(profile.DietVegan):
		products = without(products, veganBanned)
	case prof.HasRestriction(profile.DietVegetarian):
		products = without(products, vegetarianBanned)
	}

	for _, allergen := range keywordAllergens(q) {
		addDetected(string(allergen))
		if !prof.ExcludesAllergen(allergen) {
			products = without(products, []catalog.AllergenType{allergen})
		}
	}

	switch {
	case containsAny(q, veganKeywords...):
		if !slices.Contains(detected, string(profile.DietVegan)) {
			products = without(products, veganBanned)
			addDetected(string(profile.DietVegan))
		}
	case containsAny(q, vegetarianKeywords...):
		if !slices.Contains(detected, string(profile.DietVegetarian)) {
			products = without(products, vegetarianBanned)
			addDetected(string(profile.DietVegetarian))
		}
	}

	warnings := []string{}
	if slices.Contains(detected, string(catalog.AllergenNuts)) {
		for _, p := range products {
			if p.Category == "Baking" {
				warnings = append(warnings, nutCrossContactWarning)
				break
			}
		}
	}
	if detected == nil {
		detected = []string{}
	}

	var b strings.Builder
	b.WriteString("🥗 Dietary check")
	if name := profileName(prof); name != "" {
		fmt.Fprintf(&b, " for %s", name)
	}
	fmt.Fprintf(&b, ":\n\nI found %d products that are safe", len(products))
	if len(detected) > 0 {
		fmt.Fprintf(&b, " for your requirements (%s)", strings.Join(detected, ", "))
	}
	b.WriteString(".")
	if prof != nil && strings.TrimSpace(prof.Preferences.SpecialRequirements) != "" {
		fmt.Fprintf(&b, "\n\nSpecial requirements noted: %s", strings.TrimSpace(prof.Preferences.SpecialRequirements))
	}
	if n := len(req.OrderHistory); n > 0 {
		fmt.Fprintf(&b, "\n\nI also checked these against your %d previous orders.", n)
	}
	for _, w := range warnings {
		fmt.Fprintf(&b, "\n\n%s", w)
	}

	return &Response{
		Agent:   TypeDietary,
		Message: b.String(),
		Data: &ResponseData{
			Products: first(products, 6),
			Dietary: &DietarySummary{
				Restrictions: detected,
				Warnings:     warnings,
			},
		},
	}
}
