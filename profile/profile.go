package profile

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"foodagent/catalog"
)

// ErrInvalid wraps every validation failure so callers can tell bad input from
// storage problems.
var ErrInvalid = errors.New("invalid organization profile")

// OrganizationType selects the population an organization serves.
type OrganizationType string

const (
	TypeHospital   OrganizationType = "hospital"
	TypeSchool     OrganizationType = "school"
	TypeCareHome   OrganizationType = "care-home"
	TypeUniversity OrganizationType = "university"
	TypeCorporate  OrganizationType = "corporate"
	TypeOther      OrganizationType = "other"
)

// DietaryPreference is a diet an organization caters for.
type DietaryPreference string

const (
	DietVegetarian  DietaryPreference = "vegetarian"
	DietVegan       DietaryPreference = "vegan"
	DietHalal       DietaryPreference = "halal"
	DietKosher      DietaryPreference = "kosher"
	DietGlutenFree  DietaryPreference = "gluten-free"
	DietLactoseFree DietaryPreference = "lactose-free"
	DietLowSodium   DietaryPreference = "low-sodium"
	DietDiabetic    DietaryPreference = "diabetic"
)

// DietaryEnforcement sets hard rules the weekly meal plan has to satisfy.
type DietaryEnforcement struct {
	RequireVegetarianDaily   bool `json:"require_vegetarian_daily"`
	RequireVeganDaily        bool `json:"require_vegan_daily"`
	MinimumVegetarianPerWeek int  `json:"minimum_vegetarian_per_week" validate:"gte=0,lte=21"`
	MinimumVeganPerWeek      int  `json:"minimum_vegan_per_week" validate:"gte=0,lte=21"`
}

// Preferences groups the dietary settings of an organization.
type Preferences struct {
	DietaryRestrictions []DietaryPreference    `json:"dietary_restrictions" validate:"dive,oneof=vegetarian vegan halal kosher gluten-free lactose-free low-sodium diabetic"`
	AllergenExclusions  []catalog.AllergenType `json:"allergen_exclusions" validate:"dive,oneof=nuts dairy gluten eggs soy fish shellfish sesame"`
	BudgetPerServing    *float64               `json:"budget_per_serving,omitempty" validate:"omitempty,gt=0"`
	SpecialRequirements string                 `json:"special_requirements,omitempty" validate:"max=1000"`
	DietaryEnforcement  *DietaryEnforcement    `json:"dietary_enforcement,omitempty"`
}

// OrganizationProfile describes the institution placing orders.
type OrganizationProfile struct {
	ID              string           `json:"id"`
	Name            string           `json:"name" validate:"required,max=200"`
	Type            OrganizationType `json:"type" validate:"required,oneof=hospital school care-home university corporate other"`
	ContactPerson   string           `json:"contact_person,omitempty"`
	Email           string           `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string           `json:"phone,omitempty"`
	Address         string           `json:"address,omitempty"`
	Preferences     Preferences      `json:"preferences"`
	ServingCapacity int              `json:"serving_capacity" validate:"gte=0"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

var validate = validator.New()

// Validate checks the profile's struct constraints.
func (p *OrganizationProfile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// ExcludesAllergen reports whether the organization bans a.
func (p *OrganizationProfile) ExcludesAllergen(a catalog.AllergenType) bool {
	if p == nil {
		return false
	}
	for _, ex := range p.Preferences.AllergenExclusions {
		if ex == a {
			return true
		}
	}
	return false
}

// HasRestriction reports whether the organization caters for d.
func (p *OrganizationProfile) HasRestriction(d DietaryPreference) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Preferences.DietaryRestrictions {
		if r == d {
			return true
		}
	}
	return false
}

// Exclusions returns the allergen exclusions, or nil for a missing profile.
func (p *OrganizationProfile) Exclusions() []catalog.AllergenType {
	if p == nil {
		return nil
	}
	return p.Preferences.AllergenExclusions
}
