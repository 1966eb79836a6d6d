package catalog

import (
	"fmt"
	"strings"
)

// AllergenType is one of the eight allergens the catalog tracks.
type AllergenType string

const (
	AllergenNuts      AllergenType = "nuts"
	AllergenDairy     AllergenType = "dairy"
	AllergenGluten    AllergenType = "gluten"
	AllergenEggs      AllergenType = "eggs"
	AllergenSoy       AllergenType = "soy"
	AllergenFish      AllergenType = "fish"
	AllergenShellfish AllergenType = "shellfish"
	AllergenSesame    AllergenType = "sesame"
)

// Allergens lists every allergen type in display order.
var Allergens = []AllergenType{
	AllergenNuts,
	AllergenDairy,
	AllergenGluten,
	AllergenEggs,
	AllergenSoy,
	AllergenFish,
	AllergenShellfish,
	AllergenSesame,
}

// ParseAllergen maps a case-insensitive name onto an AllergenType.
func ParseAllergen(s string) (AllergenType, error) {
	want := AllergenType(strings.ToLower(strings.TrimSpace(s)))
	for _, a := range Allergens {
		if a == want {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown allergen %q", s)
}

// Title returns the allergen name with its first letter upper-cased.
func (a AllergenType) Title() string {
	if a == "" {
		return ""
	}
	return strings.ToUpper(string(a[:1])) + string(a[1:])
}

// NutritionalInfo holds per-unit macro values.
type NutritionalInfo struct {
	Calories float64 `json:"calories" yaml:"calories"`
	Protein  float64 `json:"protein" yaml:"protein"`
	Carbs    float64 `json:"carbs" yaml:"carbs"`
	Fat      float64 `json:"fat" yaml:"fat"`
}

// Product is an orderable catalog item.
type Product struct {
	ID              string          `json:"id" yaml:"id"`
	SKU             string          `json:"sku" yaml:"sku"`
	Name            string          `json:"name" yaml:"name"`
	Description     string          `json:"description" yaml:"description"`
	Category        string          `json:"category" yaml:"category"`
	Price           float64         `json:"price" yaml:"price"`
	BulkPrice       *float64        `json:"bulk_price,omitempty" yaml:"bulk_price,omitempty"`
	BulkThreshold   int             `json:"bulk_threshold,omitempty" yaml:"bulk_threshold,omitempty"`
	Unit            string          `json:"unit" yaml:"unit"`
	Allergens       []AllergenType  `json:"allergens" yaml:"allergens"`
	NutritionalInfo NutritionalInfo `json:"nutritional_info" yaml:"nutritional_info"`
	InStock         bool            `json:"in_stock" yaml:"in_stock"`
}

// EffectivePrice is the bulk price when the product has one, otherwise the unit price.
func (p Product) EffectivePrice() float64 {
	if p.BulkPrice != nil {
		return *p.BulkPrice
	}
	return p.Price
}

// PriceFor returns the unit price that applies when ordering qty units.
func (p Product) PriceFor(qty int) float64 {
	if p.BulkPrice != nil && p.BulkThreshold > 0 && qty >= p.BulkThreshold {
		return *p.BulkPrice
	}
	return p.Price
}

// HasAllergen reports whether the product declares a.
func (p Product) HasAllergen(a AllergenType) bool {
	return containsAllergen(p.Allergens, a)
}

// HasAnyAllergen reports whether the product declares any of set.
func (p Product) HasAnyAllergen(set []AllergenType) bool {
	for _, a := range set {
		if p.HasAllergen(a) {
			return true
		}
	}
	return false
}

// Sustainability describes the environmental footprint of a meal.
type Sustainability struct {
	CO2PerServing float64 `json:"co2_per_serving" yaml:"co2_per_serving"`
	Regional      bool    `json:"regional" yaml:"regional"`
	Organic       bool    `json:"organic" yaml:"organic"`
	Rating        string  `json:"rating" yaml:"rating"`
}

// FoodSafety carries storage and certification data for a meal.
type FoodSafety struct {
	StorageTemp    string `json:"storage_temp" yaml:"storage_temp"`
	ShelfLifeDays  int    `json:"shelf_life_days" yaml:"shelf_life_days"`
	HACCPCertified bool   `json:"haccp_certified" yaml:"haccp_certified"`
}

// Meal is a prepared dish offered for meal planning.
type Meal struct {
	ID              string          `json:"id" yaml:"id"`
	SKU             string          `json:"sku" yaml:"sku"`
	Name            string          `json:"name" yaml:"name"`
	Description     string          `json:"description" yaml:"description"`
	Category        string          `json:"category" yaml:"category"`
	Price           float64         `json:"price" yaml:"price"`
	Unit            string          `json:"unit" yaml:"unit"`
	ServingSize     string          `json:"serving_size" yaml:"serving_size"`
	Components      []string        `json:"components" yaml:"components"`
	Allergens       []AllergenType  `json:"allergens" yaml:"allergens"`
	NutritionalInfo NutritionalInfo `json:"nutritional_info" yaml:"nutritional_info"`
	DietaryTags     []string        `json:"dietary_tags" yaml:"dietary_tags"`
	InStock         bool            `json:"in_stock" yaml:"in_stock"`
	Sustainability  *Sustainability `json:"sustainability,omitempty" yaml:"sustainability,omitempty"`
	FoodSafety      *FoodSafety     `json:"food_safety,omitempty" yaml:"food_safety,omitempty"`
}

// HasAllergen reports whether the meal declares a.
func (m Meal) HasAllergen(a AllergenType) bool {
	return containsAllergen(m.Allergens, a)
}

// HasTag reports whether the meal carries the dietary tag, ignoring case.
func (m Meal) HasTag(tag string) bool {
	for _, t := range m.DietaryTags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func containsAllergen(list []AllergenType, a AllergenType) bool {
	for _, have := range list {
		if have == a {
			return true
		}
	}
	return false
}

// Catalog is the read-only product and meal collection. The slices handed out
// are shared; callers must not modify them.
type Catalog struct {
	products []Product
	meals    []Meal
}

// New builds a catalog from already-decoded records.
func New(products []Product, meals []Meal) *Catalog {
	return &Catalog{products: products, meals: meals}
}

// Products returns every product in catalog order.
func (c *Catalog) Products() []Product { return c.products }

// Meals returns every meal in catalog order.
func (c *Catalog) Meals() []Meal { return c.meals }

// InStockProducts returns a fresh slice of the products currently in stock.
func (c *Catalog) InStockProducts() []Product {
	return InStock(c.products)
}

// Product looks up a product by ID.
func (c *Catalog) Product(id string) (Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Meal looks up a meal by ID.
func (c *Catalog) Meal(id string) (Meal, bool) {
	for _, m := range c.meals {
		if m.ID == id {
			return m, true
		}
	}
	return Meal{}, false
}

// InStock filters products down to those in stock, preserving order.
func InStock(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.InStock {
			out = append(out, p)
		}
	}
	return out
}

// Search returns in-stock products whose name, description or category contains
// the query, ignoring case. An empty query matches everything in stock.
func (c *Catalog) Search(query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Product, 0)
	for _, p := range c.InStockProducts() {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out
}
