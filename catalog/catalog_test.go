package catalog

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLoader map[string][]byte

func (m mapLoader) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := m[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

func ptr(f float64) *float64 { return &f }

func TestProduct_Pricing(t *testing.T) {
	tests := []struct {
		name          string
		product       Product
		qty           int
		wantEffective float64
		wantPriceFor  float64
	}{
		{
			name:          "no bulk price",
			product:       Product{Price: 4.5},
			qty:           100,
			wantEffective: 4.5,
			wantPriceFor:  4.5,
		},
		{
			name:          "bulk price below threshold",
			product:       Product{Price: 10, BulkPrice: ptr(8), BulkThreshold: 5},
			qty:           4,
			wantEffective: 8,
			wantPriceFor:  10,
		},
		{
			name:          "bulk price at threshold",
			product:       Product{Price: 10, BulkPrice: ptr(8), BulkThreshold: 5},
			qty:           5,
			wantEffective: 8,
			wantPriceFor:  8,
		},
		{
			name:          "bulk price without threshold never applies to orders",
			product:       Product{Price: 10, BulkPrice: ptr(8)},
			qty:           50,
			wantEffective: 8,
			wantPriceFor:  10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantEffective, tt.product.EffectivePrice())
			assert.Equal(t, tt.wantPriceFor, tt.product.PriceFor(tt.qty))
		})
	}
}

func TestParseAllergen(t *testing.T) {
	a, err := ParseAllergen(" Nuts ")
	require.NoError(t, err)
	assert.Equal(t, AllergenNuts, a)
	assert.Equal(t, "Nuts", a.Title())

	_, err = ParseAllergen("celery")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	t.Run("json document", func(t *testing.T) {
		c, err := Parse([]byte(`{
			"products": [
				{"id": "p1", "name": "Rice", "price": 2.5, "allergens": [], "in_stock": true},
				{"id": "p2", "name": "Peanuts", "price": 3, "allergens": ["NUTS"], "in_stock": false}
			],
			"meals": [
				{"id": "m1", "name": "Curry", "dietary_tags": ["Vegan"], "allergens": ["soy"]}
			]
		}`))
		require.NoError(t, err)
		require.Len(t, c.Products(), 2)
		require.Len(t, c.Meals(), 1)

		assert.Equal(t, []AllergenType{AllergenNuts}, c.Products()[1].Allergens)
		assert.Len(t, c.InStockProducts(), 1)
		assert.True(t, c.Meals()[0].HasTag("vegan"))

		p, ok := c.Product("p2")
		require.True(t, ok)
		assert.Equal(t, "Peanuts", p.Name)

		_, ok = c.Meal("missing")
		assert.False(t, ok)
	})

	t.Run("unknown allergen", func(t *testing.T) {
		_, err := Parse([]byte(`products: [{id: p1, allergens: [celery]}]`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"p1"`)
	})

	t.Run("malformed document", func(t *testing.T) {
		_, err := Parse([]byte("products: [unterminated"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse catalog")
	})
}

func TestLoad(t *testing.T) {
	data, err := os.ReadFile("../artifacts/catalog.yaml")
	require.NoError(t, err)

	c, err := Load(context.Background(), mapLoader{"catalog.yaml": data}, "catalog.yaml")
	require.NoError(t, err)

	assert.NotEmpty(t, c.Products())
	assert.NotEmpty(t, c.Meals())
	for _, p := range c.Products() {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.Category)
	}

	_, err = Load(context.Background(), mapLoader{}, "catalog.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read catalog")
}

func TestCatalog_Search(t *testing.T) {
	c := New([]Product{
		{ID: "1", Name: "Basmati Reis", Category: "Pasta & Grains", InStock: true},
		{ID: "2", Name: "Spaghetti", Category: "Pasta & Grains", InStock: false},
		{ID: "3", Name: "Tofu", Description: "firm organic tofu", Category: "Vegetables", InStock: true},
	}, nil)

	assert.Len(t, c.Search(""), 2)
	assert.Len(t, c.Search("pasta"), 1)
	assert.Len(t, c.Search("ORGANIC"), 1)
	assert.Empty(t, c.Search("salmon"))
}
