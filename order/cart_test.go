package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodagent"
	"foodagent/allergen"
	"foodagent/catalog"
	"foodagent/profile"
	"foodagent/store"
)

type recordingSlack struct {
	channel  string
	messages []string
	err      error
}

func (s *recordingSlack) PostMessage(_ context.Context, channel, message string) error {
	s.channel = channel
	s.messages = append(s.messages, message)
	return s.err
}

func bulk(f float64) *float64 { return &f }

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Product{
		{ID: "rice", Name: "Basmati Reis", Unit: "10 kg", Price: 24.5, BulkPrice: bulk(22), BulkThreshold: 5, InStock: true},
		{ID: "pesto", Name: "Pesto Genovese", Unit: "1 kg", Price: 14.9, Allergens: []catalog.AllergenType{catalog.AllergenNuts, catalog.AllergenDairy}, InStock: true},
		{ID: "prawns", Name: "Garnelen", Unit: "2 kg", Price: 38, Allergens: []catalog.AllergenType{catalog.AllergenShellfish}},
	}, nil)
}

func hospital() foodagent.StaticProfile {
	return foodagent.StaticProfile{P: &profile.OrganizationProfile{
		Name: "St. Marien Klinikum",
		Type: profile.TypeHospital,
		Preferences: profile.Preferences{
			AllergenExclusions: []catalog.AllergenType{catalog.AllergenNuts},
		},
	}}
}

func newTestCart(s store.Store, opts ...CartOption) *Cart {
	c := NewCart(s, testCatalog(), hospital(), opts...)
	c.now = func() time.Time { return time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC) }
	c.newID = func() string { return "order-1" }
	return c
}

func TestCart_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("merges quantities of the same product", func(t *testing.T) {
		c := newTestCart(store.NewMemoryStore())
		_, err := c.Add(ctx, "rice", 2, false)
		require.NoError(t, err)
		_, err = c.Add(ctx, "rice", 3, false)
		require.NoError(t, err)

		items, err := c.Items(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 5, items[0].Quantity)

		total, err := c.Total(ctx)
		require.NoError(t, err)
		assert.Equal(t, 110.0, total, "bulk price applies at the threshold")
	})

	t.Run("excluded allergen requires override", func(t *testing.T) {
		c := newTestCart(store.NewMemoryStore())
		res, err := c.Add(ctx, "pesto", 1, false)
		require.ErrorIs(t, err, allergen.ErrOverrideRequired)
		assert.True(t, res.HasViolation)
		assert.Equal(t, []catalog.AllergenType{catalog.AllergenNuts}, res.ViolatedAllergens)

		items, err := c.Items(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)

		res, err = c.Add(ctx, "pesto", 1, true)
		require.NoError(t, err)
		assert.True(t, res.HasViolation)
		items, err = c.Items(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	tests := []struct {
		name    string
		id      string
		qty     int
		wantErr error
	}{
		{name: "unknown product", id: "caviar", qty: 1, wantErr: ErrUnknownProduct},
		{name: "out of stock", id: "prawns", qty: 1, wantErr: ErrOutOfStock},
		{name: "zero quantity", id: "rice", qty: 0, wantErr: ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCart(store.NewMemoryStore())
			_, err := c.Add(ctx, tt.id, tt.qty, false)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCart_SetQuantityAndRemove(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(store.NewMemoryStore())
	_, err := c.Add(ctx, "rice", 1, false)
	require.NoError(t, err)

	require.NoError(t, c.SetQuantity(ctx, "rice", 4))
	items, err := c.Items(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, items[0].Quantity)

	assert.ErrorIs(t, c.SetQuantity(ctx, "pesto", 2), ErrNotInCart)

	require.NoError(t, c.Remove(ctx, "rice"))
	items, err = c.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCart_Checkout(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart", func(t *testing.T) {
		_, err := newTestCart(store.NewMemoryStore()).Checkout(ctx)
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("records history and notifies slack", func(t *testing.T) {
		slack := &recordingSlack{}
		c := newTestCart(store.NewMemoryStore(), WithSlack(slack, "#kitchen"))
		_, err := c.Add(ctx, "rice", 2, false)
		require.NoError(t, err)

		o, err := c.Checkout(ctx)
		require.NoError(t, err)
		assert.Equal(t, "order-1", o.ID)
		assert.Equal(t, StatusCompleted, o.Status)
		assert.Equal(t, 49.0, o.Total)

		items, err := c.Items(ctx)
		require.NoError(t, err)
		assert.Empty(t, items, "checkout empties the cart")

		history, err := c.History(ctx)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, o.ID, history[0].ID)

		require.Len(t, slack.messages, 1)
		assert.Equal(t, "#kitchen", slack.channel)
		assert.Contains(t, slack.messages[0], "St. Marien Klinikum")
		assert.Contains(t, slack.messages[0], "€49.00")
	})

	t.Run("slack failure does not fail checkout", func(t *testing.T) {
		slack := &recordingSlack{err: errors.New("webhook down")}
		c := newTestCart(store.NewMemoryStore(), WithSlack(slack, "#kitchen"))
		_, err := c.Add(ctx, "rice", 1, false)
		require.NoError(t, err)

		_, err = c.Checkout(ctx)
		require.NoError(t, err)
		assert.Len(t, slack.messages, 1)
	})

	t.Run("store failure", func(t *testing.T) {
		c := newTestCart(store.NewMemoryStoreWithError(errors.New("disk full")))
		_, err := c.Checkout(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load cart")
	})
}

func TestOrder_Summary(t *testing.T) {
	o := Order{
		ID:        "abc",
		Timestamp: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
		Items: []Item{
			{Product: catalog.Product{Name: "Basmati Reis", Unit: "10 kg", Price: 24.5}, Quantity: 2},
		},
		Total: 49,
	}
	s := o.Summary("")
	assert.Contains(t, s, "New order\n")
	assert.Contains(t, s, "2 × Basmati Reis (10 kg): €49.00")
	assert.Contains(t, s, "Total: €49.00")
}
