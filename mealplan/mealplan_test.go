package mealplan

import (
	"context"
	"errors"
	"fmt"
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

var (
	curry = catalog.Meal{
		ID: "curry", Name: "Linsencurry mit Reis",
		Components:  []string{"Rote Linsen", "Basmati Reis", "Kokosmilch"},
		DietaryTags: []string{"Vegetarian", "Vegan"},
	}
	chicken = catalog.Meal{
		ID: "chicken", Name: "Hähnchenbrust mit Reis",
		Components: []string{"Hähnchenbrust", "basmati reis", "Karotten"},
	}
	lasagne = catalog.Meal{
		ID: "lasagne", Name: "Gemüselasagne",
		Components:  []string{"Lasagneplatten", "Béchamel Sauce", "Käse"},
		Allergens:   []catalog.AllergenType{catalog.AllergenGluten, catalog.AllergenDairy},
		DietaryTags: []string{"Vegetarian"},
	}
)

func testMeals() *catalog.Catalog {
	return catalog.New([]catalog.Product{
		{ID: "p-002", Name: "Basmati Reis (10 kg)", InStock: true},
		{ID: "p-019", Name: "Rote Linsen (5 kg)", InStock: false},
	}, []catalog.Meal{curry, chicken, lasagne})
}

func dairyFreeSchool() foodagent.StaticProfile {
	return foodagent.StaticProfile{P: &profile.OrganizationProfile{
		Name: "Grundschule am Park",
		Type: profile.TypeSchool,
		Preferences: profile.Preferences{
			AllergenExclusions: []catalog.AllergenType{catalog.AllergenDairy},
		},
	}}
}

func newTestPlanner(s store.Store) *Planner {
	p := NewPlanner(s, testMeals(), dairyFreeSchool())
	n := 0
	p.newID = func() string { n++; return fmt.Sprintf("entry-%d", n) }
	p.now = func() time.Time { return time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC) }
	return p
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{in: time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC), want: "2026-10-19"},
		{in: time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC), want: "2026-10-19"},
		{in: time.Date(2026, 10, 25, 23, 59, 0, 0, time.UTC), want: "2026-10-19"},
		{in: time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC), want: "2026-10-26"},
		{in: time.Date(2027, 1, 2, 8, 0, 0, 0, time.UTC), want: "2026-12-28"},
	}
	for _, tt := range tests {
		t.Run(tt.in.Format(time.RFC3339), func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(tt.in).Format("2006-01-02"))
		})
	}
}

func TestParseDayAndSlot(t *testing.T) {
	d, err := ParseDay("Wed")
	require.NoError(t, err)
	assert.Equal(t, Wednesday, d)

	d, err = ParseDay("7")
	require.NoError(t, err)
	assert.Equal(t, Sunday, d)
	assert.Equal(t, "sunday", d.String())

	_, err = ParseDay("someday")
	assert.ErrorIs(t, err, ErrInvalidDay)

	s, err := ParseSlot("Dinner")
	require.NoError(t, err)
	assert.Equal(t, SlotDinner, s)

	_, err = ParseSlot("brunch")
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestPlanner(t *testing.T) {
	ctx := context.Background()
	week := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)

	t.Run("add and remove", func(t *testing.T) {
		p := newTestPlanner(store.NewMemoryStore())

		entry, res, err := p.Add(ctx, week, Monday, SlotLunch, "curry", 40, false)
		require.NoError(t, err)
		assert.False(t, res.HasViolation)
		assert.Equal(t, "entry-1", entry.ID)
		assert.Equal(t, "Linsencurry mit Reis", entry.Meal.Name)

		plan, err := p.Week(ctx, week.AddDate(0, 0, 2))
		require.NoError(t, err)
		assert.Equal(t, "2026-10-19", plan.WeekStart.Format("2006-01-02"))
		require.Len(t, plan.Entries, 1)

		require.NoError(t, p.Remove(ctx, week, "entry-1"))
		assert.ErrorIs(t, p.Remove(ctx, week, "entry-1"), ErrUnknownEntry)

		plan, err = p.Week(ctx, week)
		require.NoError(t, err)
		assert.Empty(t, plan.Entries)
	})

	t.Run("slot is normalised", func(t *testing.T) {
		p := newTestPlanner(store.NewMemoryStore())

		entry, _, err := p.Add(ctx, week, Friday, " Lunch ", "curry", 10, false)
		require.NoError(t, err)
		assert.Equal(t, SlotLunch, entry.Slot)

		plan, err := p.Week(ctx, week)
		require.NoError(t, err)
		require.Len(t, plan.Entries, 1)
		assert.Equal(t, SlotLunch, plan.Entries[0].Slot)
	})

	t.Run("allergen gate", func(t *testing.T) {
		p := newTestPlanner(store.NewMemoryStore())

		_, res, err := p.Add(ctx, week, Tuesday, SlotDinner, "lasagne", 20, false)
		require.ErrorIs(t, err, allergen.ErrOverrideRequired)
		assert.Equal(t, []catalog.AllergenType{catalog.AllergenDairy}, res.ViolatedAllergens)
		assert.Contains(t, res.WarningMessage, "Children with dairy allergies")

		plan, err := p.Week(ctx, week)
		require.NoError(t, err)
		assert.Empty(t, plan.Entries)

		entry, _, err := p.Add(ctx, week, Tuesday, SlotDinner, "lasagne", 20, true)
		require.NoError(t, err)
		assert.True(t, entry.Overridden)
	})

	tests := []struct {
		name     string
		day      Day
		slot     Slot
		meal     string
		servings int
		wantErr  error
	}{
		{name: "unknown meal", day: Monday, slot: SlotLunch, meal: "haggis", servings: 1, wantErr: ErrUnknownMeal},
		{name: "bad day", day: Day(9), slot: SlotLunch, meal: "curry", servings: 1, wantErr: ErrInvalidDay},
		{name: "bad slot", day: Monday, slot: "brunch", meal: "curry", servings: 1, wantErr: ErrInvalidSlot},
		{name: "no servings", day: Monday, slot: SlotLunch, meal: "curry", wantErr: ErrInvalidServings},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := newTestPlanner(store.NewMemoryStore()).Add(ctx, week, tt.day, tt.slot, tt.meal, tt.servings, false)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("store failure", func(t *testing.T) {
		_, err := newTestPlanner(store.NewMemoryStoreWithError(errors.New("offline"))).Week(ctx, week)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load meal plan")
	})
}

func TestEnforce(t *testing.T) {
	plan := Plan{Entries: []Entry{
		{Day: Monday, Meal: curry, Servings: 10},
		{Day: Monday, Meal: chicken, Servings: 10},
		{Day: Tuesday, Meal: lasagne, Servings: 10},
	}}

	t.Run("no settings", func(t *testing.T) {
		assert.Empty(t, Enforce(plan, nil))
		assert.Empty(t, Enforce(plan, &profile.OrganizationProfile{}))
	})

	t.Run("daily and weekly rules", func(t *testing.T) {
		p := &profile.OrganizationProfile{Preferences: profile.Preferences{
			DietaryEnforcement: &profile.DietaryEnforcement{
				RequireVegetarianDaily:   true,
				MinimumVegetarianPerWeek: 2,
				MinimumVeganPerWeek:      3,
			},
		}}
		got := Enforce(plan, p)

		var daily []Day
		var weekly []string
		for _, v := range got {
			if v.Day != nil {
				assert.Equal(t, RuleVegetarianDaily, v.Rule)
				daily = append(daily, *v.Day)
			} else {
				weekly = append(weekly, v.Rule)
			}
		}
		assert.Equal(t, []Day{Wednesday, Thursday, Friday, Saturday, Sunday}, daily)
		assert.Equal(t, []string{RuleMinVeganWeek}, weekly)
	})

	t.Run("vegan daily", func(t *testing.T) {
		p := &profile.OrganizationProfile{Preferences: profile.Preferences{
			DietaryEnforcement: &profile.DietaryEnforcement{RequireVeganDaily: true},
		}}
		got := Enforce(plan, p)
		require.Len(t, got, 6)
		assert.Equal(t, Tuesday, *got[0].Day)
		assert.Equal(t, "No vegan meal planned on tuesday.", got[0].Message)
	})
}

func TestShoppingList(t *testing.T) {
	plan := Plan{Entries: []Entry{
		{Day: Monday, Meal: curry, Servings: 40},
		{Day: Tuesday, Meal: chicken, Servings: 25},
		{Day: Wednesday, Meal: curry, Servings: 10},
	}}

	got := ShoppingList(plan, testMeals().Products())
	names := make([]string, len(got))
	for i, it := range got {
		names[i] = it.Name
	}
	assert.Equal(t, []string{"Basmati Reis", "Hähnchenbrust", "Karotten", "Kokosmilch", "Rote Linsen"}, names)

	rice := got[0]
	assert.Equal(t, 75, rice.Servings)
	assert.Equal(t, []string{"Linsencurry mit Reis", "Hähnchenbrust mit Reis"}, rice.Meals)
	require.NotNil(t, rice.Product)
	assert.Equal(t, "p-002", rice.Product.ID)

	lentils := got[4]
	assert.Equal(t, 50, lentils.Servings)
	assert.Nil(t, lentils.Product, "out-of-stock products are not linked")

	assert.Empty(t, ShoppingList(Plan{}, nil))
}
