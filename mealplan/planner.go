package mealplan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"foodagent"
	"foodagent/allergen"
	"foodagent/catalog"
	"foodagent/store"
)

// MealLookup resolves catalog meals by ID.
type MealLookup interface {
	Meal(id string) (catalog.Meal, bool)
}

// Planner edits the persisted weekly plans.
type Planner struct {
	store    store.Store
	meals    MealLookup
	profiles foodagent.ProfileProvider
	now      func() time.Time
	newID    func() string
}

func NewPlanner(s store.Store, meals MealLookup, profiles foodagent.ProfileProvider) *Planner {
	return &Planner{
		store:    s,
		meals:    meals,
		profiles: profiles,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Week returns the plan of the week containing weekStart. A week nobody has
// planned yet is empty.
func (p *Planner) Week(ctx context.Context, weekStart time.Time) (Plan, error) {
	start := WeekStart(weekStart)
	plan, err := store.GetJSON(ctx, p.store, storeKey(start), Plan{WeekStart: start})
	if err != nil {
		return Plan{}, fmt.Errorf("load meal plan: %w", err)
	}
	return plan, nil
}

// Add schedules a meal. A meal that conflicts with the organization's allergen
// exclusions is only added with override; otherwise the check result comes
// back with allergen.ErrOverrideRequired and the plan is unchanged.
func (p *Planner) Add(ctx context.Context, weekStart time.Time, day Day, slot Slot, mealID string, servings int, override bool) (Entry, allergen.Result, error) {
	if !day.Valid() {
		return Entry{}, allergen.Result{}, fmt.Errorf("%w: %d", ErrInvalidDay, int(day))
	}
	slot, err := ParseSlot(string(slot))
	if err != nil {
		return Entry{}, allergen.Result{}, err
	}
	if servings <= 0 {
		return Entry{}, allergen.Result{}, ErrInvalidServings
	}
	meal, ok := p.meals.Meal(mealID)
	if !ok {
		return Entry{}, allergen.Result{}, fmt.Errorf("%w: %s", ErrUnknownMeal, mealID)
	}

	prof, err := p.profiles.Profile(ctx)
	if err != nil {
		return Entry{}, allergen.Result{}, err
	}
	res := allergen.Check(allergen.FromMeal(meal), prof)
	if res.HasViolation && !override {
		slog.Info("PLANNER: Allergen violation, override required", "meal", meal.ID, "allergens", res.ViolatedAllergens)
		return Entry{}, res, allergen.ErrOverrideRequired
	}

	plan, err := p.Week(ctx, weekStart)
	if err != nil {
		return Entry{}, res, err
	}
	now := p.now().UTC()
	entry := Entry{
		ID:         p.newID(),
		Day:        day,
		Slot:       slot,
		Meal:       meal,
		Servings:   servings,
		Overridden: res.HasViolation,
		AddedAt:    now,
	}
	plan.Entries = append(plan.Entries, entry)
	plan.UpdatedAt = now
	if err := p.save(ctx, plan); err != nil {
		return Entry{}, res, err
	}

	slog.Info("PLANNER: Meal scheduled", "week", plan.WeekStart.Format("2006-01-02"), "day", day, "slot", slot, "meal", meal.ID, "servings", servings)
	return entry, res, nil
}

// Remove deletes one entry from the week's plan.
func (p *Planner) Remove(ctx context.Context, weekStart time.Time, entryID string) error {
	plan, err := p.Week(ctx, weekStart)
	if err != nil {
		return err
	}
	for i, e := range plan.Entries {
		if e.ID == entryID {
			plan.Entries = append(plan.Entries[:i], plan.Entries[i+1:]...)
			plan.UpdatedAt = p.now().UTC()
			return p.save(ctx, plan)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownEntry, entryID)
}

func (p *Planner) save(ctx context.Context, plan Plan) error {
	if err := store.SetJSON(ctx, p.store, storeKey(plan.WeekStart), plan); err != nil {
		return fmt.Errorf("save meal plan: %w", err)
	}
	return nil
}
