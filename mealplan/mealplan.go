// Package mealplan keeps weekly meal plans for the organization, checks them
// against its dietary enforcement rules and turns them into shopping lists.
package mealplan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"foodagent/catalog"
)

var (
	ErrUnknownMeal     = errors.New("unknown meal")
	ErrUnknownEntry    = errors.New("unknown plan entry")
	ErrInvalidDay      = errors.New("invalid day")
	ErrInvalidSlot     = errors.New("invalid meal slot")
	ErrInvalidServings = errors.New("servings must be positive")
)

// Day is a day of the plan week, Monday first.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Days lists the week in order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Day) Valid() bool { return d >= Monday && d <= Sunday }

func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// ParseDay accepts a day name, its three-letter prefix, or 1-7.
func ParseDay(s string) (Day, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range dayNames {
		if s == name || (len(s) == 3 && strings.HasPrefix(name, s)) || s == fmt.Sprint(i+1) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDay, s)
}

type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
	SlotSnack     Slot = "snack"
)

func ParseSlot(s string) (Slot, error) {
	slot := Slot(strings.ToLower(strings.TrimSpace(s)))
	switch slot {
	case SlotBreakfast, SlotLunch, SlotDinner, SlotSnack:
		return slot, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSlot, s)
}

// Entry is one meal scheduled in a plan.
type Entry struct {
	ID         string       `json:"id"`
	Day        Day          `json:"day"`
	Slot       Slot         `json:"slot"`
	Meal       catalog.Meal `json:"meal"`
	Servings   int          `json:"servings"`
	Overridden bool         `json:"overridden,omitempty"`
	AddedAt    time.Time    `json:"added_at"`
}

func (e Entry) vegetarian() bool {
	return e.Meal.HasTag("Vegetarian") || e.Meal.HasTag("Vegan")
}

func (e Entry) vegan() bool {
	return e.Meal.HasTag("Vegan")
}

// Plan is the meal plan of one ISO week.
type Plan struct {
	WeekStart time.Time `json:"week_start"`
	Entries   []Entry   `json:"entries"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Day returns the entries scheduled on d in insertion order.
func (p Plan) Day(d Day) []Entry {
	var out []Entry
	for _, e := range p.Entries {
		if e.Day == d {
			out = append(out, e)
		}
	}
	return out
}

// WeekStart returns midnight UTC of the Monday of t's week.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func storeKey(weekStart time.Time) string {
	return "mealplan-" + WeekStart(weekStart).Format("2006-01-02")
}
