package model

import (
	"strings"
	"time"
)

// DateLayout is the wire and storage format of Menu.Date.
const DateLayout = "2006-01-02"

type Meal string

const (
	MealBreakfast Meal = "BREAKFAST"
	MealLunch     Meal = "LUNCH"
	MealDinner    Meal = "DINNER"
	MealSupper    Meal = "SUPPER"
)

// ParseMeal accepts a meal name in any case.
func ParseMeal(s string) (Meal, bool) {
	m := Meal(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSupper:
		return m, true
	}
	return "", false
}

// ParseDate normalizes a YYYY-MM-DD date string.
func ParseDate(s string) (string, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return t.Format(DateLayout), true
}

type Menu struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Meal      Meal      `json:"meal"`
	UserID    *int64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MenuKey is the unique business key of a menu. A nil UserID marks a
// global menu and is a distinct key value, not a wildcard.
type MenuKey struct {
	Meal   Meal
	Date   string
	UserID *int64
}

func (m *Menu) Key() MenuKey {
	return MenuKey{Meal: m.Meal, Date: m.Date, UserID: m.UserID}
}

// Equal compares keys with a nil UserID equal only to another nil.
func (k MenuKey) Equal(o MenuKey) bool {
	if k.Meal != o.Meal || k.Date != o.Date {
		return false
	}
	if k.UserID == nil || o.UserID == nil {
		return k.UserID == nil && o.UserID == nil
	}
	return *k.UserID == *o.UserID
}

// MenuComposition is a menu with its resolved dishes and aggregated total.
// MissingDishes counts placeholders, so a zero total from missing dishes can
// be told apart from a menu of empty dishes.
type MenuComposition struct {
	Menu          Menu          `json:"menu"`
	Dishes        []DishSummary `json:"dishes"`
	Total         Nutrients     `json:"total"`
	MissingDishes int           `json:"missing_dishes"`
}
