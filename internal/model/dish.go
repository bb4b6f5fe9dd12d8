package model

import "time"

// NotFoundName is the name carried by placeholder summaries.
const NotFoundName = "(not found)"

type Dish struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DishSummary is a dish with its derived nutrient totals. It is also the
// payload exchanged with a remote dish service.
type DishSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Nutrients
}

// PlaceholderDish returns the zero-valued summary substituted for a dish
// that no longer exists.
func PlaceholderDish(id int64) DishSummary {
	return DishSummary{ID: id, Name: NotFoundName}
}

// IsPlaceholder reports whether s was produced by PlaceholderDish.
func (s DishSummary) IsPlaceholder() bool {
	return s.Name == NotFoundName && s.Nutrients == (Nutrients{})
}

// DishComposition is a dish with its resolved items and aggregated total.
type DishComposition struct {
	Dish  Dish          `json:"dish"`
	Items []ItemPortion `json:"items"`
	Total Nutrients     `json:"total"`
}

// Summary flattens the composition into a DishSummary.
func (c *DishComposition) Summary() DishSummary {
	return DishSummary{ID: c.Dish.ID, Name: c.Dish.Name, Nutrients: c.Total}
}
