// Package nutrition aggregates nutrient profiles.
//
// Two modes exist and are not interchangeable. SumWeighted scales per-100g
// profiles by a gram weight and truncates each line before summing; it is
// used for dishes. SumTotals adds already aggregated totals with no scaling;
// it is used for menus, which sum dish totals.
package nutrition

import "github.com/dukerupert/nutrimenu/internal/model"

// Portion is a per-100g profile paired with the grams used.
type Portion struct {
	Per100g model.Nutrients
	Grams   int
}

// Scale converts a per-100g profile to the amount contained in grams,
// truncating each field toward zero.
func Scale(per100g model.Nutrients, grams int) model.Nutrients {
	return model.Nutrients{
		Calories: scaleField(per100g.Calories, grams),
		Carbs:    scaleField(per100g.Carbs, grams),
		Protein:  scaleField(per100g.Protein, grams),
		Fats:     scaleField(per100g.Fats, grams),
	}
}

// Integer arithmetic keeps the truncation exact; inputs are non-negative so
// division truncates the same way floor does.
func scaleField(per100g, grams int) int {
	return int(int64(per100g) * int64(grams) / 100)
}

// SumWeighted returns Σ Scale(p.Per100g, p.Grams). Empty input yields zero.
func SumWeighted(portions []Portion) model.Nutrients {
	var total model.Nutrients
	for _, p := range portions {
		total = total.Add(Scale(p.Per100g, p.Grams))
	}
	return total
}

// SumTotals adds totals with implicit weight 1. Empty input yields zero.
func SumTotals(totals []model.Nutrients) model.Nutrients {
	var total model.Nutrients
	for _, t := range totals {
		total = total.Add(t)
	}
	return total
}
