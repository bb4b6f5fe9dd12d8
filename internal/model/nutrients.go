package model

// Nutrients holds the four tracked values: calories, carbs, protein and fats.
// On an Item they are per 100 grams; on a Dish or Menu they are totals.
type Nutrients struct {
	Calories int `json:"calories"`
	Carbs    int `json:"carbs"`
	Protein  int `json:"protein"`
	Fats     int `json:"fats"`
}

// Add returns the field-wise sum of n and o.
func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + o.Calories,
		Carbs:    n.Carbs + o.Carbs,
		Protein:  n.Protein + o.Protein,
		Fats:     n.Fats + o.Fats,
	}
}

// Input bounds. With both at their maximum one scaled field stays far below
// the int32 range.
const (
	MaxPer100g = 100_000
	MaxGrams   = 100_000
)

// Valid reports whether every field is within [0, MaxPer100g].
func (n Nutrients) Valid() bool {
	for _, v := range []int{n.Calories, n.Carbs, n.Protein, n.Fats} {
		if v < 0 || v > MaxPer100g {
			return false
		}
	}
	return true
}

// ValidGrams reports whether g is within [0, MaxGrams].
func ValidGrams(g int) bool {
	return g >= 0 && g <= MaxGrams
}
