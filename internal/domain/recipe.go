// Package domain defines the core types and interfaces for the recipe book.
// All other packages depend on domain; domain depends on nothing.
package domain

// Serving bounds accepted by the servings control.
const (
	MinServings = 1
	MaxServings = 10
)

// Recipe is a named dish with ingredients, free-text instructions and a
// serving count. The JSON layout is the persisted slot format.
type Recipe struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions string       `json:"instructions"`
	Servings     int          `json:"servings"`
}

// Ingredient is a named quantity belonging to exactly one recipe.
type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Clone returns a deep copy. The ingredient slice is never shared, so edits
// to the copy cannot leak into the original.
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = make([]Ingredient, len(r.Ingredients))
	copy(out.Ingredients, r.Ingredients)
	return out
}

// CloneAll deep-copies a collection.
func CloneAll(rs []Recipe) []Recipe {
	out := make([]Recipe, len(rs))
	for i, r := range rs {
		out[i] = r.Clone()
	}
	return out
}

// IndexOf returns the position of the recipe with the given id, or -1.
func IndexOf(rs []Recipe, id int64) int {
	for i := range rs {
		if rs[i].ID == id {
			return i
		}
	}
	return -1
}
