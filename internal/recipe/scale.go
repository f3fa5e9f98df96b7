package recipe

import (
	"fmt"
	"math"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// Rescale returns a copy of r cooked for n servings. Every ingredient
// amount is multiplied by n / r.Servings; r itself is not modified. An
// amount that overflows to infinity fails with ErrInvalidAmount.
func Rescale(r domain.Recipe, n int) (domain.Recipe, error) {
	if n < domain.MinServings || n > domain.MaxServings {
		return domain.Recipe{}, fmt.Errorf("rescale to %d: %w", n, domain.ErrInvalidServings)
	}
	if r.Servings < domain.MinServings {
		return domain.Recipe{}, fmt.Errorf("rescale %q from %d servings: %w", r.Name, r.Servings, domain.ErrInvalidServings)
	}

	out := r.Clone()
	scale := float64(n) / float64(r.Servings)
	for i := range out.Ingredients {
		out.Ingredients[i].Amount *= scale
		if a := out.Ingredients[i].Amount; math.IsInf(a, 0) || math.IsNaN(a) {
			return domain.Recipe{}, fmt.Errorf("rescale %q to %d: %s: %w", r.Name, n, out.Ingredients[i].Name, domain.ErrInvalidAmount)
		}
	}
	out.Servings = n
	return out, nil
}

// Clamp pins a servings control value to the accepted range.
func Clamp(n int) int {
	if n < domain.MinServings {
		return domain.MinServings
	}
	if n > domain.MaxServings {
		return domain.MaxServings
	}
	return n
}
