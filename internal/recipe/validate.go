package recipe

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// Validate checks the invariants a recipe must hold before it enters the
// collection. All violations are joined into one error.
func Validate(r domain.Recipe) error {
	var errs []error
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, domain.ErrEmptyName)
	}
	if r.Servings < domain.MinServings || r.Servings > domain.MaxServings {
		errs = append(errs, fmt.Errorf("servings %d: %w", r.Servings, domain.ErrInvalidServings))
	}
	for i, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			errs = append(errs, fmt.Errorf("ingredient %d: %w", i+1, domain.ErrIngredientName))
		}
		switch {
		case math.IsNaN(ing.Amount) || math.IsInf(ing.Amount, 0):
			errs = append(errs, fmt.Errorf("ingredient %d (%s): %w", i+1, ing.Name, domain.ErrInvalidAmount))
		case ing.Amount < 0:
			errs = append(errs, fmt.Errorf("ingredient %d (%s): %w", i+1, ing.Name, domain.ErrNegativeAmount))
		}
	}
	return errors.Join(errs...)
}

// ValidateCollection runs Validate on every recipe and checks that ids are
// unique.
func ValidateCollection(rs []domain.Recipe) error {
	var errs []error
	seen := make(map[int64]bool, len(rs))
	for _, r := range rs {
		if seen[r.ID] {
			errs = append(errs, fmt.Errorf("duplicate recipe id %d", r.ID))
		}
		seen[r.ID] = true
		if err := Validate(r); err != nil {
			errs = append(errs, fmt.Errorf("recipe %d: %w", r.ID, err))
		}
	}
	return errors.Join(errs...)
}
