package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound        = errors.New("not found")
	ErrNotEditing      = errors.New("no recipe is being edited")
	ErrInvalidServings = errors.New("servings must be between 1 and 10")
	ErrNegativeAmount  = errors.New("ingredient amount must not be negative")
	ErrInvalidAmount   = errors.New("ingredient amount must be a finite number")
	ErrIngredientName  = errors.New("ingredient name is required")
	ErrEmptyName       = errors.New("recipe name is required")
	ErrPersist         = errors.New("recipes were not persisted")
)
