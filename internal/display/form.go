package display

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/recipe"
)

// ErrFormCancelled is returned when the user aborts or declines the form.
var ErrFormCancelled = errors.New("form cancelled")

// formValues backs the edit dialog fields.
type formValues struct {
	name         string
	servings     int
	ingredients  string
	instructions string
	confirmed    bool
}

func valuesFrom(r domain.Recipe) *formValues {
	return &formValues{
		name:         r.Name,
		servings:     recipe.Clamp(r.Servings),
		ingredients:  recipe.FormatIngredientLines(r.Ingredients),
		instructions: r.Instructions,
		confirmed:    true,
	}
}

// apply writes the form values into r. The id is never touched.
func (v *formValues) apply(r *domain.Recipe) error {
	ings, err := recipe.ParseIngredientLines(v.ingredients)
	if err != nil {
		return err
	}
	r.Name = strings.TrimSpace(v.name)
	r.Servings = v.servings
	r.Ingredients = ings
	r.Instructions = strings.TrimSpace(v.instructions)
	return nil
}

func servingOptions() []huh.Option[int] {
	n := make([]int, 0, domain.MaxServings)
	for i := domain.MinServings; i <= domain.MaxServings; i++ {
		n = append(n, i)
	}
	return huh.NewOptions(n...)
}

func newRecipeForm(title string, v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Recipe name (required)").
				Placeholder("e.g., Сырники").
				Value(&v.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),

			huh.NewSelect[int]().
				Title("Servings").
				Description("Changing this here does not rescale amounts").
				Options(servingOptions()...).
				Value(&v.servings),
		),

		huh.NewGroup(
			huh.NewText().
				Title("Ingredients").
				Description("One per line: name amount unit").
				Placeholder("Мука 200 г\nЯйца 2 шт").
				CharLimit(5000).
				Value(&v.ingredients).
				Validate(func(s string) error {
					_, err := recipe.ParseIngredientLines(s)
					return err
				}),

			huh.NewText().
				Title("Instructions").
				Placeholder("1. ...").
				CharLimit(5000).
				Value(&v.instructions),
		),

		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this recipe?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&v.confirmed),
		),
	).WithTheme(huh.ThemeDracula())
}

// EditRecipe runs the edit dialog for r and returns the edited copy.
// Aborting or answering "Cancel" returns ErrFormCancelled.
func EditRecipe(title string, r domain.Recipe) (domain.Recipe, error) {
	v := valuesFrom(r)
	if err := newRecipeForm(title, v).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return domain.Recipe{}, ErrFormCancelled
		}
		return domain.Recipe{}, fmt.Errorf("form error: %w", err)
	}
	if !v.confirmed {
		return domain.Recipe{}, ErrFormCancelled
	}

	out := r.Clone()
	if err := v.apply(&out); err != nil {
		return domain.Recipe{}, err
	}
	return out, nil
}

// ConfirmDelete asks before deleting a recipe.
func ConfirmDelete(name string) (bool, error) {
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q?", name)).
			Affirmative("Delete").
			Negative("Keep").
			Value(&ok),
	)).WithTheme(huh.ThemeDracula()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}
