package recipe

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// File is the on-disk TOML layout of a recipe file:
//
//	[[recipe]]
//	name = "Блины"
//	servings = 4
//	instructions = "..."
//
//	  [[recipe.ingredient]]
//	  name = "Мука"
//	  amount = 200
//	  unit = "г"
type File struct {
	Recipes []fileRecipe `toml:"recipe"`
}

type fileRecipe struct {
	ID           int64            `toml:"id,omitempty"`
	Name         string           `toml:"name"`
	Servings     int              `toml:"servings"`
	Instructions string           `toml:"instructions"`
	Ingredients  []fileIngredient `toml:"ingredient"`
}

type fileIngredient struct {
	Name   string  `toml:"name"`
	Amount float64 `toml:"amount"`
	Unit   string  `toml:"unit"`
}

// LoadFile reads recipes in format f from path. A zero id means the
// caller should assign one.
func LoadFile(path string, f Format) ([]domain.Recipe, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rs, err := Read(data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Decode parses TOML recipe data.
func Decode(data []byte) ([]domain.Recipe, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse recipe file: %w", err)
	}

	out := make([]domain.Recipe, 0, len(f.Recipes))
	for _, fr := range f.Recipes {
		r := domain.Recipe{
			ID:           fr.ID,
			Name:         fr.Name,
			Servings:     fr.Servings,
			Instructions: fr.Instructions,
			Ingredients:  make([]domain.Ingredient, 0, len(fr.Ingredients)),
		}
		if r.Servings == 0 {
			r.Servings = domain.MinServings
		}
		for _, fi := range fr.Ingredients {
			r.Ingredients = append(r.Ingredients, domain.Ingredient(fi))
		}
		out = append(out, r)
	}
	return out, nil
}

// Encode writes recipes as TOML.
func Encode(w io.Writer, rs []domain.Recipe) error {
	f := File{Recipes: make([]fileRecipe, 0, len(rs))}
	for _, r := range rs {
		fr := fileRecipe{
			ID:           r.ID,
			Name:         r.Name,
			Servings:     r.Servings,
			Instructions: r.Instructions,
		}
		for _, ing := range r.Ingredients {
			fr.Ingredients = append(fr.Ingredients, fileIngredient(ing))
		}
		f.Recipes = append(f.Recipes, fr)
	}
	return toml.NewEncoder(w).Encode(f)
}
