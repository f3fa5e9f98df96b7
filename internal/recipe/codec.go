package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// Format is an import/export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat accepts json, yaml/yml and toml, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unknown format %q (want json, yaml or toml)", s)
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%s: no extension, pass --format", path)
	}
	return ParseFormat(ext)
}

// yamlRecipe pins YAML keys to the JSON names.
type yamlRecipe struct {
	ID           int64            `yaml:"id,omitempty"`
	Name         string           `yaml:"name"`
	Servings     int              `yaml:"servings"`
	Instructions string           `yaml:"instructions"`
	Ingredients  []yamlIngredient `yaml:"ingredients"`
}

type yamlIngredient struct {
	Name   string  `yaml:"name"`
	Amount float64 `yaml:"amount"`
	Unit   string  `yaml:"unit"`
}

// Write encodes rs in format f.
func Write(w io.Writer, f Format, rs []domain.Recipe) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(rs)
	case FormatYAML:
		out := make([]yamlRecipe, 0, len(rs))
		for _, r := range rs {
			yr := yamlRecipe{ID: r.ID, Name: r.Name, Servings: r.Servings, Instructions: r.Instructions}
			for _, ing := range r.Ingredients {
				yr.Ingredients = append(yr.Ingredients, yamlIngredient(ing))
			}
			out = append(out, yr)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return Encode(w, rs)
	}
	return fmt.Errorf("unknown format %q", f)
}

// Read decodes recipes in format f. Missing serving counts default to one.
func Read(data []byte, f Format) ([]domain.Recipe, error) {
	switch f {
	case FormatTOML:
		return Decode(data)
	case FormatJSON:
		var rs []domain.Recipe
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&rs); err != nil {
			return nil, fmt.Errorf("parse json recipes: %w", err)
		}
		return withDefaults(rs), nil
	case FormatYAML:
		var yrs []yamlRecipe
		if err := yaml.Unmarshal(data, &yrs); err != nil {
			return nil, fmt.Errorf("parse yaml recipes: %w", err)
		}
		rs := make([]domain.Recipe, 0, len(yrs))
		for _, yr := range yrs {
			r := domain.Recipe{
				ID:           yr.ID,
				Name:         yr.Name,
				Servings:     yr.Servings,
				Instructions: yr.Instructions,
				Ingredients:  make([]domain.Ingredient, 0, len(yr.Ingredients)),
			}
			for _, yi := range yr.Ingredients {
				r.Ingredients = append(r.Ingredients, domain.Ingredient(yi))
			}
			rs = append(rs, r)
		}
		return withDefaults(rs), nil
	}
	return nil, fmt.Errorf("unknown format %q", f)
}

func withDefaults(rs []domain.Recipe) []domain.Recipe {
	for i := range rs {
		if rs[i].Servings == 0 {
			rs[i].Servings = domain.MinServings
		}
		if rs[i].Ingredients == nil {
			rs[i].Ingredients = []domain.Ingredient{}
		}
	}
	return rs
}
