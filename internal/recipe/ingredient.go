package recipe

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// ParseIngredient reads "<name> <amount> [unit]". The name may contain
// spaces; the last numeric word is the amount and anything after it is the
// unit. A decimal comma is accepted ("0,5").
func ParseIngredient(s string) (domain.Ingredient, error) {
	fields := strings.Fields(s)
	at := -1
	var amount float64
	for i := len(fields) - 1; i > 0; i-- {
		v, err := strconv.ParseFloat(strings.Replace(fields[i], ",", ".", 1), 64)
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			at, amount = i, v
			break
		}
	}
	if at == -1 {
		return domain.Ingredient{}, fmt.Errorf("ingredient %q: expected <name> <amount> [unit]", s)
	}
	if amount < 0 {
		return domain.Ingredient{}, fmt.Errorf("ingredient %q: %w", s, domain.ErrNegativeAmount)
	}
	return domain.Ingredient{
		Name:   strings.Join(fields[:at], " "),
		Amount: amount,
		Unit:   strings.Join(fields[at+1:], " "),
	}, nil
}

// ParseIngredientLines parses one ingredient per non-blank line.
func ParseIngredientLines(text string) ([]domain.Ingredient, error) {
	out := []domain.Ingredient{}
	for n, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		ing, err := ParseIngredient(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		out = append(out, ing)
	}
	return out, nil
}

// FormatIngredientLines is the inverse of ParseIngredientLines. Amounts
// keep full precision so an unchanged form round-trips exactly.
func FormatIngredientLines(ings []domain.Ingredient) string {
	lines := make([]string, 0, len(ings))
	for _, ing := range ings {
		line := ing.Name + " " + strconv.FormatFloat(ing.Amount, 'f', -1, 64)
		if ing.Unit != "" {
			line += " " + ing.Unit
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatAmount renders an amount for display, rounded to two decimals.
func FormatAmount(a float64) string {
	return strconv.FormatFloat(math.Round(a*100)/100, 'f', -1, 64)
}
