package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/recipe"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#52525b")).
			Padding(0, 1)

	bufferCardStyle = cardStyle.
			BorderForeground(lipgloss.Color("#fde68a"))

	indexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))
)

// RenderRecipe renders one recipe as a bordered card: name, serving
// count, one "name: amount unit" line per ingredient, then instructions.
func RenderRecipe(r domain.Recipe) string {
	return cardStyle.Render(recipeBody(r))
}

// RenderBuffer renders the edit buffer, numbering ingredients so they can
// be dropped by position.
func RenderBuffer(ed domain.Editing) string {
	r := ed.Buffer
	var b strings.Builder
	heading := "Editing"
	if ed.New {
		heading = "New recipe"
	}
	b.WriteString(secondaryStyle.Render(heading))
	b.WriteByte('\n')
	name := r.Name
	if name == "" {
		name = "(no name)"
	}
	b.WriteString(titleStyle.Render(name))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render(servingsLine(r.Servings)))
	b.WriteByte('\n')
	for i, ing := range r.Ingredients {
		b.WriteString(indexStyle.Render(fmt.Sprintf("%2d. ", i+1)))
		b.WriteString(primaryStyle.Render(IngredientLine(ing)))
		b.WriteByte('\n')
	}
	if r.Instructions != "" {
		b.WriteByte('\n')
		b.WriteString(primaryStyle.Render(r.Instructions))
	}
	return bufferCardStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderList renders the collection as numbered one-line summaries. The
// numbers are what the shell accepts as recipe references.
func RenderList(rs []domain.Recipe) string {
	if len(rs) == 0 {
		return secondaryStyle.Render("  No recipes yet. Type \"add\" to create one.")
	}
	var b strings.Builder
	for i, r := range rs {
		b.WriteString(indexStyle.Render(fmt.Sprintf("  %2d. ", i+1)))
		b.WriteString(titleStyle.Render(r.Name))
		b.WriteString(secondaryStyle.Render(fmt.Sprintf("  %s, %d ingredients", servingsLine(r.Servings), len(r.Ingredients))))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// IngredientLine formats an ingredient as "name: amount unit".
func IngredientLine(ing domain.Ingredient) string {
	line := ing.Name + ": " + recipe.FormatAmount(ing.Amount)
	if ing.Unit != "" {
		line += " " + ing.Unit
	}
	return line
}

func recipeBody(r domain.Recipe) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(r.Name))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render(servingsLine(r.Servings)))
	b.WriteByte('\n')
	for _, ing := range r.Ingredients {
		b.WriteString(primaryStyle.Render("• " + IngredientLine(ing)))
		b.WriteByte('\n')
	}
	if r.Instructions != "" {
		b.WriteByte('\n')
		b.WriteString(primaryStyle.Render(r.Instructions))
	}
	return strings.TrimRight(b.String(), "\n")
}

func servingsLine(n int) string {
	return fmt.Sprintf("Порции: %d", n)
}

// HelpText lists the shell commands.
func HelpText() string {
	rows := [][2]string{
		{"list", "show all recipes"},
		{"show N  |  N", "show recipe N"},
		{"add", "start a new recipe"},
		{"edit N", "edit recipe N"},
		{"name TEXT", "set the name of the recipe being edited"},
		{"instructions TEXT", "set its instructions"},
		{"ingredient NAME AMOUNT [UNIT]", "add an ingredient"},
		{"drop N", "remove ingredient N"},
		{"servings N", "set servings (1-10) without rescaling"},
		{"save", "save the recipe being edited"},
		{"cancel", "discard the edits"},
		{"delete [N]", "delete recipe N, or the one being edited"},
		{"scale N M", "rescale recipe N to M servings (1-10)"},
		{"quit", "leave"},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString("  ")
		b.WriteString(primaryStyle.Render(fmt.Sprintf("%-32s", r[0])))
		b.WriteString(secondaryStyle.Render(r[1]))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
