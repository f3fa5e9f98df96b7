// Package conversation provides intent parsing and user notification implementations.
package conversation

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/recipe"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches shell input to intents using keywords and simple
// patterns. Recipe numbers are 1-based list positions, not ids.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(list|ls|recipes|l)$`), domain.IntentList},
		{regexp.MustCompile(`(?i)^(add|new|create)$`), domain.IntentAdd},
		{regexp.MustCompile(`(?i)^(save|done|ok)$`), domain.IntentSave},
		{regexp.MustCompile(`(?i)^(cancel|close|discard)$`), domain.IntentCancel},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), domain.IntentQuit},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.IntentHelp},
		{regexp.MustCompile(`(?i)^(show|view|open)\s+(\d+)$`), domain.IntentShow},
		{regexp.MustCompile(`(?i)^(edit|e)\s+(\d+)$`), domain.IntentEdit},
		{regexp.MustCompile(`(?i)^(delete|del|rm)\s+(\d+)$`), domain.IntentDelete},
		{regexp.MustCompile(`(?i)^(drop|remove)\s+(\d+)$`), domain.IntentDropIngredient},
		{regexp.MustCompile(`(?i)^(servings|serves|portions)\s+(-?\d+)$`), domain.IntentSetServings},
		{regexp.MustCompile(`(?i)^(scale|rescale)\s+(\d+)\s+(-?\d+)$`), domain.IntentScale},
	}
	return p
}

var (
	nameRe         = regexp.MustCompile(`(?is)^(name|title)\s+(.+)$`)
	instructionsRe = regexp.MustCompile(`(?is)^(instructions|steps|method)\s+(.+)$`)
	ingredientRe   = regexp.MustCompile(`(?i)^(ingredient|ing|\+)\s+(.+)$`)
	bareDeleteRe   = regexp.MustCompile(`(?i)^(delete|del|rm)$`)
)

// Parse converts user input into an intent. Serving counts outside the
// allowed range are rejected here with domain.ErrInvalidServings.
func (p *KeywordParser) Parse(ctx context.Context, input string, state domain.EditState) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	// A bare number shows that recipe.
	if isDigits(trimmed) {
		n, _ := strconv.Atoi(trimmed)
		return &domain.Intent{Type: domain.IntentShow, Args: []int{n}}, nil
	}

	// Delete without a number targets the recipe in the edit buffer.
	if bareDeleteRe.MatchString(trimmed) && domain.DialogOpen(state) {
		return &domain.Intent{Type: domain.IntentDelete}, nil
	}

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		p.log.Debug("matched intent: %s", rule.intent)
		args := make([]int, 0, len(m)-2)
		for _, s := range m[2:] {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("bad number %q: %w", s, err)
			}
			args = append(args, n)
		}
		switch rule.intent {
		case domain.IntentSetServings:
			if err := checkServings(args[0]); err != nil {
				return nil, err
			}
		case domain.IntentScale:
			if err := checkServings(args[1]); err != nil {
				return nil, err
			}
		}
		return &domain.Intent{Type: rule.intent, Args: args}, nil
	}

	if m := nameRe.FindStringSubmatch(trimmed); m != nil {
		return &domain.Intent{Type: domain.IntentSetName, Payload: strings.TrimSpace(m[2])}, nil
	}
	if m := instructionsRe.FindStringSubmatch(trimmed); m != nil {
		return &domain.Intent{Type: domain.IntentSetInstructions, Payload: strings.TrimSpace(m[2])}, nil
	}
	if m := ingredientRe.FindStringSubmatch(trimmed); m != nil {
		ing, err := recipe.ParseIngredient(m[2])
		if err != nil {
			return nil, err
		}
		return &domain.Intent{Type: domain.IntentAddIngredient, Ingredient: &ing, Payload: m[2]}, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}

func checkServings(n int) error {
	if n < domain.MinServings || n > domain.MaxServings {
		return fmt.Errorf("%d servings: %w", n, domain.ErrInvalidServings)
	}
	return nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
