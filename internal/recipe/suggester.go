package recipe

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Generator is the external text-generation service behind the suggestion
// endpoint. A real LLM integration plugs in here; MockGenerator is the
// default.
type Generator interface {
	Generate(prompt string) (string, error)
}

const (
	emptyCartMessage = "You haven't picked any dishes yet! Browse our signature dishes, " +
		"like the Kung Pao Chicken or the Fish-Flavored Pork, or tell me what you like " +
		"and I'll make a recommendation."
	fallbackMessage = "Sorry, the recipe suggestion service is temporarily unavailable. " +
		"Please try again later."
)

type Suggester struct {
	generator Generator
	log       *zap.Logger
}

func NewSuggester(generator Generator, log *zap.Logger) *Suggester {
	return &Suggester{generator: generator, log: log}
}

// Suggest composes a prompt from the chosen dishes and preferences and
// returns the generator's answer. It never fails on business input: an empty
// dish list short-circuits to a choose-something-first message, and a
// generator failure degrades to a friendly fallback instead of an error.
func (s *Suggester) Suggest(currentDishes []string, preferences string) string {
	if len(currentDishes) == 0 {
		return emptyCartMessage
	}

	prompt := buildPrompt(currentDishes, preferences)
	suggestion, err := s.generator.Generate(prompt)
	if err != nil {
		s.log.Warn("recipe generator unavailable", zap.Error(err))
		return fallbackMessage
	}
	return suggestion
}

func buildPrompt(currentDishes []string, preferences string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I am ordering and have already selected these dishes: %s.\n",
		strings.Join(currentDishes, ", "))
	if preferences != "" {
		fmt.Fprintf(&b, "My dietary preferences are: %s.\n", preferences)
	}
	b.WriteString("Based on this, please recommend dishes or drinks that pair well, " +
		"with a short reason for each, in the voice of a friendly restaurant advisor.")
	return b.String()
}

// MockGenerator stands in for a real LLM call: it answers from a small set of
// pairing rules keyed on dish names appearing in the prompt.
type MockGenerator struct{}

func (MockGenerator) Generate(prompt string) (string, error) {
	var b strings.Builder
	b.WriteString("Based on your selection, I recommend:\n")

	matched := false
	if strings.Contains(prompt, "Kung Pao Chicken") && !strings.Contains(prompt, "Hot and Sour Soup") {
		b.WriteString("- Hot and Sour Soup: Kung Pao Chicken is rich and bold, and a tangy soup balances it nicely.\n")
		matched = true
	}
	if strings.Contains(prompt, "Fish-Flavored Pork") && !strings.Contains(prompt, "Steamed Rice") {
		b.WriteString("- Steamed Rice: Fish-Flavored Pork begs for rice to soak up the sauce.\n")
		matched = true
	}
	if !strings.Contains(prompt, "Cola") {
		b.WriteString("- Iced Cola: a crisp, cold drink goes especially well with Sichuan flavors.\n")
		matched = true
	}

	if !matched {
		b.WriteString("Your picks already make a great meal! For more variety, consider " +
			"adding a plate of stir-fried seasonal greens to round things out.")
	}
	return b.String(), nil
}
