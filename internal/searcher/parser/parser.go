// Package parser turns the two free-text halves of a recipe query into
// ranker input.
package parser

import (
	"strings"
)

// IngredientPlan is the parsed ingredient half of a query.
type IngredientPlan struct {
	// Ingredients are lower-cased, whitespace-collapsed and unique, in the
	// order they first appeared.
	Ingredients []string
	RawQuery    string
}

// ParseIngredients splits a comma-separated ingredient list. Blank entries
// and repeats are dropped.
func ParseIngredients(query string) *IngredientPlan {
	plan := &IngredientPlan{
		Ingredients: make([]string, 0),
		RawQuery:    query,
	}
	if strings.TrimSpace(query) == "" {
		return plan
	}
	seen := make(map[string]struct{})
	for _, part := range strings.Split(query, ",") {
		ing := strings.Join(strings.Fields(strings.ToLower(part)), " ")
		if ing == "" {
			continue
		}
		if _, dup := seen[ing]; dup {
			continue
		}
		seen[ing] = struct{}{}
		plan.Ingredients = append(plan.Ingredients, ing)
	}
	return plan
}

// IsBlank reports whether text carries no query content.
func IsBlank(text string) bool {
	return strings.Trim(text, " \t\r\n,") == ""
}
