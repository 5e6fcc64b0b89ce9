// Package benchmark contains Go benchmarks for analysis, index construction
// and the ranking pipeline, measuring throughput and allocation behaviour
// over a synthetic recipe corpus.
package benchmark

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/recipe"
)

var pantry = []string{
	"chicken breast", "garlic", "olive oil", "onion", "tomato", "basil",
	"mozzarella", "flour", "sugar", "butter", "eggs", "milk", "salt",
	"black pepper", "lemon", "ginger", "soy sauce", "rice", "beef",
	"potato", "carrot", "celery", "parsley", "cumin", "paprika", "honey",
	"cheddar cheese", "bacon", "spinach", "mushroom", "salmon", "dill",
}

var vocabulary = []string{
	"quick", "easy", "weeknight", "dinner", "baked", "roasted", "creamy",
	"spicy", "healthy", "classic", "slow", "cooker", "stew", "soup", "salad",
	"pasta", "curry", "stir", "fry", "cake", "cookies", "bread", "grilled",
	"vegetarian", "family", "favorite", "comfort", "food", "summer", "holiday",
}

// syntheticRecipes builds n deterministic recipes.
func syntheticRecipes(n int) []*recipe.Recipe {
	rng := rand.New(rand.NewPCG(42, 7))
	out := make([]*recipe.Recipe, n)
	for i := range out {
		ings := make([]string, 4+rng.IntN(8))
		for j := range ings {
			ings[j] = pantry[rng.IntN(len(pantry))]
		}
		words := make([]string, 8+rng.IntN(24))
		for j := range words {
			words[j] = vocabulary[rng.IntN(len(vocabulary))]
		}
		out[i] = &recipe.Recipe{
			CanonicalURL: fmt.Sprintf("https://recipes.example/r/%d", i),
			Title:        strings.Join(words[:3], " "),
			Description:  strings.Join(words[3:], " "),
			Ingredients:  ings,
			Keywords:     words[:2],
			Yields:       fmt.Sprintf("%d servings", 1+rng.IntN(8)),
			TotalTime:    10 + rng.IntN(120),
		}
	}
	return out
}

// buildIndexes returns the ingredient and content indexes for recipes.
func buildIndexes(recipes []*recipe.Recipe, analyzer analysis.Analyzer) (*index.MemoryIndex, *index.MemoryIndex) {
	ing := index.NewMemoryIndex()
	content := index.NewMemoryIndex()
	for _, r := range recipes {
		ing.AddDocument(r.ID(), analysis.PhraseTerms(r.Ingredients))
		content.AddDocument(r.ID(), analyzer.Analyze(r.Content()))
	}
	return ing, content
}
