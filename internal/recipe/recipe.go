// Package recipe defines the recipe record and the Recipe Store that maps a
// recipe's external id (its canonical URL) to the full record.
package recipe

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Recipe is a scraped recipe as it appears in the raw dump. Time, yield
// and nutrient fields arrive as numbers or free text depending on the
// source site, so they are kept loosely typed and parsed on demand.
type Recipe struct {
	CanonicalURL     string         `json:"canonical_url"`
	Title            string         `json:"title"`
	Category         string         `json:"category,omitempty"`
	Description      string         `json:"description,omitempty"`
	Image            string         `json:"image,omitempty"`
	Ingredients      []string       `json:"ingredients"`
	InstructionsList []string       `json:"instructions_list,omitempty"`
	Keywords         []string       `json:"keywords,omitempty"`
	PrepTime         any            `json:"prep_time,omitempty"`
	CookTime         any            `json:"cook_time,omitempty"`
	TotalTime        any            `json:"total_time,omitempty"`
	Yields           any            `json:"yields,omitempty"`
	Ratings          any            `json:"ratings,omitempty"`
	RatingCount      any            `json:"rating_count,omitempty"`
	Nutrients        map[string]any `json:"nutrients,omitempty"`
}

// ID returns the external document id.
func (r *Recipe) ID() string { return r.CanonicalURL }

// TotalMinutes returns the total time in minutes.
func (r *Recipe) TotalMinutes() (float64, bool) { return parseNumber(r.TotalTime) }

// Calories returns nutrients.calories.
func (r *Recipe) Calories() (float64, bool) {
	if r.Nutrients == nil {
		return 0, false
	}
	return parseNumber(r.Nutrients["calories"])
}

// Servings returns the number of servings from the yields field.
func (r *Recipe) Servings() (float64, bool) { return parseNumber(r.Yields) }

// Content returns the text the content index is built from: title,
// description, keywords and yields, one per line.
func (r *Recipe) Content() string {
	parts := []string{r.Title, r.Description, strings.Join(r.Keywords, " ")}
	if s, ok := r.Yields.(string); ok {
		parts = append(parts, s)
	} else if r.Yields != nil {
		parts = append(parts, fmt.Sprint(r.Yields))
	}
	return strings.Join(parts, "\n")
}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// parseNumber reads a numeric field. Strings such as "250 kcal" or
// "4 servings" yield their first number.
func parseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		m := numberPattern.FindString(n)
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Encode serializes a recipe for storage.
func Encode(r *Recipe) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding recipe %q: %w", r.CanonicalURL, err)
	}
	return data, nil
}

// Decode parses a stored recipe.
func Decode(data []byte) (*Recipe, error) {
	var r Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding recipe: %w", err)
	}
	return &r, nil
}
