package recipe

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNumericFields(t *testing.T) {
	raw := `{
		"canonical_url": "https://food.example/r/1",
		"title": "Weeknight Chili",
		"total_time": 45,
		"yields": "6 servings",
		"nutrients": {"calories": "412 kcal", "fatContent": "12 g"}
	}`
	var r Recipe
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatal(err)
	}
	if got, ok := r.TotalMinutes(); !ok || got != 45 {
		t.Errorf("TotalMinutes = %v, %v", got, ok)
	}
	if got, ok := r.Servings(); !ok || got != 6 {
		t.Errorf("Servings = %v, %v", got, ok)
	}
	if got, ok := r.Calories(); !ok || got != 412 {
		t.Errorf("Calories = %v, %v", got, ok)
	}
}

func TestNumericFieldsMissingOrUnparseable(t *testing.T) {
	r := Recipe{CanonicalURL: "x", Yields: "a handful", TotalTime: ""}
	if _, ok := r.TotalMinutes(); ok {
		t.Error("expected empty total_time to be unparseable")
	}
	if _, ok := r.Servings(); ok {
		t.Error("expected text yields to be unparseable")
	}
	if _, ok := r.Calories(); ok {
		t.Error("expected missing nutrients to be unparseable")
	}
	r.Nutrients = map[string]any{"protein": 3.0}
	if _, ok := r.Calories(); ok {
		t.Error("expected missing calories to be unparseable")
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{12.5, 12.5, true},
		{7, 7, true},
		{"Serves 4", 4, true},
		{"1.5 hours", 1.5, true},
		{json.Number("30"), 30, true},
		{nil, 0, false},
		{true, 0, false},
		{"none", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseNumber(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseNumber(%v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestContent(t *testing.T) {
	r := Recipe{
		Title:       "Lemon Bars",
		Description: "Tangy and sweet",
		Keywords:    []string{"dessert", "citrus"},
		Yields:      "16 bars",
	}
	want := "Lemon Bars\nTangy and sweet\ndessert citrus\n16 bars"
	if got := r.Content(); got != want {
		t.Errorf("Content = %q, want %q", got, want)
	}
	r.Yields = nil
	if got := r.Content(); strings.Contains(got, "16") {
		t.Errorf("expected no yields line, got %q", got)
	}
}

func TestEncodeDecode(t *testing.T) {
	in := &Recipe{CanonicalURL: "https://food.example/r/9", Title: "Soup", TotalTime: 20.0}
	data, err := Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if out.ID() != in.ID() || out.Title != in.Title {
		t.Errorf("got %+v", out)
	}
	if m, ok := out.TotalMinutes(); !ok || m != 20 {
		t.Errorf("TotalMinutes after decode = %v, %v", m, ok)
	}
	if _, err := Decode([]byte("{")); err == nil {
		t.Error("expected decode error")
	}
}
