package analysis

import (
	"reflect"
	"testing"
)

func TestPhraseTerm(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"chicken breast", "chicken_breast"},
		{"  Chicken   Breast ", "chicken_breast"},
		{"Salt", "salt"},
		{"extra\tvirgin olive\noil", "extra_virgin_olive_oil"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := PhraseTerm(tt.in); got != tt.want {
			t.Errorf("PhraseTerm(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPhraseTermsSkipsBlanks(t *testing.T) {
	got := PhraseTerms([]string{"Garlic", " ", "red onion"})
	want := []string{"garlic", "red_onion"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSimpleAnalyzer(t *testing.T) {
	got := NewSimple().Analyze("The Roasted Tomatoes and a Cheesy bake!")
	want := []string{"roast", "tomato", "cheesy", "bake"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSimpleAnalyzerKeepsDuplicates(t *testing.T) {
	got := NewSimple().Analyze("pasta pasta sauce")
	if len(got) != 3 {
		t.Errorf("expected duplicates to be kept, got %v", got)
	}
}

func TestEnglishAnalyzer(t *testing.T) {
	a, err := NewEnglish()
	if err != nil {
		t.Fatalf("NewEnglish: %v", err)
	}
	got := a.Analyze("The quick baking of cookies")
	for _, stop := range []string{"the", "of"} {
		for _, term := range got {
			if term == stop {
				t.Errorf("stop word %q was not removed: %v", stop, got)
			}
		}
	}
	// query and index text must stem to the same term
	if q, d := a.Analyze("onions"), a.Analyze("onion"); !reflect.DeepEqual(q, d) {
		t.Errorf("expected onions and onion to share a stem, got %v and %v", q, d)
	}
	if a.Analyze("") != nil {
		t.Error("expected nil for empty text")
	}
}

func TestNewUnknownAnalyzer(t *testing.T) {
	if _, err := New("klingon"); err == nil {
		t.Error("expected error for unknown analyzer")
	}
	if a, err := New(Simple); err != nil || a == nil {
		t.Errorf("New(simple) = %v, %v", a, err)
	}
}
