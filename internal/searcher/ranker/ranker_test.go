package ranker

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/index"
	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/synonym"
)

func ingredientIndex(t *testing.T, docs map[string][]string) *index.MemoryIndex {
	t.Helper()
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	m := index.NewMemoryIndex()
	for _, id := range ids {
		if _, err := m.AddDocument(id, analysis.PhraseTerms(docs[id])); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func contentIndex(t *testing.T, docs map[string]string) *index.MemoryIndex {
	t.Helper()
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	m := index.NewMemoryIndex()
	a := analysis.NewSimple()
	for _, id := range ids {
		if _, err := m.AddDocument(id, a.Analyze(docs[id])); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func assertRanked(t *testing.T, docs []ScoredDoc, k int) {
	t.Helper()
	if k > 0 && len(docs) > k {
		t.Fatalf("expected at most %d results, got %d", k, len(docs))
	}
	for i := 1; i < len(docs); i++ {
		if better(docs[i], docs[i-1]) {
			t.Fatalf("results out of order at %d: %+v before %+v", i, docs[i-1], docs[i])
		}
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

var pantry = map[string][]string{
	"r/alfredo": {"chicken breast", "parmesan", "cream", "pasta"},
	"r/caesar":  {"romaine", "parmesan", "crouton"},
	"r/curry":   {"chicken breast", "curry paste", "coconut milk"},
	"r/pancake": {"flour", "egg", "milk"},
	"r/omelet":  {"egg", "cheddar"},
	"r/toast":   {"bread", "butter"},
}

func TestIngredientSingleTermScore(t *testing.T) {
	idx := ingredientIndex(t, pantry)
	r := NewIngredientRanker(idx, nil, 1.0, nil)

	got, err := r.Search("Flour", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].DocID != "r/pancake" {
		t.Fatalf("expected only r/pancake, got %+v", got)
	}
	// one term at weight 1 matched once: coverage 1, adjusted = 2 * raw
	doc, _ := idx.InternalID("r/pancake")
	raw := computeIDF(idx.NumDocs(), 1) * computeTFNorm(1, float64(idx.DocLength(doc)), idx.AvgDocLength())
	if !approx(got[0].Score, 2*raw) {
		t.Errorf("score = %v, want %v", got[0].Score, 2*raw)
	}
}

func TestIngredientCoverageRewardsBreadth(t *testing.T) {
	idx := ingredientIndex(t, pantry)
	r := NewIngredientRanker(idx, nil, 1.0, nil)

	got, err := r.Search("chicken breast, parmesan", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	assertRanked(t, got, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %+v", got)
	}
	if got[0].DocID != "r/alfredo" {
		t.Errorf("expected the recipe with both ingredients first, got %+v", got)
	}

	noGain := NewIngredientRanker(idx, nil, 0, nil)
	flat, _ := noGain.Search("chicken breast, parmesan", 10, 0)
	scores := make(map[string]float64)
	for _, d := range flat {
		scores[d.DocID] = d.Score
	}
	// with two unit-weight groups the gain multiplies by 1 + matched/2
	for _, d := range got {
		matched := 1.0
		if d.DocID == "r/alfredo" {
			matched = 2
		}
		if want := scores[d.DocID] * (1 + matched/2); !approx(d.Score, want) {
			t.Errorf("%s: adjusted %v, want %v", d.DocID, d.Score, want)
		}
	}
}

func TestIngredientTopKAndAll(t *testing.T) {
	idx := ingredientIndex(t, pantry)
	r := NewIngredientRanker(idx, nil, 1.0, nil)
	query := "egg, milk, parmesan, chicken breast, butter"

	all, err := r.Search(query, All, 0)
	if err != nil {
		t.Fatal(err)
	}
	assertRanked(t, all, 0)
	if len(all) != 6 {
		t.Fatalf("expected every matching recipe, got %d", len(all))
	}
	for _, d := range all {
		if d.Score <= 0 {
			t.Errorf("non-positive score returned: %+v", d)
		}
	}

	for k := 1; k <= 7; k++ {
		top, err := r.Search(query, k, 0)
		if err != nil {
			t.Fatal(err)
		}
		assertRanked(t, top, k)
		want := all[:min(k, len(all))]
		if !slices.Equal(top, want) {
			t.Errorf("k=%d: got %+v, want prefix %+v", k, top, want)
		}
	}
}

func TestIngredientNoMatch(t *testing.T) {
	r := NewIngredientRanker(ingredientIndex(t, pantry), nil, 1.0, nil)
	for _, q := range []string{"saffron", "", " , "} {
		got, err := r.Search(q, 10, 5)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("%q: expected no results, got %+v", q, got)
		}
	}
}

func TestExpandNormalizesGroups(t *testing.T) {
	syns := synonym.New(map[string][]synonym.Candidate{
		"chicken breast": {{Term: "chicken thigh", Similarity: 0.5}, {Term: "turkey", Similarity: 0.5}},
		"cheddar":        {{Term: "parmesan", Similarity: 1}},
		"parmesan":       {{Term: "pecorino", Similarity: 1}},
	})
	r := NewIngredientRanker(index.NewMemoryIndex(), syns, 1.0, nil)

	terms := r.Expand([]string{"chicken breast"}, 5)
	var sum float64
	for _, wt := range terms {
		sum += wt.Weight
	}
	if len(terms) != 3 || !approx(sum, 1) {
		t.Errorf("expected 3 terms summing to 1, got %+v", terms)
	}
	if terms[0].Term != "chicken_breast" || !approx(terms[0].Weight, 0.5) {
		t.Errorf("expected ingredient first at 0.5, got %+v", terms[0])
	}

	if got := r.Expand([]string{"chicken breast"}, 1); len(got) != 2 {
		t.Errorf("nsyms=1 should add one synonym, got %+v", got)
	}

	// parmesan is both an ingredient and a synonym of cheddar
	merged := r.Expand([]string{"cheddar", "parmesan"}, 5)
	weights := make(map[string]float64)
	for _, wt := range merged {
		if _, dup := weights[wt.Term]; dup {
			t.Fatalf("term %q appears twice", wt.Term)
		}
		weights[wt.Term] = wt.Weight
	}
	if !approx(weights["parmesan"], 1.0) || !approx(weights["cheddar"], 0.5) || !approx(weights["pecorino"], 0.5) {
		t.Errorf("unexpected merged weights %v", weights)
	}
}

func TestExpandZeroSumGroup(t *testing.T) {
	syns := synonym.New(map[string][]synonym.Candidate{
		"egg": {{Term: "yolk", Similarity: -1}},
	})
	idx := ingredientIndex(t, pantry)
	r := NewIngredientRanker(idx, syns, 1.0, nil)
	terms := r.Expand([]string{"egg"}, 5)
	for _, wt := range terms {
		if wt.Weight != 0 {
			t.Errorf("expected zero weights, got %+v", terms)
		}
	}
	got, err := r.Search("egg", 10, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("zero-weight query should score nothing, got %+v", got)
	}
}

var cookbook = map[string]string{
	"r/1": "quick weeknight pasta with garlic",
	"r/2": "slow roasted garlic chicken",
	"r/3": "quick bread",
	"r/4": "chocolate cake",
}

func dirichlet(idx index.Reader, doc string, terms ...string) float64 {
	id, _ := idx.InternalID(doc)
	docLen := float64(idx.DocLength(id))
	mu := idx.AvgDocLength()
	c := float64(idx.TotalTerms())
	var score float64
	for _, term := range terms {
		stats, _ := idx.TermStats(term)
		if stats.CorpusFreq == 0 {
			continue
		}
		var tf float64
		postings, _ := idx.Postings(term)
		for _, p := range postings {
			if p.DocID == id {
				tf = float64(p.Frequency)
			}
		}
		score += math.Log((tf + mu*float64(stats.CorpusFreq)/c) / (docLen + mu))
	}
	return score
}

func TestKeywordScores(t *testing.T) {
	idx := contentIndex(t, cookbook)
	r := NewKeywordRanker(idx, analysis.NewSimple(), nil)

	got, err := r.Search("quick garlic", 10)
	if err != nil {
		t.Fatal(err)
	}
	assertRanked(t, got, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %+v", got)
	}
	for _, d := range got {
		if d.DocID == "r/4" {
			t.Errorf("document matching no term should not be scored")
		}
		if want := dirichlet(idx, d.DocID, "quick", "garlic"); !approx(d.Score, want) {
			t.Errorf("%s: score %v, want %v", d.DocID, d.Score, want)
		}
	}
	if got[0].DocID != "r/1" {
		t.Errorf("expected r/1 (both terms) first, got %+v", got)
	}
}

func TestKeywordRepeatedAndUnknownTerms(t *testing.T) {
	idx := contentIndex(t, cookbook)
	r := NewKeywordRanker(idx, analysis.NewSimple(), nil)

	twice, _ := r.Search("garlic garlic", 10)
	for _, d := range twice {
		if want := dirichlet(idx, d.DocID, "garlic", "garlic"); !approx(d.Score, want) {
			t.Errorf("%s: repeated term score %v, want %v", d.DocID, d.Score, want)
		}
	}

	plain, _ := r.Search("garlic", 10)
	withUnknown, _ := r.Search("garlic zanzibar", 10)
	if !slices.Equal(plain, withUnknown) {
		t.Errorf("unknown term changed results: %+v vs %+v", plain, withUnknown)
	}

	none, err := r.Search("zanzibar", 10)
	if err != nil || len(none) != 0 {
		t.Errorf("expected empty result, got %+v, %v", none, err)
	}
}

func TestKeywordBoundedBuffer(t *testing.T) {
	docs := make(map[string]string)
	for i := range 50 {
		docs[fmt.Sprintf("r/%02d", i)] = strings.Repeat("soup ", 1+i%7) + strings.Repeat("filler ", i%5)
	}
	idx := contentIndex(t, docs)
	r := NewKeywordRanker(idx, analysis.NewSimple(), nil)
	all, _ := r.Search("soup", All)
	if len(all) != 50 {
		t.Fatalf("expected 50 results, got %d", len(all))
	}
	top, _ := r.Search("soup", 7)
	if !slices.Equal(top, all[:7]) {
		t.Errorf("bounded top-7 differs from full ranking prefix")
	}
}

func randomDocs(n int, seed uint64) []ScoredDoc {
	rng := rand.New(rand.NewPCG(seed, seed))
	docs := make([]ScoredDoc, n)
	for i := range docs {
		// few distinct scores so ties are common
		docs[i] = ScoredDoc{DocID: fmt.Sprintf("d%04d", rng.IntN(10000)), Score: float64(rng.IntN(20))}
	}
	return docs
}

func TestSelectTopMatchesFullSort(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		docs := randomDocs(300, seed)
		sorted := slices.Clone(docs)
		sortScored(sorted)
		for _, k := range []int{1, 5, 50, 299, 300, 1000, All} {
			got := SelectTop(slices.Clone(docs), k)
			want := sorted
			if k > 0 && k < len(sorted) {
				want = sorted[:k]
			}
			if !slices.Equal(got, want) {
				t.Fatalf("seed %d k=%d: SelectTop disagrees with full sort", seed, k)
			}
		}
	}
}

func TestTopKMatchesFullSort(t *testing.T) {
	docs := randomDocs(500, 42)
	sorted := slices.Clone(docs)
	sortScored(sorted)
	for _, k := range []int{1, 10, 499, 800} {
		top := NewTopK(k)
		for _, d := range docs {
			top.Offer(d)
		}
		got := top.Sorted()
		want := sorted[:min(k, len(sorted))]
		if !slices.Equal(got, want) {
			t.Errorf("k=%d: bounded buffer disagrees with full sort", k)
		}
	}
}

func TestSquash(t *testing.T) {
	if Squash(0) != 0.5 {
		t.Errorf("Squash(0) = %v", Squash(0))
	}
	if !(Squash(-3) < Squash(0) && Squash(0) < Squash(3)) {
		t.Error("Squash is not monotonic")
	}
	if s := Squash(-1000); s < 0 || s >= 1e-300 {
		t.Errorf("Squash(-1000) = %v", s)
	}
	got := SquashAll([]ScoredDoc{{"b", 800}, {"a", 900}, {"c", -2}})
	// the first two saturate to 1 and fall back to id order
	if got[0].DocID != "a" || got[1].DocID != "b" || got[2].DocID != "c" {
		t.Errorf("unexpected order %+v", got)
	}
	for _, d := range got {
		if d.Score <= 0 || d.Score > 1 {
			t.Errorf("squashed score out of range: %+v", d)
		}
	}
}
