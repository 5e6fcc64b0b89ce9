package benchmark

import (
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Recipe-Search-Platform/internal/analysis"
)

var sampleTexts = map[string]string{
	"short": "Quick garlic butter chicken",
	"medium": `A creamy weeknight pasta with roasted tomatoes, fresh basil and plenty
        of parmesan. Ready in thirty minutes and easily doubled for a crowd.`,
	"long": strings.Repeat(`Browning the onions slowly builds a deep, sweet base for the
        stew. Add the beef in batches so the pan stays hot, then deglaze with stock
        and scrape up the fond. Simmer until the carrots and potatoes are tender and
        the sauce coats the back of a spoon. `, 20),
}

func BenchmarkAnalyze(b *testing.B) {
	english, err := analysis.NewEnglish()
	if err != nil {
		b.Fatal(err)
	}
	analyzers := map[string]analysis.Analyzer{
		"simple":  analysis.NewSimple(),
		"english": english,
	}
	for aname, a := range analyzers {
		for name, text := range sampleTexts {
			b.Run(aname+"/"+name, func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(len(text)))
				for b.Loop() {
					_ = a.Analyze(text)
				}
			})
		}
	}
}

func BenchmarkPhraseTerms(b *testing.B) {
	ings := []string{"Chicken  Breast", "olive oil", "  Black Pepper ", "salt", "fresh flat-leaf parsley"}
	b.ReportAllocs()
	for b.Loop() {
		_ = analysis.PhraseTerms(ings)
	}
}
