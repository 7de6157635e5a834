package extract

import (
	"slices"
	"testing"
)

func TestPhraseExtractor_Phrases(t *testing.T) {
	extractor := NewPhraseExtractor()

	tests := []struct {
		name  string
		claim string
		want  []string
	}{
		{
			name:  "entities and subject",
			claim: "Nikolaj Coster-Waldau worked with the Fox Broadcasting Company.",
			want:  []string{"Nikolaj Coster-Waldau", "Fox Broadcasting Company"},
		},
		{
			name:  "subject equals entity",
			claim: "Roman Atwood is a content creator.",
			want:  []string{"Roman Atwood"},
		},
		{
			name:  "connector inside entity",
			claim: "The Bank of England was founded in 1694.",
			want:  []string{"Bank of England", "The Bank of England"},
		},
		{
			name:  "quoted title and numbers",
			claim: `The film "Soul Food" was released by Fox 2000 Pictures.`,
			want:  []string{"Soul Food", "Fox 2000 Pictures", "The film Soul Food"},
		},
		{
			name:  "empty",
			claim: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.Phrases(tt.claim)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Phrases(%q) = %q, want %q", tt.claim, got, tt.want)
			}
		})
	}
}

func TestTokenize_Boundaries(t *testing.T) {
	tokens := tokenize("Obama's wife, Michelle (born 1964).")
	var texts []string
	for _, tok := range tokens {
		texts = append(texts, tok.text)
	}
	want := []string{"Obama", "wife", "Michelle", "born", "1964"}
	if !slices.Equal(texts, want) {
		t.Fatalf("tokens = %q, want %q", texts, want)
	}
	if !tokens[0].boundary || !tokens[1].boundary || !tokens[2].boundary || !tokens[4].boundary {
		t.Errorf("unexpected boundaries: %+v", tokens)
	}
}

func TestDedupePhrases(t *testing.T) {
	got := dedupePhrases([]string{"Paris", " Paris ", "", "France", "Paris"})
	if !slices.Equal(got, []string{"Paris", "France"}) {
		t.Errorf("dedupePhrases = %q", got)
	}
}
