// Package extract pulls candidate search phrases out of a claim.
//
// The phrases stand in for the noun phrases a constituency parser would
// return: capitalised spans (named entities and titles), quoted spans and the
// subject of the sentence.
package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// PhraseExtractor extracts search phrases from claims
type PhraseExtractor struct {
	connectors map[string]bool
	leading    map[string]bool
	verbs      map[string]bool
}

// NewPhraseExtractor creates a phrase extractor
func NewPhraseExtractor() *PhraseExtractor {
	return &PhraseExtractor{
		connectors: set("of", "the", "de", "la", "le", "von", "van", "der", "del", "and", "&", "for", "in", "on"),
		leading:    set("the", "a", "an", "there", "it", "he", "she", "they", "this", "that", "these", "those", "in", "on", "at"),
		verbs: set(
			"is", "was", "are", "were", "be", "been", "being", "has", "had", "have",
			"does", "did", "do", "can", "could", "will", "would", "may", "might",
			"must", "shall", "should", "won", "lost", "made", "became", "starred",
		),
	}
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

type token struct {
	text string
	// boundary is set when punctuation closes a phrase after this token
	boundary bool
}

// Phrases returns the distinct phrases of a claim in first-seen order
func (e *PhraseExtractor) Phrases(claim string) []string {
	tokens := tokenize(claim)

	var phrases []string
	phrases = append(phrases, e.capitalisedSpans(tokens)...)
	phrases = append(phrases, quotedSpans(claim)...)
	if subject := e.subject(tokens); subject != "" {
		phrases = append(phrases, subject)
	}
	return dedupePhrases(phrases)
}

// capitalisedSpans joins runs of capitalised tokens, allowing lowercase
// connectors and numbers inside a run
func (e *PhraseExtractor) capitalisedSpans(tokens []token) []string {
	var spans []string
	var run []string

	flush := func() {
		for len(run) > 0 && e.connectors[strings.ToLower(run[len(run)-1])] {
			run = run[:len(run)-1]
		}
		if len(run) > 0 {
			spans = append(spans, strings.Join(run, " "))
		}
		run = nil
	}

	for i, tok := range tokens {
		lower := strings.ToLower(tok.text)
		switch {
		case i == 0 && e.leading[lower]:
			flush()
		case isCapitalised(tok.text):
			run = append(run, tok.text)
		case len(run) > 0 && (e.connectors[lower] || isNumber(tok.text)):
			run = append(run, tok.text)
		default:
			flush()
		}
		if tok.boundary {
			flush()
		}
	}
	flush()
	return spans
}

// subject returns the words before the first verb-like token
func (e *PhraseExtractor) subject(tokens []token) string {
	for i, tok := range tokens {
		if i == 0 {
			continue
		}
		lower := strings.ToLower(tok.text)
		if isCapitalised(tok.text) {
			continue
		}
		if e.verbs[lower] || strings.HasSuffix(lower, "ed") {
			words := make([]string, 0, i)
			for _, t := range tokens[:i] {
				words = append(words, t.text)
			}
			return strings.Join(words, " ")
		}
	}
	return ""
}

// quotedSpans returns text between double quotes
func quotedSpans(claim string) []string {
	var spans []string
	parts := strings.Split(claim, `"`)
	for i := 1; i < len(parts)-1; i += 2 {
		if s := strings.TrimSpace(parts[i]); s != "" {
			spans = append(spans, s)
		}
	}
	return spans
}

func tokenize(claim string) []token {
	var tokens []token
	for _, field := range strings.Fields(claim) {
		if strings.HasPrefix(field, "(") && len(tokens) > 0 {
			tokens[len(tokens)-1].boundary = true
		}

		text := strings.TrimLeft(field, `"([`)
		boundary := false
		for text != "" {
			r, size := utf8.DecodeLastRuneInString(text)
			if !strings.ContainsRune(`.,;:!?"')]`, r) {
				break
			}
			text = text[:len(text)-size]
			boundary = true
		}
		if stem, ok := strings.CutSuffix(text, "'s"); ok && stem != "" {
			text = stem
			boundary = true
		}

		if text == "" {
			if len(tokens) > 0 {
				tokens[len(tokens)-1].boundary = true
			}
			continue
		}
		tokens = append(tokens, token{text: text, boundary: boundary})
	}
	return tokens
}

func isCapitalised(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// dedupePhrases removes repeats, keeping the first occurrence
func dedupePhrases(phrases []string) []string {
	seen := make(map[string]bool)
	var unique []string

	for _, p := range phrases {
		key := strings.TrimSpace(p)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, key)
	}

	return unique
}
