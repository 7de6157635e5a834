// Package retrieval predicts the Wikipedia pages relevant to a claim.
package retrieval

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/ppiankov/feverpipe/internal/docstore"
	"github.com/ppiankov/feverpipe/internal/model"
	"github.com/ppiankov/feverpipe/internal/wiki"
)

// DefaultMaxPhraseLength is the longest phrase sent to search
const DefaultMaxPhraseLength = 300

// Searcher returns the titles of pages matching a query
type Searcher interface {
	SearchTitles(ctx context.Context, query string, limit int) ([]string, error)
}

// PhraseExtractor splits a claim into search phrases
type PhraseExtractor interface {
	Phrases(claim string) []string
}

// Result is the retrieval output for one claim
type Result struct {
	NounPhrases    []string `json:"noun_phrases"`
	WikiResults    []string `json:"wiki_results"`
	PredictedPages []string `json:"predicted_pages"`
}

// Options tune a Retriever
type Options struct {
	// MaxPagesPerQuery keeps the first n search hits of each phrase (0 = search default)
	MaxPagesPerQuery int
	// MaxPhraseLength skips longer phrases, in runes (0 = DefaultMaxPhraseLength)
	MaxPhraseLength int
	// AddClaim searches the full claim text as one more phrase
	AddClaim bool
}

// Retriever combines phrase extraction, Wikipedia search and the document
// store into a page prediction
type Retriever struct {
	search  Searcher
	phrases PhraseExtractor
	docs    docstore.Lookup
	opts    Options
	logger  *zap.Logger
}

// New creates a retriever
func New(search Searcher, phrases PhraseExtractor, docs docstore.Lookup, opts Options, logger *zap.Logger) *Retriever {
	if opts.MaxPhraseLength <= 0 {
		opts.MaxPhraseLength = DefaultMaxPhraseLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{search: search, phrases: phrases, docs: docs, opts: opts, logger: logger}
}

// Retrieve predicts pages for one claim. Pages named exactly by a phrase are
// kept when they exist in the store; search hits are kept when every word of
// the title also occurs in the claim.
func (r *Retriever) Retrieve(ctx context.Context, claim string) (Result, error) {
	phrases := r.nounPhrases(claim)

	wikiResults, err := r.searchPages(ctx, phrases)
	if err != nil {
		return Result{}, err
	}

	exact, err := r.exactPages(ctx, phrases)
	if err != nil {
		return Result{}, err
	}

	claimWords := ClaimWords(claim)
	predicted := exact
	for _, page := range wikiResults {
		if ContainsAllWords(claimWords, PageWords(page)) {
			predicted = append(predicted, page)
		}
	}

	r.logger.Debug("retrieved pages",
		zap.Int("phrases", len(phrases)),
		zap.Int("wiki_results", len(wikiResults)),
		zap.Int("predicted", len(predicted)),
	)

	return Result{
		NounPhrases:    phrases,
		WikiResults:    wikiResults,
		PredictedPages: unique(predicted),
	}, nil
}

// Attach writes a retrieval result onto a claim
func Attach(c model.Claim, res Result) (model.Claim, error) {
	if err := c.SetExtra("noun_phrases", res.NounPhrases); err != nil {
		return model.Claim{}, err
	}
	if err := c.SetExtra("wiki_results", res.WikiResults); err != nil {
		return model.Claim{}, err
	}
	c.PredictedPages = res.PredictedPages
	if c.PredictedPages == nil {
		c.PredictedPages = []string{}
	}
	return c, nil
}

func (r *Retriever) nounPhrases(claim string) []string {
	phrases := r.phrases.Phrases(claim)
	if r.opts.AddClaim {
		phrases = append(phrases, claim)
	}
	return unique(phrases)
}

func (r *Retriever) searchPages(ctx context.Context, phrases []string) ([]string, error) {
	var pages []string
	for _, phrase := range phrases {
		if utf8.RuneCountInString(phrase) > r.opts.MaxPhraseLength {
			continue
		}
		titles, err := r.search.SearchTitles(ctx, phrase, r.opts.MaxPagesPerQuery)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", phrase, err)
		}
		if r.opts.MaxPagesPerQuery > 0 && len(titles) > r.opts.MaxPagesPerQuery {
			titles = titles[:r.opts.MaxPagesPerQuery]
		}
		for _, title := range titles {
			pages = append(pages, wiki.PageID(title))
		}
	}
	return unique(pages), nil
}

func (r *Retriever) exactPages(ctx context.Context, phrases []string) ([]string, error) {
	var candidates []string
	for _, phrase := range phrases {
		if id := wiki.PhrasePageID(phrase); id != "" {
			candidates = append(candidates, id)
		}
	}
	candidates = unique(candidates)
	if len(candidates) == 0 {
		return nil, nil
	}

	found, err := r.docs.GetManyLines(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("look up exact pages: %w", err)
	}
	var pages []string
	for _, id := range candidates {
		if _, ok := found[docstore.Normalize(id)]; ok {
			pages = append(pages, id)
		}
	}
	return pages, nil
}

var bracketed = regexp.MustCompile(`-LRB-.*?-RRB-`)

var pageReplacer = strings.NewReplacer(
	"_", " ",
	"-", " ",
	"–", " ",
	".", "",
)

var claimReplacer = strings.NewReplacer(".", "", "-", " ")

// ClaimWords returns the lower-cased word set of a claim
func ClaimWords(claim string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range tokenize(claimReplacer.Replace(norm.NFD.String(claim))) {
		words[w] = true
	}
	return words
}

// PageWords returns the lower-cased words of a page id with any
// parenthesised disambiguation removed ("Savages_-LRB-2012_film-RRB-" -> [savages])
func PageWords(page string) []string {
	s := bracketed.ReplaceAllString(norm.NFD.String(page), "")
	// -COLON- must be restored before hyphens become spaces
	s = strings.ReplaceAll(s, "-COLON-", ":")
	return tokenize(pageReplacer.Replace(s))
}

// ContainsAllWords reports whether every page word occurs in the claim
func ContainsAllWords(claimWords map[string]bool, pageWords []string) bool {
	for _, w := range pageWords {
		if !claimWords[w] {
			return false
		}
	}
	return true
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r) && r != '\''
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			words = append(words, strings.ToLower(f))
		}
	}
	return words
}

func unique(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
