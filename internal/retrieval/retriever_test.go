package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/ppiankov/feverpipe/internal/docstore"
	"github.com/ppiankov/feverpipe/internal/model"
)

type fakeSearcher struct {
	results map[string][]string
	queries []string
	limits  []int
	err     error
}

func (f *fakeSearcher) SearchTitles(_ context.Context, query string, limit int) ([]string, error) {
	f.queries = append(f.queries, query)
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

type fixedPhrases []string

func (p fixedPhrases) Phrases(string) []string { return slices.Clone(p) }

type mapLookup map[string]string

func (m mapLookup) GetLines(_ context.Context, id string) (string, bool, error) {
	lines, ok := m[docstore.Normalize(id)]
	return lines, ok, nil
}

func (m mapLookup) GetManyLines(_ context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, id := range ids {
		if lines, ok := m[docstore.Normalize(id)]; ok {
			out[docstore.Normalize(id)] = lines
		}
	}
	return out, nil
}

const savagesClaim = "Savages was directed by Oliver Stone."

func savagesSearcher() *fakeSearcher {
	return &fakeSearcher{results: map[string][]string{
		"Savages":      {"Savages (2012 film)", "Savages (band)", "Savage Garden"},
		"Oliver Stone": {"Oliver Stone", "Oliver Stone filmography"},
		savagesClaim:   {"Oliver Stone"},
	}}
}

func TestRetrieve(t *testing.T) {
	search := savagesSearcher()
	docs := mapLookup{"Oliver_Stone": "0\tOliver Stone is a director."}
	r := New(search, fixedPhrases{"Savages", "Oliver Stone"}, docs, Options{AddClaim: true}, nil)

	res, err := r.Retrieve(context.Background(), savagesClaim)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	wantPhrases := []string{"Savages", "Oliver Stone", savagesClaim}
	if !slices.Equal(res.NounPhrases, wantPhrases) {
		t.Errorf("NounPhrases = %v, want %v", res.NounPhrases, wantPhrases)
	}
	wantWiki := []string{
		"Savages_-LRB-2012_film-RRB-", "Savages_-LRB-band-RRB-", "Savage_Garden",
		"Oliver_Stone", "Oliver_Stone_filmography",
	}
	if !slices.Equal(res.WikiResults, wantWiki) {
		t.Errorf("WikiResults = %v, want %v", res.WikiResults, wantWiki)
	}
	wantPages := []string{"Oliver_Stone", "Savages_-LRB-2012_film-RRB-", "Savages_-LRB-band-RRB-"}
	if !slices.Equal(res.PredictedPages, wantPages) {
		t.Errorf("PredictedPages = %v, want %v", res.PredictedPages, wantPages)
	}
}

func TestRetrieve_WithoutClaimPhrase(t *testing.T) {
	search := savagesSearcher()
	r := New(search, fixedPhrases{"Savages"}, mapLookup{}, Options{}, nil)

	if _, err := r.Retrieve(context.Background(), savagesClaim); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if !slices.Equal(search.queries, []string{"Savages"}) {
		t.Errorf("expected only the phrase to be searched, got %v", search.queries)
	}
}

func TestRetrieve_MaxPagesPerQuery(t *testing.T) {
	search := savagesSearcher()
	r := New(search, fixedPhrases{"Savages"}, mapLookup{}, Options{MaxPagesPerQuery: 1}, nil)

	res, err := r.Retrieve(context.Background(), savagesClaim)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if !slices.Equal(res.WikiResults, []string{"Savages_-LRB-2012_film-RRB-"}) {
		t.Errorf("expected only the first hit, got %v", res.WikiResults)
	}
	if search.limits[0] != 1 {
		t.Errorf("expected limit 1 passed to search, got %d", search.limits[0])
	}
}

func TestRetrieve_SkipsLongPhrases(t *testing.T) {
	search := &fakeSearcher{}
	long := strings.Repeat("a", DefaultMaxPhraseLength+1)
	r := New(search, fixedPhrases{long, "Paris"}, mapLookup{}, Options{}, nil)

	res, err := r.Retrieve(context.Background(), "Paris is big.")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if !slices.Equal(search.queries, []string{"Paris"}) {
		t.Errorf("expected long phrase to be skipped, got %v", search.queries)
	}
	if len(res.NounPhrases) != 2 {
		t.Errorf("long phrase should still be reported, got %v", res.NounPhrases)
	}
}

func TestRetrieve_SearchErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	r := New(&fakeSearcher{err: boom}, fixedPhrases{"Paris"}, mapLookup{}, Options{}, nil)

	if _, err := r.Retrieve(context.Background(), "Paris"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped search error, got %v", err)
	}
}

func TestAttach_SetsFields(t *testing.T) {
	r := New(savagesSearcher(), fixedPhrases{"Savages"}, mapLookup{}, Options{}, nil)
	c := model.Claim{ID: 7, Text: savagesClaim, Label: model.LabelSupports}

	res, err := r.Retrieve(context.Background(), c.Text)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	out, err := Attach(c, res)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if len(out.PredictedPages) != 2 {
		t.Errorf("unexpected predicted pages: %v", out.PredictedPages)
	}
	raw, ok := out.Extra("wiki_results")
	if !ok {
		t.Fatal("expected wiki_results extra")
	}
	var wiki []string
	if err := json.Unmarshal(raw, &wiki); err != nil || len(wiki) != 3 {
		t.Errorf("unexpected wiki_results %s: %v", raw, err)
	}

	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for _, key := range []string{`"noun_phrases"`, `"wiki_results"`, `"predicted_pages"`, `"label":"SUPPORTS"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("output %s missing %s", data, key)
		}
	}
}

func TestPageWords(t *testing.T) {
	tests := []struct {
		page string
		want []string
	}{
		{"Savages_-LRB-2012_film-RRB-", []string{"savages"}},
		{"Star_Wars-COLON-_A_New_Hope", []string{"star", "wars", "a", "new", "hope"}},
		{"Nikolaj_Coster-Waldau", []string{"nikolaj", "coster", "waldau"}},
		{"St._Louis", []string{"st", "louis"}},
	}
	for _, tt := range tests {
		if got := PageWords(tt.page); !slices.Equal(got, tt.want) {
			t.Errorf("PageWords(%q) = %v, want %v", tt.page, got, tt.want)
		}
	}
}

func TestContainsAllWords(t *testing.T) {
	claim := ClaimWords("Nikolaj Coster-Waldau worked with the Fox Broadcasting Company.")
	tests := []struct {
		page string
		want bool
	}{
		{"Nikolaj_Coster-Waldau", true},
		{"Fox_Broadcasting_Company", true},
		{"Fox_News", false},
		{"Nikolaj_-LRB-name-RRB-", true},
	}
	for _, tt := range tests {
		if got := ContainsAllWords(claim, PageWords(tt.page)); got != tt.want {
			t.Errorf("ContainsAllWords(%q) = %v, want %v", tt.page, got, tt.want)
		}
	}
}

func TestClaimWords_NormalisesAccents(t *testing.T) {
	claim := ClaimWords("Beyoncé sang.")
	if !ContainsAllWords(claim, PageWords("Beyoncé")) {
		t.Error("expected NFD forms of claim and page to match")
	}
}
