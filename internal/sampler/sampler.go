// Package sampler builds leak-free positive and negative evidence sentences
// for training data generation.
package sampler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/ppiankov/feverpipe/internal/docstore"
	"github.com/ppiankov/feverpipe/internal/model"
	"github.com/ppiankov/feverpipe/internal/sentence"
)

// Docs holds the parsed documents fetched for one claim, keyed by page id as
// it appears in the claim (not normalised)
type Docs map[string]*sentence.Document

// LoadDocs fetches and parses the given pages in one batch lookup. Pages
// missing from the store are simply absent.
func LoadDocs(ctx context.Context, lookup docstore.Lookup, pages []string) (Docs, error) {
	docs := make(Docs, len(pages))
	if len(pages) == 0 {
		return docs, nil
	}

	found, err := lookup.GetManyLines(ctx, pages)
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}
	for _, page := range pages {
		if lines, ok := found[docstore.Normalize(page)]; ok {
			docs[page] = sentence.Parse(page, lines)
		}
	}
	return docs, nil
}

// Exclusions returns every (page, sentence) referenced by non-null evidence
func Exclusions(sets []model.EvidenceSet) map[model.SentenceRef]bool {
	ex := make(map[model.SentenceRef]bool)
	for _, set := range sets {
		for _, item := range set {
			if ref, ok := item.Ref(); ok {
				ex[ref] = true
			}
		}
	}
	return ex
}

// Positives resolves the gold evidence sentences. Duplicates across sets
// collapse on (page, id); output is in first-seen order. Evidence pointing
// at a page or sentence that cannot be resolved is counted in missing.
func Positives(sets []model.EvidenceSet, docs Docs) (positives []model.Sentence, missing int) {
	seen := make(map[model.SentenceRef]bool)
	for _, set := range sets {
		for _, item := range set {
			ref, ok := item.Ref()
			if !ok || seen[ref] {
				continue
			}
			seen[ref] = true

			s, ok := docs[ref.Page].Get(ref.ID)
			if !ok {
				missing++
				continue
			}
			positives = append(positives, s)
		}
	}
	return positives, missing
}

// PagePool returns every sentence of the given pages, pages in order and
// each page in document order. Repeated pages are visited once.
func PagePool(docs Docs, pages []string) []model.Sentence {
	var pool []model.Sentence
	seen := make(map[string]bool, len(pages))
	for _, page := range pages {
		if seen[page] {
			continue
		}
		seen[page] = true
		if d, ok := docs[page]; ok {
			pool = append(pool, d.Sentences...)
		}
	}
	return pool
}

// PredictedPool returns the sentences of model-predicted evidence in order
func PredictedPool(predicted []model.ScoredEvidence) []model.Sentence {
	pool := make([]model.Sentence, 0, len(predicted))
	for _, p := range predicted {
		pool = append(pool, p.Sentence)
	}
	return pool
}

// Sampler draws negatives with its own seeded random source
type Sampler struct {
	rng *rand.Rand
}

// New creates a sampler; equal seeds give equal samples
func New(seed uint64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Negatives filters every gold-referenced (page, id) out of pool. With
// capPerPage > 0 at most that many survivors are kept per page, chosen
// uniformly without replacement; a page with fewer survivors keeps them all.
// Output is grouped by page in first-appearance order and keeps document
// order within a page.
func (s *Sampler) Negatives(sets []model.EvidenceSet, pool []model.Sentence, capPerPage int) []model.Sentence {
	exclude := Exclusions(sets)

	var order []string
	byPage := make(map[string][]model.Sentence)
	seen := make(map[model.SentenceRef]bool)
	for _, cand := range pool {
		ref := cand.Ref()
		if exclude[ref] || seen[ref] {
			continue
		}
		seen[ref] = true
		if _, ok := byPage[cand.Page]; !ok {
			order = append(order, cand.Page)
		}
		byPage[cand.Page] = append(byPage[cand.Page], cand)
	}

	var out []model.Sentence
	for _, page := range order {
		out = append(out, s.sample(byPage[page], capPerPage)...)
	}
	return out
}

func (s *Sampler) sample(population []model.Sentence, k int) []model.Sentence {
	if k <= 0 || len(population) <= k {
		return population
	}
	picked := s.rng.Perm(len(population))[:k]
	slices.Sort(picked)

	out := make([]model.Sentence, k)
	for i, idx := range picked {
		out[i] = population[idx]
	}
	return out
}
