// Package topk keeps the best-scored evidence per claim.
package topk

import (
	"sort"

	"github.com/ppiankov/feverpipe/internal/model"
)

// Aggregator holds, per claim, a bounded list ordered by descending score.
// Equal scores keep arrival order. Per-claim candidate counts are small, so
// sorted insertion into a slice is cheaper than a heap in practice.
type Aggregator struct {
	k      int
	claims map[int][]model.ScoredEvidence
	order  []int
}

// New creates an aggregator keeping k entries per claim; k <= 0 keeps all
func New(k int) *Aggregator {
	return &Aggregator{
		k:      k,
		claims: make(map[int][]model.ScoredEvidence),
	}
}

// Insert adds one scored sentence for a claim, evicting the lowest-scored
// entry if the claim is over the bound
func (a *Aggregator) Insert(claimID int, score float64, evidence model.Sentence) {
	list, seen := a.claims[claimID]
	if !seen {
		a.order = append(a.order, claimID)
	}

	// first position whose score is strictly lower: ties land after existing entries
	pos := sort.Search(len(list), func(i int) bool { return list[i].Score < score })
	if a.k > 0 && pos >= a.k {
		a.claims[claimID] = list
		return
	}

	list = append(list, model.ScoredEvidence{})
	copy(list[pos+1:], list[pos:])
	list[pos] = model.ScoredEvidence{Score: score, Sentence: evidence}

	if a.k > 0 && len(list) > a.k {
		list = list[:a.k]
	}
	a.claims[claimID] = list
}

// Top returns the retained entries for a claim, best first. The slice is a
// copy; a claim never inserted yields an empty, non-nil slice.
func (a *Aggregator) Top(claimID int) []model.ScoredEvidence {
	list := a.claims[claimID]
	out := make([]model.ScoredEvidence, len(list))
	copy(out, list)
	return out
}

// Claims returns claim ids in order of their first insertion
func (a *Aggregator) Claims() []int {
	out := make([]int, len(a.order))
	copy(out, a.order)
	return out
}

// Len returns the number of claims seen
func (a *Aggregator) Len() int {
	return len(a.order)
}
