package topk

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/ppiankov/feverpipe/internal/model"
)

func sent(id int) model.Sentence {
	return model.Sentence{Page: "P", ID: id, Text: "t"}
}

func scores(list []model.ScoredEvidence) []float64 {
	out := make([]float64, len(list))
	for i, e := range list {
		out[i] = e.Score
	}
	return out
}

func TestAggregator_KeepsBestTwo(t *testing.T) {
	a := New(2)
	for i, s := range []float64{0.1, 0.9, 0.5} {
		a.Insert(1, s, sent(i))
	}

	got := scores(a.Top(1))
	if len(got) != 2 || got[0] != 0.9 || got[1] != 0.5 {
		t.Errorf("expected [0.9 0.5], got %v", got)
	}
}

func TestAggregator_StableTies(t *testing.T) {
	a := New(3)
	a.Insert(1, 0.5, sent(0))
	a.Insert(1, 0.5, sent(1))
	a.Insert(1, 0.7, sent(2))
	a.Insert(1, 0.5, sent(3))

	top := a.Top(1)
	var ids []int
	for _, e := range top {
		ids = append(ids, e.Sentence.ID)
	}
	want := []int{2, 0, 1}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}

func TestAggregator_Unbounded(t *testing.T) {
	a := New(0)
	for i := 0; i < 50; i++ {
		a.Insert(7, float64(i%10), sent(i))
	}
	if len(a.Top(7)) != 50 {
		t.Errorf("expected 50 entries, got %d", len(a.Top(7)))
	}
}

func TestAggregator_PerClaimIsolation(t *testing.T) {
	a := New(1)
	a.Insert(2, 0.3, sent(0))
	a.Insert(1, 0.8, sent(1))
	a.Insert(2, 0.4, sent(2))

	if got := scores(a.Top(1)); len(got) != 1 || got[0] != 0.8 {
		t.Errorf("claim 1: expected [0.8], got %v", got)
	}
	if got := scores(a.Top(2)); len(got) != 1 || got[0] != 0.4 {
		t.Errorf("claim 2: expected [0.4], got %v", got)
	}
	claims := a.Claims()
	if len(claims) != 2 || claims[0] != 2 || claims[1] != 1 {
		t.Errorf("expected first-insertion order [2 1], got %v", claims)
	}
	if top := a.Top(99); top == nil || len(top) != 0 {
		t.Errorf("expected empty non-nil slice for unknown claim, got %v", top)
	}
}

func TestAggregator_MatchesFullSort(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 50; trial++ {
		k := 1 + rng.IntN(6)
		n := rng.IntN(40)
		a := New(k)
		var all []model.ScoredEvidence
		for i := 0; i < n; i++ {
			s := float64(rng.IntN(5)) / 4
			a.Insert(1, s, sent(i))
			all = append(all, model.ScoredEvidence{Score: s, Sentence: sent(i)})
		}

		sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
		if len(all) > k {
			all = all[:k]
		}

		got := a.Top(1)
		if len(got) != len(all) {
			t.Fatalf("trial %d: expected %d entries, got %d", trial, len(all), len(got))
		}
		for i := range all {
			if got[i] != all[i] {
				t.Fatalf("trial %d: position %d: got %v, want %v", trial, i, got[i], all[i])
			}
		}
	}
}
