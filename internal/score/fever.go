// Package score implements the FEVER evaluation metrics.
package score

import (
	"errors"
	"fmt"

	"github.com/ppiankov/feverpipe/internal/model"
)

// ErrLengthMismatch is returned when predictions and reference values do not pair up
var ErrLengthMismatch = errors.New("length mismatch")

// DefaultMaxEvidence is the number of predicted sentences the FEVER score considers
const DefaultMaxEvidence = 5

// FEVER scores predictions against gold claims matched by position.
//
// A prediction is strictly correct when its label matches the gold label and
// either the gold label is NOT ENOUGH INFO or one complete gold evidence set
// is contained in the first maxEvidence predicted sentences. Evidence
// precision and recall are averaged over claims whose gold label is not
// NOT ENOUGH INFO. A claim whose gold sets carry no sentence counts as fully
// recalled. Any other ratio with a zero denominator is 0. maxEvidence <= 0
// disables truncation.
func FEVER(predictions []model.ClaimVerdict, gold []model.Claim, maxEvidence int) (model.Report, error) {
	if len(predictions) != len(gold) {
		return model.Report{}, fmt.Errorf("%w: %d predictions for %d gold claims", ErrLengthMismatch, len(predictions), len(gold))
	}

	var (
		correct, strict         float64
		precisionSum, recallSum float64
		evidenceClaims          float64
	)

	for i := range predictions {
		pred := &predictions[i]
		g := &gold[i]
		if pred.ID != g.ID {
			return model.Report{}, fmt.Errorf("line %d: prediction for claim %d does not match gold claim %d", i+1, pred.ID, g.ID)
		}

		predicted := truncate(pred.PredictedEvidence, maxEvidence)

		if pred.PredictedLabel == g.Label {
			correct++
			if g.Label == model.LabelNotEnoughInfo || anySetCovered(g.Evidence, predicted) {
				strict++
			}
		}

		if g.Label == model.LabelNotEnoughInfo {
			continue
		}
		evidenceClaims++
		precisionSum += precision(g.Evidence, predicted)
		if !hasGoldSentences(g.Evidence) || anySetCovered(g.Evidence, predicted) {
			recallSum++
		}
	}

	total := float64(len(predictions))
	p := ratio(precisionSum, evidenceClaims)
	r := ratio(recallSum, evidenceClaims)

	return model.Report{
		Claims:        len(predictions),
		Strict:        ratio(strict, total),
		LabelAccuracy: ratio(correct, total),
		Precision:     p,
		Recall:        r,
		F1:            ratio(2*p*r, p+r),
	}, nil
}

func truncate(refs []model.SentenceRef, n int) []model.SentenceRef {
	if n > 0 && len(refs) > n {
		return refs[:n]
	}
	return refs
}

func refSet(refs []model.SentenceRef) map[model.SentenceRef]bool {
	set := make(map[model.SentenceRef]bool, len(refs))
	for _, r := range refs {
		set[r] = true
	}
	return set
}

// anySetCovered reports whether every item of at least one gold set was predicted
func anySetCovered(sets []model.EvidenceSet, predicted []model.SentenceRef) bool {
	have := refSet(predicted)
	for _, set := range sets {
		if len(set) == 0 {
			continue
		}
		covered := true
		for _, item := range set {
			ref, ok := item.Ref()
			if !ok || !have[ref] {
				covered = false
				break
			}
		}
		if covered {
			return true
		}
	}
	return false
}

func hasGoldSentences(sets []model.EvidenceSet) bool {
	for _, set := range sets {
		for _, item := range set {
			if _, ok := item.Ref(); ok {
				return true
			}
		}
	}
	return false
}

// precision is the share of predicted sentences that appear in any gold set
func precision(sets []model.EvidenceSet, predicted []model.SentenceRef) float64 {
	gold := make(map[model.SentenceRef]bool)
	for _, set := range sets {
		for _, item := range set {
			if ref, ok := item.Ref(); ok {
				gold[ref] = true
			}
		}
	}

	hits := 0
	for _, p := range predicted {
		if gold[p] {
			hits++
		}
	}
	return ratio(float64(hits), float64(len(predicted)))
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
