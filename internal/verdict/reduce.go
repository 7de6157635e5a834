// Package verdict folds sentence-level labels into a claim verdict.
package verdict

import (
	"fmt"

	"github.com/ppiankov/feverpipe/internal/model"
)

// ErrUnknownLabel is returned for a classified sentence whose label is not a FEVER verdict
var ErrUnknownLabel = model.ErrUnknownLabel

// Reduce applies the classified sentences in order:
//
//   - NOT ENOUGH INFO is ignored
//   - SUPPORTS switches the verdict to SUPPORTS (clearing REFUTES evidence) and
//     appends its sentence
//   - REFUTES is ignored once SUPPORTS was seen, otherwise it switches to
//     REFUTES and appends its sentence
//
// The result depends on input order, so callers feed sentences in a fixed
// order (descending retrieval score). PredictedEvidence is never nil.
func Reduce(claimID int, classified []model.Classified) (model.ClaimVerdict, error) {
	label := model.LabelNotEnoughInfo
	evidence := []model.SentenceRef{}

	for i, c := range classified {
		switch c.Label {
		case model.LabelNotEnoughInfo:
			continue
		case model.LabelSupports:
			if label != model.LabelSupports {
				label = model.LabelSupports
				evidence = evidence[:0]
			}
		case model.LabelRefutes:
			if label == model.LabelSupports {
				continue
			}
			if label != model.LabelRefutes {
				label = model.LabelRefutes
				evidence = evidence[:0]
			}
		default:
			return model.ClaimVerdict{}, fmt.Errorf("claim %d, sentence %d: %w: %q", claimID, i, ErrUnknownLabel, c.Label)
		}
		evidence = append(evidence, c.Sentence.Ref())
	}

	return model.ClaimVerdict{
		ID:                claimID,
		PredictedLabel:    label,
		PredictedEvidence: evidence,
	}, nil
}

// ReduceClaim is Reduce over the claim's classified_evidences field
func ReduceClaim(c *model.Claim) (model.ClaimVerdict, error) {
	return Reduce(c.ID, c.ClassifiedEvidences)
}
