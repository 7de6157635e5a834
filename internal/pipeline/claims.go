package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/feverpipe/internal/dataset"
	"github.com/ppiankov/feverpipe/internal/docstore"
	"github.com/ppiankov/feverpipe/internal/model"
	"github.com/ppiankov/feverpipe/internal/sampler"
)

// ClaimsGenerate writes the claim verification file. In training mode the
// gold sentences carry the first letter of the claim label and predicted
// sentences outside the gold evidence are negatives labelled "N". In
// prediction mode every predicted sentence is written unlabelled.
func (p *Pipeline) ClaimsGenerate(ctx context.Context, opts GenerateOptions) (GenerateStats, error) {
	var stats GenerateStats
	s := sampler.New(opts.Seed)
	negativeLabel := model.LabelNotEnoughInfo.Code()

	err := p.generate(ctx, opts, func(lookup docstore.Lookup) generateFunc {
		return func(ctx context.Context, c model.Claim, out *dataset.TSVWriter) error {
			stats.Claims++
			predicted := sampler.PredictedPool(c.PredictedSentences)

			if opts.Prediction {
				for _, sent := range predicted {
					if err := out.Write(dataset.NewRecord(c.ID, c.Text, sent)); err != nil {
						return err
					}
					stats.Candidates++
				}
				return nil
			}

			docs, err := sampler.LoadDocs(ctx, lookup, c.EvidencePages())
			if err != nil {
				return fmt.Errorf("claim %d: %w", c.ID, err)
			}
			positives, missing := sampler.Positives(c.Evidence, docs)
			if missing > 0 {
				p.logger.Warn("gold evidence not found in store", zap.Int("claim", c.ID), zap.Int("missing", missing))
				stats.Missing += missing
			}
			negatives := s.Negatives(c.Evidence, predicted, opts.MaxNegativesPerPage)

			n, err := writeLabelled(out, c, positives, c.Label.Code())
			stats.Positives += n
			if err != nil {
				return err
			}
			n, err = writeLabelled(out, c, negatives, negativeLabel)
			stats.Negatives += n
			return err
		}
	})
	if err != nil {
		return stats, err
	}

	p.logger.Info("claim verification file written",
		zap.String("out", opts.OutPath),
		zap.Int("claims", stats.Claims),
		zap.Int("records", stats.Records()),
	)
	return stats, nil
}

// LabelStats summarises claim labelling
type LabelStats struct {
	Labelled int
	Claims   int
}

// ClaimsLabel attaches the classifier labels of labelsPath to their claims as
// classified_evidences, keeping the label file order within a claim
func (p *Pipeline) ClaimsLabel(labelsPath, inPath, outPath string) (LabelStats, error) {
	var stats LabelStats
	byClaim := make(map[int][]model.Classified)

	err := eachRecord(labelsPath, func(r dataset.Record) error {
		label, err := r.Label()
		if err != nil {
			return fmt.Errorf("%s: claim %d: %w", labelsPath, r.ClaimID, err)
		}
		byClaim[r.ClaimID] = append(byClaim[r.ClaimID], model.Classified{Label: label, Sentence: r.Evidence()})
		stats.Labelled++
		return nil
	})
	if err != nil {
		return stats, err
	}

	out, err := dataset.CreateJSONL(outPath)
	if err != nil {
		return stats, err
	}
	defer out.Abort()

	err = eachClaim(inPath, func(c model.Claim) error {
		c.ClassifiedEvidences = byClaim[c.ID]
		stats.Claims++
		return out.Write(c)
	})
	if err != nil {
		return stats, err
	}
	if err := out.Commit(); err != nil {
		return stats, err
	}

	p.logger.Info("claims labelled", zap.Int("labels", stats.Labelled), zap.Int("claims", stats.Claims))
	return stats, nil
}
