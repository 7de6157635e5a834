package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/feverpipe/internal/dataset"
	"github.com/ppiankov/feverpipe/internal/docstore"
	"github.com/ppiankov/feverpipe/internal/model"
	"github.com/ppiankov/feverpipe/internal/sampler"
	"github.com/ppiankov/feverpipe/internal/score"
	"github.com/ppiankov/feverpipe/internal/topk"
)

// Training labels of the sentence retrieval file
const (
	relevantLabel   = "1"
	irrelevantLabel = "0"
)

// GenerateOptions configures the training/prediction file generators
type GenerateOptions struct {
	DBPath  string
	InPath  string
	OutPath string
	// MaxNegativesPerPage caps sampled negatives per page (0 = keep all)
	MaxNegativesPerPage int
	// Prediction emits every candidate sentence without a label column
	Prediction bool
	Seed       uint64
}

// GenerateStats summarises a generated file
type GenerateStats struct {
	Claims    int
	Skipped   int
	Positives int
	Negatives int
	// Candidates counts unlabelled records written in prediction mode
	Candidates int
	// Missing counts gold evidence that could not be resolved in the store
	Missing int
}

// Records returns the number of lines written
func (s GenerateStats) Records() int {
	return s.Positives + s.Negatives + s.Candidates
}

type generateFunc func(ctx context.Context, c model.Claim, out *dataset.TSVWriter) error

// generate streams the claims of opts.InPath through fn into an atomic TSV
func (p *Pipeline) generate(ctx context.Context, opts GenerateOptions, fn func(lookup docstore.Lookup) generateFunc) error {
	lookup, closeStore, err := p.openStore(opts.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	out, err := dataset.CreateTSV(opts.OutPath)
	if err != nil {
		return err
	}
	defer out.Abort()

	each := fn(lookup)
	err = eachClaim(opts.InPath, func(c model.Claim) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return each(ctx, c, out)
	})
	if err != nil {
		return err
	}
	return out.Commit()
}

// SentencesGenerate writes the sentence retrieval file. In training mode each
// verifiable claim yields its gold sentences labelled "1" and sampled
// negatives labelled "0": first from the pages holding gold evidence, then
// from predicted pages without evidence. In prediction mode every sentence of
// every predicted page is written unlabelled.
func (p *Pipeline) SentencesGenerate(ctx context.Context, opts GenerateOptions) (GenerateStats, error) {
	var stats GenerateStats
	s := sampler.New(opts.Seed)

	err := p.generate(ctx, opts, func(lookup docstore.Lookup) generateFunc {
		return func(ctx context.Context, c model.Claim, out *dataset.TSVWriter) error {
			stats.Claims++
			if !opts.Prediction && !c.IsVerifiable() {
				stats.Skipped++
				return nil
			}

			evidencePages := c.EvidencePages()
			docs, err := sampler.LoadDocs(ctx, lookup, append(evidencePages, c.PredictedPages...))
			if err != nil {
				return fmt.Errorf("claim %d: %w", c.ID, err)
			}

			if opts.Prediction {
				for _, sent := range sampler.PagePool(docs, c.PredictedPages) {
					if err := out.Write(dataset.NewRecord(c.ID, c.Text, sent)); err != nil {
						return err
					}
					stats.Candidates++
				}
				return nil
			}

			positives, missing := sampler.Positives(c.Evidence, docs)
			if missing > 0 {
				p.logger.Warn("gold evidence not found in store", zap.Int("claim", c.ID), zap.Int("missing", missing))
				stats.Missing += missing
			}
			pool := sampler.PagePool(docs, append(evidencePages, c.PredictedPages...))
			negatives := s.Negatives(c.Evidence, pool, opts.MaxNegativesPerPage)

			n, err := writeLabelled(out, c, positives, relevantLabel)
			stats.Positives += n
			if err != nil {
				return err
			}
			n, err = writeLabelled(out, c, negatives, irrelevantLabel)
			stats.Negatives += n
			return err
		}
	})
	if err != nil {
		return stats, err
	}

	p.logger.Info("sentence retrieval file written",
		zap.String("out", opts.OutPath),
		zap.Int("claims", stats.Claims),
		zap.Int("skipped", stats.Skipped),
		zap.Int("records", stats.Records()),
	)
	return stats, nil
}

func writeLabelled(out *dataset.TSVWriter, c model.Claim, sentences []model.Sentence, label string) (int, error) {
	for i, sent := range sentences {
		if err := out.Write(dataset.NewRecord(c.ID, c.Text, sent).WithExtra(label)); err != nil {
			return i, err
		}
	}
	return len(sentences), nil
}

// SelectStats summarises sentence selection
type SelectStats struct {
	Scored       int
	ScoredClaims int
	Claims       int
	Sentences    int
}

// SentencesSelect keeps the maxPerClaim best-scored sentences of every claim
// and attaches them, best first, as predicted_sentences
func (p *Pipeline) SentencesSelect(scoresPath, inPath, outPath string, maxPerClaim int) (SelectStats, error) {
	var stats SelectStats
	agg := topk.New(maxPerClaim)

	err := eachRecord(scoresPath, func(r dataset.Record) error {
		s, err := r.Score()
		if err != nil {
			return fmt.Errorf("%s: claim %d: %w", scoresPath, r.ClaimID, err)
		}
		agg.Insert(r.ClaimID, s, r.Evidence())
		stats.Scored++
		return nil
	})
	if err != nil {
		return stats, err
	}
	stats.ScoredClaims = agg.Len()

	out, err := dataset.CreateJSONL(outPath)
	if err != nil {
		return stats, err
	}
	defer out.Abort()

	err = eachClaim(inPath, func(c model.Claim) error {
		c.PredictedSentences = agg.Top(c.ID)
		stats.Claims++
		stats.Sentences += len(c.PredictedSentences)
		return out.Write(c)
	})
	if err != nil {
		return stats, err
	}
	if err := out.Commit(); err != nil {
		return stats, err
	}

	p.logger.Info("sentences selected",
		zap.Int("scored", stats.Scored),
		zap.Int("scored_claims", stats.ScoredClaims),
		zap.Int("claims", stats.Claims),
		zap.Int("sentences", stats.Sentences),
	)
	return stats, nil
}

// SentencesEvaluate scores sentence retrieval alone: every claim is given its
// gold label so only the evidence decides the (oracle) FEVER score
func (p *Pipeline) SentencesEvaluate(inPath, goldPath string) (model.Report, error) {
	predicted, err := dataset.ReadClaims(inPath)
	if err != nil {
		return model.Report{}, err
	}
	gold, err := dataset.ReadClaims(goldPath)
	if err != nil {
		return model.Report{}, err
	}
	if len(predicted) != len(gold) {
		return model.Report{}, fmt.Errorf("%w: %d predictions for %d gold claims", score.ErrLengthMismatch, len(predicted), len(gold))
	}

	verdicts := make([]model.ClaimVerdict, len(predicted))
	for i, c := range predicted {
		refs := make([]model.SentenceRef, len(c.PredictedSentences))
		for j, s := range c.PredictedSentences {
			refs[j] = s.Sentence.Ref()
		}
		verdicts[i] = model.ClaimVerdict{ID: c.ID, PredictedLabel: gold[i].Label, PredictedEvidence: refs}
	}
	return score.FEVER(verdicts, gold, p.config.Scoring.MaxEvidence)
}
