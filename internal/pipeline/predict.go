package pipeline

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ppiankov/feverpipe/internal/dataset"
	"github.com/ppiankov/feverpipe/internal/model"
	"github.com/ppiankov/feverpipe/internal/score"
	"github.com/ppiankov/feverpipe/internal/task"
	"github.com/ppiankov/feverpipe/internal/verdict"
)

// PredictStats counts the verdicts written per label
type PredictStats struct {
	Claims  int
	ByLabel map[model.Label]int
}

// Predict reduces every claim's classified_evidences to a verdict and writes
// one prediction per claim
func (p *Pipeline) Predict(inPath, outPath string) (PredictStats, error) {
	stats := PredictStats{ByLabel: make(map[model.Label]int)}

	out, err := dataset.CreateJSONL(outPath)
	if err != nil {
		return stats, err
	}
	defer out.Abort()

	err = eachClaim(inPath, func(c model.Claim) error {
		v, err := verdict.ReduceClaim(&c)
		if err != nil {
			return err
		}
		stats.Claims++
		stats.ByLabel[v.PredictedLabel]++
		return out.Write(v)
	})
	if err != nil {
		return stats, err
	}
	if err := out.Commit(); err != nil {
		return stats, err
	}

	p.logger.Info("predictions written",
		zap.Int("claims", stats.Claims),
		zap.Int("supports", stats.ByLabel[model.LabelSupports]),
		zap.Int("refutes", stats.ByLabel[model.LabelRefutes]),
		zap.Int("not_enough_info", stats.ByLabel[model.LabelNotEnoughInfo]),
	)
	return stats, nil
}

// Evaluate computes the FEVER score of a predictions file against the gold
// claims, matched line by line
func (p *Pipeline) Evaluate(predPath, goldPath string) (model.Report, error) {
	predictions, err := dataset.ReadVerdicts(predPath)
	if err != nil {
		return model.Report{}, err
	}
	gold, err := dataset.ReadClaims(goldPath)
	if err != nil {
		return model.Report{}, err
	}
	return score.FEVER(predictions, gold, p.config.Scoring.MaxEvidence)
}

// Metrics compares the last column of a classified file with the last column
// of a reference file of the same task. Class indexes are mapped to label
// codes so either form may be compared.
func (p *Pipeline) Metrics(taskName, predPath, goldPath string) (map[string]float64, error) {
	t, err := task.Lookup(taskName)
	if err != nil {
		return nil, err
	}
	preds, err := lastColumn(t, predPath)
	if err != nil {
		return nil, err
	}
	labels, err := lastColumn(t, goldPath)
	if err != nil {
		return nil, err
	}
	return score.Metrics(taskName, preds, labels)
}

func lastColumn(t task.Task, path string) ([]string, error) {
	var values []string
	err := eachRecord(path, func(r dataset.Record) error {
		if r.Extra == nil {
			return fmt.Errorf("%s: record %d has no label column", path, len(values)+1)
		}
		v := *r.Extra
		if t.Mode == task.Classification {
			if i, err := strconv.Atoi(v); err == nil {
				if i < 0 || i >= t.NumLabels() {
					return fmt.Errorf("%s: record %d: class index %d out of range", path, len(values)+1, i)
				}
				v = t.Labels[i]
			}
		}
		values = append(values, v)
		return nil
	})
	return values, err
}
