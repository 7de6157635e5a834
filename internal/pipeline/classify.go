package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/ppiankov/feverpipe/internal/dataset"
	"github.com/ppiankov/feverpipe/internal/task"
	"github.com/ppiankov/feverpipe/internal/worker"
)

// Classify runs the task's predictor over every record of inPath and writes
// the records back with the prediction as the last column: a relevance score
// for sentence_retrieval, a class index for claim_verification. Any existing
// label column is replaced.
func (p *Pipeline) Classify(ctx context.Context, taskName, inPath, outPath string) (int, error) {
	t, err := task.Lookup(taskName)
	if err != nil {
		return 0, err
	}
	predictor, err := p.predictors(t)
	if err != nil {
		return 0, err
	}

	records, err := dataset.ReadRecords(inPath)
	if err != nil {
		return 0, err
	}

	type job struct {
		index  int
		record dataset.Record
	}
	jobs := make([]job, len(records))
	for i, r := range records {
		jobs[i] = job{index: i, record: r}
	}

	batch := worker.NewOrderedBatch(p.config.Concurrency.Workers, func(ctx context.Context, j job) (string, error) {
		return predictor.Predict(ctx, t.Example(task.PurposePredict, j.index, j.record))
	})
	batch.OnProgress(p.report("classify"))

	predictions, err := batch.Run(ctx, jobs)
	if err != nil {
		return 0, err
	}

	out, err := dataset.CreateTSV(outPath)
	if err != nil {
		return 0, err
	}
	defer out.Abort()

	for i, r := range records {
		if err := out.Write(r.WithExtra(predictions[i])); err != nil {
			return 0, err
		}
	}
	if err := out.Commit(); err != nil {
		return 0, err
	}

	p.logger.Info("records classified", zap.String("task", taskName), zap.Int("records", len(records)))
	return len(records), nil
}
