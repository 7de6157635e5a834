package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/ppiankov/feverpipe/internal/ingest"
)

// BuildDB ingests the Wikipedia dump shards under dataPath into a new store
func (p *Pipeline) BuildDB(ctx context.Context, dataPath, dbPath, preprocess string) (ingest.Stats, error) {
	pre, err := ingest.LookupPreprocess(preprocess)
	if err != nil {
		return ingest.Stats{}, err
	}

	in := ingest.New(p.config.Concurrency.IngestWorkers, pre, p.logger.Named("ingest"))
	stats, err := in.Build(ctx, dataPath, dbPath)
	if err != nil {
		return stats, err
	}

	p.logger.Info("document store built",
		zap.String("db", dbPath),
		zap.Int("files", stats.Files),
		zap.Int("documents", stats.Documents),
		zap.Int("dropped", stats.Dropped),
	)
	return stats, nil
}
