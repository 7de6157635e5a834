package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/feverpipe/internal/checkpoint"
	"github.com/ppiankov/feverpipe/internal/dataset"
	"github.com/ppiankov/feverpipe/internal/model"
	"github.com/ppiankov/feverpipe/internal/retrieval"
	"github.com/ppiankov/feverpipe/internal/worker"
)

// ProgressSuffix names the checkpoint kept next to a retrieval output
const ProgressSuffix = ".progress"

// RetrieveOptions configures document retrieval
type RetrieveOptions struct {
	DBPath  string
	InPath  string
	OutPath string
	// CheckpointPath defaults to OutPath + ProgressSuffix
	CheckpointPath string
}

// RetrieveStats summarises a retrieval run
type RetrieveStats struct {
	Claims    int
	Resumed   int
	Retrieved int
	Pages     int
}

// RetrieveDocs predicts pages for every claim of InPath. Finished claims are
// recorded in a checkpoint as they complete, so a rerun after a failure only
// retrieves the claims that are missing. The output keeps input order and is
// only written once every claim succeeded.
func (p *Pipeline) RetrieveDocs(ctx context.Context, opts RetrieveOptions) (stats RetrieveStats, err error) {
	claims, err := dataset.ReadClaims(opts.InPath)
	if err != nil {
		return stats, err
	}
	stats.Claims = len(claims)

	lookup, closeStore, err := p.openStore(opts.DBPath)
	if err != nil {
		return stats, err
	}
	defer func() { _ = closeStore() }()

	cpPath := opts.CheckpointPath
	if cpPath == "" {
		cpPath = opts.OutPath + ProgressSuffix
	}
	cp, err := checkpoint.Open(checkpoint.Options{Path: cpPath, Logger: p.logger.Named("checkpoint")})
	if err != nil {
		return stats, err
	}
	defer func() {
		if serr := cp.Sync(); serr != nil && err == nil {
			err = serr
		}
		if cerr := cp.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	done, err := checkpoint.Load[retrieval.Result](cp)
	if err != nil {
		return stats, err
	}

	var pending []model.Claim
	for _, c := range claims {
		if _, ok := done[c.ID]; ok {
			stats.Resumed++
			continue
		}
		pending = append(pending, c)
	}
	if stats.Resumed > 0 {
		p.logger.Info("resuming from checkpoint",
			zap.String("checkpoint", cpPath),
			zap.Int("done", stats.Resumed),
			zap.Int("pending", len(pending)),
		)
	}

	retriever := retrieval.New(p.searcher, p.phrases, lookup, retrieval.Options{
		MaxPagesPerQuery: p.config.Retrieval.MaxPagesPerQuery,
		MaxPhraseLength:  p.config.Retrieval.MaxPhraseLength,
		AddClaim:         p.config.Retrieval.AddClaim,
	}, p.logger.Named("retrieval"))

	batch := worker.NewOrderedBatch(p.config.Concurrency.Workers, func(ctx context.Context, c model.Claim) (retrieval.Result, error) {
		res, err := retriever.Retrieve(ctx, c.Text)
		if err != nil {
			return res, fmt.Errorf("claim %d: %w", c.ID, err)
		}
		if err := cp.Put(c.ID, res); err != nil {
			return res, err
		}
		return res, nil
	})
	batch.OnProgress(p.report("retrieve-docs"))

	results, err := batch.Run(ctx, pending)
	if err != nil {
		return stats, err
	}
	for i, c := range pending {
		done[c.ID] = results[i]
	}
	stats.Retrieved = len(pending)

	out, err := dataset.CreateJSONL(opts.OutPath)
	if err != nil {
		return stats, err
	}
	defer out.Abort()

	for _, c := range claims {
		res := done[c.ID]
		annotated, err := retrieval.Attach(c, res)
		if err != nil {
			return stats, fmt.Errorf("claim %d: %w", c.ID, err)
		}
		stats.Pages += len(annotated.PredictedPages)
		if err := out.Write(annotated); err != nil {
			return stats, err
		}
	}
	if err := out.Commit(); err != nil {
		return stats, err
	}

	p.logger.Info("documents retrieved",
		zap.Int("claims", stats.Claims),
		zap.Int("resumed", stats.Resumed),
		zap.Int("retrieved", stats.Retrieved),
		zap.Int("pages", stats.Pages),
	)
	return stats, nil
}
