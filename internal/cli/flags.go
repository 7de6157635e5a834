package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ppiankov/feverpipe/internal/model"
)

// Stage flags shared by several commands
var (
	dbFile           string
	inFile           string
	outFile          string
	goldFile         string
	maxPagesPerQuery int
	maxSentPerClaim  int
	maxNegPerPage    int
	prediction       bool
	seed             uint64
	workers          int
)

func addIOFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&inFile, "in-file", "", "input file")
	cmd.Flags().StringVar(&outFile, "out-file", "", "output file")
	_ = cmd.MarkFlagRequired("in-file")
	_ = cmd.MarkFlagRequired("out-file")
}

func addDBFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&dbFile, "db-file", "", "document store (default: store.path from config)")
}

func addWorkersFlag(cmd *cobra.Command) {
	cmd.Flags().IntVar(&workers, "workers", 0, "number of concurrent workers (default: concurrency.workers from config)")
}

// stageConfig loads the configuration and applies the flags the user set on cmd
func stageConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db-file") {
		cfg.Store.Path = dbFile
	}
	if flags.Changed("max-pages-per-query") {
		cfg.Retrieval.MaxPagesPerQuery = maxPagesPerQuery
	}
	if flags.Changed("max-sent-per-claim") {
		cfg.Sampling.MaxSentencesPerClaim = maxSentPerClaim
	}
	if flags.Changed("max-neg-evidences-per-page") {
		cfg.Sampling.MaxNegativesPerPage = maxNegPerPage
	}
	if flags.Changed("seed") {
		cfg.Sampling.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Concurrency.Workers = workers
		cfg.Concurrency.IngestWorkers = workers
	}
	return cfg, nil
}

// stageContext is cancelled on interrupt so checkpoints are flushed
func stageContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}
