package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/feverpipe/internal/pipeline"
)

var checkpointFile string

var retrieveDocsCmd = &cobra.Command{
	Use:   "retrieve-docs",
	Short: "Predict candidate Wikipedia pages for every claim",
	Long: `retrieve-docs searches Wikipedia for the phrases of every claim and keeps
the pages whose title words all occur in the claim, plus pages named exactly
by a phrase that exist in the document store.

Finished claims are recorded in a checkpoint next to the output file, so an
interrupted run resumes where it stopped.

Example:
  feverpipe retrieve-docs --in-file data/dev.jsonl --out-file data/dev.docs.jsonl
  feverpipe retrieve-docs --in-file data/dev.jsonl --out-file out.jsonl --max-pages-per-query 5`,
	Args: cobra.NoArgs,
	RunE: runRetrieveDocs,
}

func init() {
	rootCmd.AddCommand(retrieveDocsCmd)
	addIOFlags(retrieveDocsCmd)
	addDBFlag(retrieveDocsCmd)
	addWorkersFlag(retrieveDocsCmd)
	retrieveDocsCmd.Flags().IntVar(&maxPagesPerQuery, "max-pages-per-query", 0, "search hits kept per phrase (default: retrieval.max_pages_per_query)")
	retrieveDocsCmd.Flags().StringVar(&checkpointFile, "checkpoint", "", "checkpoint directory (default: <out-file>.progress)")
}

func runRetrieveDocs(cmd *cobra.Command, args []string) error {
	cfg, err := stageConfig(cmd)
	if err != nil {
		return err
	}
	p, logger, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := stageContext(cmd)
	defer cancel()

	printBanner(os.Stderr, "feverpipe retrieve-docs")
	field(os.Stderr, "Input", inFile)
	field(os.Stderr, "Output", outFile)
	field(os.Stderr, "Store", cfg.Store.Path)
	field(os.Stderr, "Pages per query", cfg.Retrieval.MaxPagesPerQuery)
	field(os.Stderr, "Workers", cfg.Concurrency.Workers)
	fmt.Fprintln(os.Stderr)

	stats, err := p.RetrieveDocs(ctx, pipeline.RetrieveOptions{
		DBPath:         cfg.Store.Path,
		InPath:         inFile,
		OutPath:        outFile,
		CheckpointPath: checkpointFile,
	})
	if err != nil {
		return fmt.Errorf("retrieve-docs: %w (finished claims are kept in the checkpoint)", err)
	}

	fmt.Fprintf(os.Stderr, "✓ %d claims (%d resumed, %d retrieved), %d pages\n",
		stats.Claims, stats.Resumed, stats.Retrieved, stats.Pages)
	return nil
}
