package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var preprocess string

var buildDBCmd = &cobra.Command{
	Use:   "build-db <data-path>",
	Short: "Build the document store from a Wikipedia dump",
	Long: `build-db reads newline JSON shards ({"id", "text", "lines"}) from a file or
a directory tree and writes them into a new SQLite document store. Ids are
stored in Unicode NFD form. An existing store is never overwritten.

Example:
  feverpipe build-db data/wiki-pages --db-file data/fever.db
  feverpipe build-db data/wiki-pages --preprocess none --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBuildDB,
}

func init() {
	rootCmd.AddCommand(buildDBCmd)
	addDBFlag(buildDBCmd)
	addWorkersFlag(buildDBCmd)
	buildDBCmd.Flags().StringVar(&preprocess, "preprocess", "drop-empty", "document preprocessor (none, drop-empty)")
}

func runBuildDB(cmd *cobra.Command, args []string) error {
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

	printBanner(os.Stderr, "feverpipe build-db")
	field(os.Stderr, "Data", args[0])
	field(os.Stderr, "Store", cfg.Store.Path)
	field(os.Stderr, "Workers", cfg.Concurrency.IngestWorkers)
	fmt.Fprintln(os.Stderr)

	stats, err := p.BuildDB(ctx, args[0], cfg.Store.Path, preprocess)
	if err != nil {
		return fmt.Errorf("build-db: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ %d documents from %d files (%d dropped)\n", stats.Documents, stats.Files, stats.Dropped)
	return nil
}
