package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var labelsFile string

var claimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "Claim verification stages",
}

var claimsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write claim verification pairs",
	Long: `Without --prediction, gold sentences are labelled with the first letter of
the claim label (S, R, N) and predicted sentences outside the gold evidence
are labelled N. With --prediction every predicted sentence is written
without a label column.

Example:
  feverpipe claims generate --in-file train.sentences.jsonl --out-file cv-train.tsv
  feverpipe claims generate --in-file dev.sentences.jsonl --out-file cv-dev.tsv --prediction`,
	Args: cobra.NoArgs,
	RunE: runClaimsGenerate,
}

var claimsLabelCmd = &cobra.Command{
	Use:   "label",
	Short: "Attach classifier labels to claims",
	Long: `label reads a classified sentence file whose last column is a class index
(0 REFUTES, 1 SUPPORTS, 2 NOT ENOUGH INFO) and attaches the labelled
sentences to their claims as classified_evidences, in file order.`,
	Args: cobra.NoArgs,
	RunE: runClaimsLabel,
}

func init() {
	rootCmd.AddCommand(claimsCmd)
	claimsCmd.AddCommand(claimsGenerateCmd, claimsLabelCmd)

	addIOFlags(claimsGenerateCmd)
	addDBFlag(claimsGenerateCmd)
	addGenerateFlags(claimsGenerateCmd)

	addIOFlags(claimsLabelCmd)
	claimsLabelCmd.Flags().StringVar(&labelsFile, "labels-file", "", "classified sentence file")
	_ = claimsLabelCmd.MarkFlagRequired("labels-file")
}

func runClaimsGenerate(cmd *cobra.Command, args []string) error {
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

	stats, err := p.ClaimsGenerate(ctx, generateOptions(cfg.Store.Path, cfg.Sampling.MaxNegativesPerPage, cfg.Sampling.Seed))
	if err != nil {
		return fmt.Errorf("claims generate: %w", err)
	}
	printGenerateStats(stats)
	return nil
}

func runClaimsLabel(cmd *cobra.Command, args []string) error {
	cfg, err := stageConfig(cmd)
	if err != nil {
		return err
	}
	p, logger, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	stats, err := p.ClaimsLabel(labelsFile, inFile, outFile)
	if err != nil {
		return fmt.Errorf("claims label: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ %d labels attached to %d claims\n", stats.Labelled, stats.Claims)
	return nil
}
