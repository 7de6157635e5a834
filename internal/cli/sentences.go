package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/feverpipe/internal/pipeline"
)

var scoresFile string

var sentencesCmd = &cobra.Command{
	Use:   "sentences",
	Short: "Sentence retrieval stages",
}

var sentencesGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write sentence retrieval pairs",
	Long: `Without --prediction, every verifiable claim yields its gold sentences
labelled 1 and sampled negatives labelled 0. With --prediction every sentence
of every predicted page is written without a label column.

Example:
  feverpipe sentences generate --in-file train.docs.jsonl --out-file sr-train.tsv --max-neg-evidences-per-page 5
  feverpipe sentences generate --in-file dev.docs.jsonl --out-file sr-dev.tsv --prediction`,
	Args: cobra.NoArgs,
	RunE: runSentencesGenerate,
}

var sentencesSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Attach the best-scored sentences to each claim",
	Long: `select reads a scored sentence file and attaches the highest-scored
sentences of every claim as predicted_sentences, best first.

Example:
  feverpipe sentences select --scores-file sr-dev.scores.tsv --in-file dev.docs.jsonl --out-file dev.sentences.jsonl`,
	Args: cobra.NoArgs,
	RunE: runSentencesSelect,
}

var sentencesEvaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score sentence retrieval with oracle labels",
	Args:  cobra.NoArgs,
	RunE:  runSentencesEvaluate,
}

func init() {
	rootCmd.AddCommand(sentencesCmd)
	sentencesCmd.AddCommand(sentencesGenerateCmd, sentencesSelectCmd, sentencesEvaluateCmd)

	addIOFlags(sentencesGenerateCmd)
	addDBFlag(sentencesGenerateCmd)
	addGenerateFlags(sentencesGenerateCmd)

	addIOFlags(sentencesSelectCmd)
	sentencesSelectCmd.Flags().StringVar(&scoresFile, "scores-file", "", "scored sentence file")
	sentencesSelectCmd.Flags().IntVar(&maxSentPerClaim, "max-sent-per-claim", 0, "sentences kept per claim (default: sampling.max_sentences_per_claim)")
	_ = sentencesSelectCmd.MarkFlagRequired("scores-file")

	sentencesEvaluateCmd.Flags().StringVar(&inFile, "in-file", "", "claims with predicted_sentences")
	sentencesEvaluateCmd.Flags().StringVar(&goldFile, "gold-file", "", "gold claims")
	_ = sentencesEvaluateCmd.MarkFlagRequired("in-file")
	_ = sentencesEvaluateCmd.MarkFlagRequired("gold-file")
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&maxNegPerPage, "max-neg-evidences-per-page", 0, "negatives sampled per page, 0 keeps all (default: sampling.max_negatives_per_page)")
	cmd.Flags().BoolVar(&prediction, "prediction", false, "write every candidate unlabelled")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "negative sampling seed (default: sampling.seed)")
}

func generateOptions(dbPath string, maxNeg int, s uint64) pipeline.GenerateOptions {
	return pipeline.GenerateOptions{
		DBPath:              dbPath,
		InPath:              inFile,
		OutPath:             outFile,
		MaxNegativesPerPage: maxNeg,
		Prediction:          prediction,
		Seed:                s,
	}
}

func printGenerateStats(stats pipeline.GenerateStats) {
	if prediction {
		fmt.Fprintf(os.Stderr, "✓ %d claims, %d candidates\n", stats.Claims, stats.Candidates)
		return
	}
	fmt.Fprintf(os.Stderr, "✓ %d claims (%d skipped), %d positives, %d negatives\n",
		stats.Claims, stats.Skipped, stats.Positives, stats.Negatives)
	if stats.Missing > 0 {
		fmt.Fprintf(os.Stderr, "  %d gold sentences were not found in the store\n", stats.Missing)
	}
}

func runSentencesGenerate(cmd *cobra.Command, args []string) error {
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

	stats, err := p.SentencesGenerate(ctx, generateOptions(cfg.Store.Path, cfg.Sampling.MaxNegativesPerPage, cfg.Sampling.Seed))
	if err != nil {
		return fmt.Errorf("sentences generate: %w", err)
	}
	printGenerateStats(stats)
	return nil
}

func runSentencesSelect(cmd *cobra.Command, args []string) error {
	cfg, err := stageConfig(cmd)
	if err != nil {
		return err
	}
	p, logger, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	stats, err := p.SentencesSelect(scoresFile, inFile, outFile, cfg.Sampling.MaxSentencesPerClaim)
	if err != nil {
		return fmt.Errorf("sentences select: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ %d scored sentences over %d claims, %d claims written, %d selected\n", stats.Scored, stats.ScoredClaims, stats.Claims, stats.Sentences)
	return nil
}

func runSentencesEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := stageConfig(cmd)
	if err != nil {
		return err
	}
	p, logger, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	report, err := p.SentencesEvaluate(inFile, goldFile)
	if err != nil {
		return fmt.Errorf("sentences evaluate: %w", err)
	}
	printReport(os.Stdout, "Sentence Retrieval (oracle labels)", report)
	return nil
}
