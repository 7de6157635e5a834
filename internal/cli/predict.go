package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/feverpipe/internal/model"
	"github.com/ppiankov/feverpipe/internal/task"
)

var taskName string

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Score or label a sentence file with a language model",
	Long: `classify fills the last column of a sentence file using the configured LLM
provider: a relevance score in [0, 1] for sentence_retrieval, a class index
for claim_verification.

Example:
  FEVERPIPE_LLM_PROVIDER=openai feverpipe classify --task sentence_retrieval --in-file sr-dev.tsv --out-file sr-dev.scores.tsv
  feverpipe classify --task claim_verification --in-file cv-dev.tsv --out-file cv-dev.labels.tsv`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Reduce classified sentences to claim verdicts",
	Args:  cobra.NoArgs,
	RunE:  runPredict,
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Compute the FEVER score of a predictions file",
	Args:  cobra.NoArgs,
	RunE:  runEvaluate,
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Compare a classified sentence file with a labelled one",
	Args:  cobra.NoArgs,
	RunE:  runMetrics,
}

func init() {
	rootCmd.AddCommand(classifyCmd, predictCmd, evaluateCmd, metricsCmd)

	taskUsage := "task (" + strings.Join(task.Names(), ", ") + ")"

	addIOFlags(classifyCmd)
	addWorkersFlag(classifyCmd)
	classifyCmd.Flags().StringVar(&taskName, "task", "", taskUsage)
	_ = classifyCmd.MarkFlagRequired("task")

	addIOFlags(predictCmd)

	evaluateCmd.Flags().StringVar(&inFile, "in-file", "", "predictions file")
	evaluateCmd.Flags().StringVar(&goldFile, "gold-file", "", "gold claims")
	_ = evaluateCmd.MarkFlagRequired("in-file")
	_ = evaluateCmd.MarkFlagRequired("gold-file")

	metricsCmd.Flags().StringVar(&taskName, "task", "", taskUsage)
	metricsCmd.Flags().StringVar(&inFile, "in-file", "", "classified sentence file")
	metricsCmd.Flags().StringVar(&goldFile, "gold-file", "", "labelled sentence file")
	_ = metricsCmd.MarkFlagRequired("task")
	_ = metricsCmd.MarkFlagRequired("in-file")
	_ = metricsCmd.MarkFlagRequired("gold-file")
}

func runClassify(cmd *cobra.Command, args []string) error {
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

	printBanner(os.Stderr, "feverpipe classify")
	field(os.Stderr, "Task", taskName)
	field(os.Stderr, "Provider", fmt.Sprintf("%s/%s", cfg.LLM.Provider, cfg.LLM.Model))
	field(os.Stderr, "Workers", cfg.Concurrency.Workers)
	fmt.Fprintln(os.Stderr)

	n, err := p.Classify(ctx, taskName, inFile, outFile)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ %d records classified\n", n)
	return nil
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := stageConfig(cmd)
	if err != nil {
		return err
	}
	p, logger, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	stats, err := p.Predict(inFile, outFile)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ %d claims: %d SUPPORTS, %d REFUTES, %d NOT ENOUGH INFO\n",
		stats.Claims,
		stats.ByLabel[model.LabelSupports],
		stats.ByLabel[model.LabelRefutes],
		stats.ByLabel[model.LabelNotEnoughInfo],
	)
	return nil
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := stageConfig(cmd)
	if err != nil {
		return err
	}
	p, logger, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	report, err := p.Evaluate(inFile, goldFile)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	printReport(os.Stdout, "FEVER Evaluation", report)
	return nil
}

func runMetrics(cmd *cobra.Command, args []string) error {
	cfg, err := stageConfig(cmd)
	if err != nil {
		return err
	}
	p, logger, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	metrics, err := p.Metrics(taskName, inFile, goldFile)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	printMetrics(os.Stdout, taskName, metrics)
	return nil
}
