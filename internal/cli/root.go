package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/feverpipe/internal/logging"
	"github.com/ppiankov/feverpipe/internal/model"
	"github.com/ppiankov/feverpipe/internal/pipeline"
)

// Version is set at build time
var Version = "dev"

var (
	cfgFile   string
	verbose   bool
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "feverpipe",
	Short: "feverpipe - FEVER fact-verification data pipeline",
	Long: `feverpipe runs the stages of a FEVER-style fact-verification pipeline:

  build-db            ingest a Wikipedia dump into the document store
  retrieve-docs       predict candidate pages for every claim
  sentences generate  write sentence retrieval training/prediction pairs
  sentences select    keep the best-scored sentences per claim
  claims generate     write claim verification training/prediction pairs
  claims label        attach classifier labels to claims
  predict             reduce sentence labels to a claim verdict
  evaluate            compute the FEVER score

Every stage reads one file and writes one file; outputs are only
written once a stage has finished successfully.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("feverpipe %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.feverpipe/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.feverpipe")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := setDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindEnv maps FEVERPIPE_* variables onto config keys, e.g.
// FEVERPIPE_STORE_PATH onto store.path
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("FEVERPIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.api_key")
}

// setDefaults registers every key of cfg so that env variables and the
// config file can override nested values
func setDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	setTree(v, "", tree)
	return nil
}

func setTree(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setTree(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig resolves the effective configuration: defaults, then the config
// file, then FEVERPIPE_* variables. Command flags are applied by callers.
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	applyProviderKey(cfg)
	return cfg, nil
}

// applyProviderKey falls back to the provider's conventional env variables
func applyProviderKey(cfg *model.Config) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
}

// newPipeline builds the logger and pipeline for one command run
func newPipeline(cfg *model.Config) (*pipeline.Pipeline, *zap.Logger, error) {
	logger, err := logging.New(cfg.Log.Format, cfg.Log.Level, verbose)
	if err != nil {
		return nil, nil, err
	}
	p := pipeline.New(cfg,
		pipeline.WithLogger(logger),
		pipeline.WithProgress(progressPrinter()),
	)
	return p, logger, nil
}

// progressPrinter redraws a single stderr line per stage in verbose mode
func progressPrinter() pipeline.ProgressFunc {
	return func(stage string, done, total int) {
		if !verbose {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  %s: %d/%d", stage, done, total)
		if done == total {
			fmt.Fprintln(os.Stderr)
		}
	}
}
