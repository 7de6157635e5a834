package model

import "time"

// Config is the complete feverpipe configuration
type Config struct {
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" mapstructure:"retrieval"`
	Sampling    SamplingConfig    `yaml:"sampling" mapstructure:"sampling"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Scoring     ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the document store
type StoreConfig struct {
	Path      string        `yaml:"path" mapstructure:"path"`
	CacheTTL  time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	BatchSize int           `yaml:"batch_size" mapstructure:"batch_size"`
}

// SearchConfig configures the Wikipedia search client
type SearchConfig struct {
	Endpoint          string        `yaml:"endpoint" mapstructure:"endpoint"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxAttempts       int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffBase       time.Duration `yaml:"backoff_base" mapstructure:"backoff_base"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int           `yaml:"burst_size" mapstructure:"burst_size"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// RetrievalConfig bounds the document retrieval stage
type RetrievalConfig struct {
	MaxPagesPerQuery int  `yaml:"max_pages_per_query" mapstructure:"max_pages_per_query"`
	MaxPhraseLength  int  `yaml:"max_phrase_length" mapstructure:"max_phrase_length"`
	AddClaim         bool `yaml:"add_claim" mapstructure:"add_claim"`
}

// SamplingConfig bounds evidence sampling and sentence selection
type SamplingConfig struct {
	Seed                 uint64 `yaml:"seed" mapstructure:"seed"`
	MaxNegativesPerPage  int    `yaml:"max_negatives_per_page" mapstructure:"max_negatives_per_page"`
	MaxSentencesPerClaim int    `yaml:"max_sentences_per_claim" mapstructure:"max_sentences_per_claim"`
}

// ConcurrencyConfig controls worker counts
type ConcurrencyConfig struct {
	Workers       int `yaml:"workers" mapstructure:"workers"`
	IngestWorkers int `yaml:"ingest_workers" mapstructure:"ingest_workers"`
}

// ScoringConfig controls FEVER scoring
type ScoringConfig struct {
	MaxEvidence int `yaml:"max_evidence" mapstructure:"max_evidence"`
}

// LLMConfig configures the optional model-backed scorer/classifier
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"`
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// LogConfig controls logger construction
type LogConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Level  string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path:      "data/fever.db",
			CacheTTL:  10 * time.Minute,
			BatchSize: 500,
		},
		Search: SearchConfig{
			Endpoint:          "https://en.wikipedia.org/w/api.php",
			UserAgent:         "feverpipe/0.1 (+https://github.com/ppiankov/feverpipe)",
			Timeout:           30 * time.Second,
			MaxAttempts:       11,
			BackoffBase:       time.Second,
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Retrieval: RetrievalConfig{
			MaxPagesPerQuery: 7,
			MaxPhraseLength:  300,
			AddClaim:         true,
		},
		Sampling: SamplingConfig{
			Seed:                 42,
			MaxNegativesPerPage:  0,
			MaxSentencesPerClaim: 5,
		},
		Concurrency: ConcurrencyConfig{
			Workers:       4,
			IngestWorkers: 4,
		},
		Scoring: ScoringConfig{
			MaxEvidence: 5,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 16,
		},
		Log: LogConfig{
			Format: "console",
			Level:  "info",
		},
	}
}
