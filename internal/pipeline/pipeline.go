// Package pipeline runs the stages of the fact-verification pipeline over
// files: each stage reads its input file, writes its output file atomically
// and reports what it did.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ppiankov/feverpipe/internal/dataset"
	"github.com/ppiankov/feverpipe/internal/docstore"
	"github.com/ppiankov/feverpipe/internal/extract"
	"github.com/ppiankov/feverpipe/internal/llm"
	"github.com/ppiankov/feverpipe/internal/model"
	"github.com/ppiankov/feverpipe/internal/retrieval"
	"github.com/ppiankov/feverpipe/internal/task"
	"github.com/ppiankov/feverpipe/internal/wiki"
)

// Predictor fills the last column of one model input
type Predictor interface {
	Predict(ctx context.Context, ex task.Example) (string, error)
}

// PredictorFactory builds the predictor for a task
type PredictorFactory func(t task.Task) (Predictor, error)

// ProgressFunc is called as long-running stages advance
type ProgressFunc func(stage string, done, total int)

// Pipeline holds the configuration and collaborators shared by all stages
type Pipeline struct {
	config     *model.Config
	logger     *zap.Logger
	searcher   retrieval.Searcher
	phrases    retrieval.PhraseExtractor
	predictors PredictorFactory
	progress   ProgressFunc
}

// Option customises a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithSearcher replaces the Wikipedia search client
func WithSearcher(s retrieval.Searcher) Option {
	return func(p *Pipeline) { p.searcher = s }
}

// WithPhrases replaces the claim phrase extractor
func WithPhrases(e retrieval.PhraseExtractor) Option {
	return func(p *Pipeline) { p.phrases = e }
}

// WithPredictors replaces the model-backed predictors
func WithPredictors(f PredictorFactory) Option {
	return func(p *Pipeline) { p.predictors = f }
}

// WithProgress registers a progress callback
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// New creates a pipeline
func New(cfg *model.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		config:  cfg,
		logger:  zap.NewNop(),
		phrases: extract.NewPhraseExtractor(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.searcher == nil {
		p.searcher = wiki.NewClient(cfg.Search, p.logger.Named("wiki"))
	}
	if p.predictors == nil {
		p.predictors = p.llmPredictor
	}
	return p
}

func (p *Pipeline) llmPredictor(t task.Task) (Predictor, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(p.config))
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, llm.ErrNoProvider
	}
	return llm.NewClassifier(provider, t, p.config.LLM.MaxTokens)
}

func (p *Pipeline) report(stage string) func(done, total int) {
	return func(done, total int) {
		if p.progress != nil {
			p.progress(stage, done, total)
		}
	}
}

// openStore opens the document store read-only, fronted by the memory cache
// when a cache TTL is configured
func (p *Pipeline) openStore(path string) (docstore.Lookup, func() error, error) {
	store, err := docstore.Open(path)
	if err != nil {
		return nil, nil, err
	}
	store.SetBatchSize(p.config.Store.BatchSize)

	var lookup docstore.Lookup = store
	if p.config.Store.CacheTTL > 0 {
		lookup = docstore.NewCached(store, p.config.Store.CacheTTL)
	}
	return lookup, store.Close, nil
}

// eachClaim streams the claims of a newline-JSON file
func eachClaim(path string, fn func(c model.Claim) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open claims: %w", err)
	}
	defer func() { _ = f.Close() }()

	for c, err := range dataset.Claims(f) {
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

// eachRecord streams the records of a tab-separated sentence file
func eachRecord(path string, fn func(r dataset.Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open records: %w", err)
	}
	defer func() { _ = f.Close() }()

	for r, err := range dataset.Records(f) {
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}
