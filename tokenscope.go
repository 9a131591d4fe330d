// Package tokenscope provides a top-level convenience entry point for
// running tokenizer comparisons with minimal boilerplate.
//
// Usage:
//
//	import "github.com/quackverse/tokenscope"
//
//	scope, err := tokenscope.New(tokenscope.WithConfig(cfg))
//	report, err := scope.Compare(ctx, text, nil)
//
// The heavy lifting lives in the engine, tokenizer, and llm packages;
// this package only wires them together.
package tokenscope

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quackverse/tokenscope/config"
	"github.com/quackverse/tokenscope/engine"
	"github.com/quackverse/tokenscope/internal/metrics"
	"github.com/quackverse/tokenscope/llm"
	"github.com/quackverse/tokenscope/llm/factory"
	"github.com/quackverse/tokenscope/tokenizer"
	"github.com/quackverse/tokenscope/types"
)

// Scope bundles the registry, engine, calculator, assembler, and the
// optional reviewer behind one comparison call. Construct once, reuse
// across inputs; adapters are cached for the process lifetime.
type Scope struct {
	cfg        *config.Config
	logger     *zap.Logger
	registry   *tokenizer.Registry
	engine     *engine.Engine
	calculator *engine.Calculator
	assembler  *engine.Assembler
	reviewer   *llm.Reviewer
	collector  *metrics.Collector
}

// Option configures the Scope.
type Option func(*Scope)

// WithConfig supplies the configuration; defaults are used otherwise.
func WithConfig(cfg *config.Config) Option {
	return func(s *Scope) { s.cfg = cfg }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scope) { s.logger = logger }
}

// WithCollector attaches a Prometheus metrics collector.
func WithCollector(c *metrics.Collector) Option {
	return func(s *Scope) { s.collector = c }
}

// WithReviewer enables commentary with a pre-built reviewer, mainly
// for tests.
func WithReviewer(r *llm.Reviewer) Option {
	return func(s *Scope) { s.reviewer = r }
}

// EnableReview requests commentary from the configured provider.
func EnableReview() Option {
	return func(s *Scope) { s.cfg.EnableReview = true }
}

// New wires a Scope. Configuration errors (unknown provider, missing
// credentials) surface here, never mid-comparison.
func New(opts ...Option) (*Scope, error) {
	s := &Scope{
		cfg:    config.DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registry = tokenizer.NewRegistry(s.cfg, s.logger)
	s.engine = engine.New(s.logger, engine.WithCollector(s.collector))
	s.calculator = engine.NewCalculator(s.logger)
	s.assembler = engine.NewAssembler(s.logger)

	if s.cfg.EnableReview && s.reviewer == nil {
		provider, err := factory.NewProvider(s.cfg.LLM, s.logger)
		if err != nil {
			return nil, err
		}
		s.reviewer = llm.NewReviewer(provider, factory.DefaultModel(s.cfg.LLM),
			s.cfg.LLM.Timeout, s.cfg.LLM.RetryCount, s.logger)
	}

	return s, nil
}

// Compare tokenizes text with the named backends (config default when
// names is nil), scores the outcomes, optionally reviews them, and
// assembles the immutable report.
func (s *Scope) Compare(ctx context.Context, text string, names []string) (*types.ComparisonReport, error) {
	if len(names) == 0 {
		names = s.cfg.Tokenizers
	}

	adapters, err := s.registry.Resolve(names, s.cfg.UseMockTokenizers)
	if err != nil {
		return nil, err
	}

	results, err := s.engine.Compare(ctx, text, adapters)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]tokenizer.Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	adapterMetrics, pairwise := s.calculator.Compute(text, names, byName, results)

	commentary := engine.CommentaryOutcome{}
	if s.reviewer != nil {
		commentary.Requested = true
		summary := llm.SummarizeResults(engine.InputDigest(text), names, results, adapterMetrics, pairwise, nil)
		started := time.Now()
		outcome := s.reviewer.Review(ctx, summary)
		status := "ok"
		if outcome.Cause != "" {
			status = "error"
		}
		s.collector.ObserveReview(s.cfg.LLM.DefaultProvider, status, outcome.Attempts-1, time.Since(started))
		commentary.Text = outcome.Commentary
		commentary.Cause = outcome.Cause
	}

	return s.assembler.Assemble(text, names, results, adapterMetrics, pairwise, commentary, engine.AssembleOptions{
		MaxTokensToDisplay:  s.cfg.MaxTokensToDisplay,
		TopFrequencies:      s.cfg.TopFrequencies,
		CostModel:           s.cfg.CostModel,
		AssumedOutputTokens: s.cfg.AssumedOutputTokens,
	}), nil
}

// Registry exposes the underlying registry, mainly for the CLI's
// backend listing.
func (s *Scope) Registry() *tokenizer.Registry {
	return s.registry
}
