// Package engine implements the tokenizer comparison core: running
// every selected adapter over one input, scoring the outcomes, and
// assembling the immutable comparison report.
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quackverse/tokenscope/internal/metrics"
	"github.com/quackverse/tokenscope/tokenizer"
	"github.com/quackverse/tokenscope/types"
)

// Engine orchestrates tokenization across all selected adapters,
// isolating per-adapter failure.
type Engine struct {
	logger    *zap.Logger
	collector *metrics.Collector
}

// Option configures the Engine.
type Option func(*Engine)

// WithCollector attaches a metrics collector.
func WithCollector(c *metrics.Collector) Option {
	return func(e *Engine) { e.collector = c }
}

// New creates a comparison engine.
func New(logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compare runs every adapter over the input text. Adapter invocations
// are mutually independent and run concurrently on a pool bounded by
// the adapter count; a failing adapter yields a TokenizationResult
// with Err set instead of aborting the call. The only fatal condition
// at this layer is every adapter failing (NO_USABLE_TOKENIZERS), or
// the caller cancelling the context, which cancels in-flight
// invocations.
func (e *Engine) Compare(ctx context.Context, text string, adapters []tokenizer.Adapter) (map[string]*types.TokenizationResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(adapters))

	// Per-index writes; no shared-state races.
	slots := make([]*types.TokenizationResult, len(adapters))
	for i, a := range adapters {
		g.Go(func() error {
			started := time.Now()
			res, err := a.Tokenize(gctx, text)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				res = &types.TokenizationResult{
					AdapterName: a.Name(),
					Tokens:      []types.Token{},
					ElapsedMS:   float64(time.Since(started).Microseconds()) / 1000.0,
					Err:         asBackendError(err, a.Name()),
				}
				e.logger.Warn("tokenizer backend failed",
					zap.String("adapter", a.Name()),
					zap.Error(err),
				)
			}
			slots[i] = res
			e.collector.ObserveTokenize(a.Name(), res.Status(), res.TokenCount, time.Since(started))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make(map[string]*types.TokenizationResult, len(adapters))
	usable := 0
	for _, res := range slots {
		results[res.AdapterName] = res
		if res.OK() {
			usable++
		}
	}
	if usable == 0 {
		return nil, types.NewError(types.ErrNoUsableTokenizers,
			"every tokenizer backend failed")
	}

	e.logger.Info("comparison tokenization complete",
		zap.Int("adapters", len(adapters)),
		zap.Int("usable", usable),
		zap.Int("input_bytes", len(text)),
	)
	return results, nil
}

// asBackendError normalizes adapter failures into the structured
// error recorded inside the result.
func asBackendError(err error, adapter string) *types.Error {
	if e, ok := err.(*types.Error); ok {
		return e
	}
	return types.NewError(types.ErrBackendError, "tokenize failed").
		WithAdapter(adapter).WithCause(err)
}
