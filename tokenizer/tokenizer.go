// Package tokenizer provides the uniform adapter contract over
// heterogeneous tokenizer backends, and the registry that resolves
// configured backend names to cached adapter instances.
package tokenizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quackverse/tokenscope/config"
	"github.com/quackverse/tokenscope/types"
)

// Adapter is the uniform capability wrapper around one tokenizer
// backend. Implementations must be immutable after construction and
// safe for concurrent reuse.
type Adapter interface {
	// Name returns the unique backend name.
	Name() string

	// Description returns a short human-readable backend description.
	Description() string

	// Tokenize splits text into tokens. It returns a BACKEND_UNAVAILABLE
	// error when the backend cannot be loaded and a BACKEND_ERROR when
	// the backend rejects the input. Empty input yields zero tokens and
	// no error. Shared state is never partially mutated.
	Tokenize(ctx context.Context, text string) (*types.TokenizationResult, error)

	// Detokenize reconstructs text from tokens. Backends that cannot
	// reconstruct return an UNSUPPORTED_OPERATION error; callers record
	// this rather than treating it as fatal.
	Detokenize(tokens []types.Token) (string, error)

	// VocabSize returns the backend vocabulary size, or 0 when unknown.
	VocabSize() int
}

// Factory constructs one adapter. Construction must be cheap; backends
// that load models or fetch vocabularies do so lazily on first use.
type Factory func(cfg *config.Config, logger *zap.Logger) (Adapter, error)

// Registry resolves configured tokenizer names to adapters.
// Register is a one-time, non-concurrent construction step; Resolve
// may be called repeatedly and concurrently once construction is done.
type Registry struct {
	factories map[string]Factory
	cfg       *config.Config
	logger    *zap.Logger

	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates a registry with all built-in backends
// registered: tiktoken, bpe_offline, wordpiece, mock_whitespace,
// mock_char.
func NewRegistry(cfg *config.Config, logger *zap.Logger) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
		adapters:  make(map[string]Adapter),
		cfg:       cfg,
		logger:    logger,
	}
	r.Register(NameTiktoken, newTiktokenAdapter)
	r.Register(NameBPEOffline, newBPEOfflineAdapter)
	r.Register(NameWordpiece, newWordpieceAdapter)
	r.Register(NameMockWhitespace, newMockWhitespaceAdapter)
	r.Register(NameMockChar, newMockCharAdapter)
	return r
}

// Register adds a factory under a name. Not safe for use concurrently
// with Resolve; call during construction only.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Names returns the registered backend names in no particular order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// Resolve maps the ordered name list to adapters, constructing and
// caching each adapter once for the process lifetime. With useMock set,
// every non-mock name is substituted by a deterministic whitespace mock
// reporting the requested name, so no network or model loading occurs.
// An unregistered name yields CONFIG_UNKNOWN_TOKENIZER.
func (r *Registry) Resolve(names []string, useMock bool) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(names))
	for _, name := range names {
		a, err := r.resolveOne(name, useMock)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

func (r *Registry) resolveOne(name string, useMock bool) (Adapter, error) {
	key := name
	if useMock {
		key = "mock:" + name
	}

	r.mu.RLock()
	a, ok := r.adapters[key]
	r.mu.RUnlock()
	if ok {
		return a, nil
	}

	factory, ok := r.factories[name]
	if !ok {
		return nil, types.NewError(types.ErrUnknownTokenizer,
			fmt.Sprintf("no tokenizer registered for name %q", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.adapters[key]; ok {
		return a, nil
	}

	var (
		adapter Adapter
		err     error
	)
	if useMock && !isMockName(name) {
		adapter = newMockSubstitute(name)
	} else {
		adapter, err = factory(r.cfg, r.logger)
		if err != nil {
			return nil, err
		}
	}

	r.adapters[key] = adapter
	r.logger.Debug("tokenizer adapter constructed",
		zap.String("adapter", adapter.Name()),
		zap.Bool("mock", useMock),
	)
	return adapter, nil
}

// emptyResult is the shared zero-token outcome for empty input.
// Every backend must report token_count = 0 with no error.
func emptyResult(name string) *types.TokenizationResult {
	return &types.TokenizationResult{
		AdapterName: name,
		Tokens:      []types.Token{},
		TokenCount:  0,
	}
}

// finishResult stamps counts and elapsed time on a result.
func finishResult(name string, tokens []types.Token, started time.Time) *types.TokenizationResult {
	return &types.TokenizationResult{
		AdapterName: name,
		Tokens:      tokens,
		TokenCount:  len(tokens),
		ElapsedMS:   float64(time.Since(started).Microseconds()) / 1000.0,
	}
}

// spansByConcat derives byte spans for token texts that concatenate
// exactly to the input. Returns nil when the pieces do not line up,
// in which case the tokens carry no spans.
func spansByConcat(text string, pieces []string) []types.Span {
	spans := make([]types.Span, len(pieces))
	off := 0
	for i, p := range pieces {
		end := off + len(p)
		if end > len(text) || text[off:end] != p {
			return nil
		}
		spans[i] = types.Span{Start: off, End: end}
		off = end
	}
	if off != len(text) {
		return nil
	}
	return spans
}
