package tokenizer

import (
	"context"
	"hash/fnv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/quackverse/tokenscope/config"
	"github.com/quackverse/tokenscope/types"
)

// Mock backend names. Mocks are deterministic and dependency-free:
// no network, no model loading. They exist so the engine is fully
// testable without real backend downloads.
const (
	NameMockWhitespace = "mock_whitespace"
	NameMockChar       = "mock_char"
)

func isMockName(name string) bool {
	return name == NameMockWhitespace || name == NameMockChar
}

// mockTokenID derives a stable pseudo token id from the token text.
func mockTokenID(text string) int {
	h := fnv.New32a()
	h.Write([]byte(text))
	return int(h.Sum32() & 0x7fffffff)
}

// mockWhitespaceAdapter splits on Unicode whitespace. Detokenize joins
// with single spaces, so reconstruction is exact only for single-space
// input; that is acceptable for a test stand-in.
type mockWhitespaceAdapter struct {
	name string
}

func newMockWhitespaceAdapter(_ *config.Config, _ *zap.Logger) (Adapter, error) {
	return &mockWhitespaceAdapter{name: NameMockWhitespace}, nil
}

// newMockSubstitute wears a real backend's name in mock mode, so the
// report keys still match the configured tokenizer set.
func newMockSubstitute(name string) Adapter {
	return &mockWhitespaceAdapter{name: name}
}

func (m *mockWhitespaceAdapter) Name() string { return m.name }

func (m *mockWhitespaceAdapter) Description() string {
	return "deterministic whitespace-splitting mock"
}

func (m *mockWhitespaceAdapter) Tokenize(ctx context.Context, text string) (*types.TokenizationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewError(types.ErrBackendError, "tokenize cancelled").
			WithAdapter(m.name).WithCause(err)
	}
	if text == "" {
		return emptyResult(m.name), nil
	}

	started := time.Now()
	var tokens []types.Token
	inToken := false
	start := 0
	for i, r := range text {
		if unicode.IsSpace(r) {
			if inToken {
				tokens = appendMockToken(tokens, text, start, i)
				inToken = false
			}
			continue
		}
		if !inToken {
			start = i
			inToken = true
		}
	}
	if inToken {
		tokens = appendMockToken(tokens, text, start, len(text))
	}
	if tokens == nil {
		tokens = []types.Token{}
	}
	return finishResult(m.name, tokens, started), nil
}

func (m *mockWhitespaceAdapter) Detokenize(tokens []types.Token) (string, error) {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.Text
	}
	return strings.Join(parts, " "), nil
}

func (m *mockWhitespaceAdapter) VocabSize() int { return 0 }

// mockCharAdapter emits one token per character, excluding spaces.
type mockCharAdapter struct{}

func newMockCharAdapter(_ *config.Config, _ *zap.Logger) (Adapter, error) {
	return &mockCharAdapter{}, nil
}

func (m *mockCharAdapter) Name() string { return NameMockChar }

func (m *mockCharAdapter) Description() string {
	return "deterministic character-splitting mock (spaces excluded)"
}

func (m *mockCharAdapter) Tokenize(ctx context.Context, text string) (*types.TokenizationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewError(types.ErrBackendError, "tokenize cancelled").
			WithAdapter(m.Name()).WithCause(err)
	}
	if text == "" {
		return emptyResult(m.Name()), nil
	}

	started := time.Now()
	tokens := []types.Token{}
	for i, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		tokens = appendMockToken(tokens, text, i, i+len(string(r)))
	}
	return finishResult(m.Name(), tokens, started), nil
}

func (m *mockCharAdapter) Detokenize(tokens []types.Token) (string, error) {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Text)
	}
	return sb.String(), nil
}

func (m *mockCharAdapter) VocabSize() int { return 0 }

func appendMockToken(tokens []types.Token, text string, start, end int) []types.Token {
	piece := text[start:end]
	return append(tokens, types.Token{
		Index:    len(tokens),
		ID:       mockTokenID(piece),
		Text:     piece,
		ByteSpan: &types.Span{Start: start, End: end},
	})
}
