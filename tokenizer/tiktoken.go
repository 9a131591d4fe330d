package tokenizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"

	"github.com/quackverse/tokenscope/config"
	"github.com/quackverse/tokenscope/types"
)

// NameTiktoken is the OpenAI-family BPE backend.
const NameTiktoken = "tiktoken"

const tiktokenEncoding = "cl100k_base"

// tiktokenAdapter wraps tiktoken for OpenAI-family models.
// Encoding data may be downloaded on first use, so initialization is
// lazy and the failure is reported as BACKEND_UNAVAILABLE at tokenize
// time instead of at construction.
type tiktokenAdapter struct {
	encoding string
	enc      *tiktoken.Tiktoken
	once     sync.Once
	initErr  error
}

func newTiktokenAdapter(_ *config.Config, _ *zap.Logger) (Adapter, error) {
	return &tiktokenAdapter{encoding: tiktokenEncoding}, nil
}

func (t *tiktokenAdapter) init() error {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(t.encoding)
		if err != nil {
			t.initErr = fmt.Errorf("init tiktoken encoding %s: %w", t.encoding, err)
			return
		}
		t.enc = enc
	})
	return t.initErr
}

func (t *tiktokenAdapter) Name() string { return NameTiktoken }

func (t *tiktokenAdapter) Description() string {
	return fmt.Sprintf("OpenAI tiktoken BPE (%s)", t.encoding)
}

func (t *tiktokenAdapter) Tokenize(ctx context.Context, text string) (*types.TokenizationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewError(types.ErrBackendError, "tokenize cancelled").
			WithAdapter(t.Name()).WithCause(err)
	}
	if err := t.init(); err != nil {
		return nil, types.NewError(types.ErrBackendUnavailable, "tiktoken encoding not loadable").
			WithAdapter(t.Name()).WithCause(err)
	}
	if text == "" {
		return emptyResult(t.Name()), nil
	}

	started := time.Now()
	ids := t.enc.Encode(text, nil, nil)

	// cl100k is byte-level, so per-token decodes concatenate exactly
	// to the input and yield byte spans.
	pieces := make([]string, len(ids))
	for i, id := range ids {
		pieces[i] = t.enc.Decode([]int{id})
	}
	spans := spansByConcat(text, pieces)

	tokens := make([]types.Token, len(ids))
	for i, id := range ids {
		tokens[i] = types.Token{Index: i, ID: id, Text: pieces[i]}
		if spans != nil {
			s := spans[i]
			tokens[i].ByteSpan = &s
		}
	}
	return finishResult(t.Name(), tokens, started), nil
}

func (t *tiktokenAdapter) Detokenize(tokens []types.Token) (string, error) {
	if err := t.init(); err != nil {
		return "", types.NewError(types.ErrBackendUnavailable, "tiktoken encoding not loadable").
			WithAdapter(t.Name()).WithCause(err)
	}
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		ids[i] = tok.ID
	}
	return t.enc.Decode(ids), nil
}

func (t *tiktokenAdapter) VocabSize() int {
	// tiktoken does not expose the vocabulary size directly.
	return 0
}
