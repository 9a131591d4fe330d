package tokenizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	gotokenizer "github.com/tiktoken-go/tokenizer"
	"go.uber.org/zap"

	"github.com/quackverse/tokenscope/config"
	"github.com/quackverse/tokenscope/types"
)

// NameBPEOffline is the pure-Go BPE backend. Unlike the tiktoken
// backend it embeds its vocabulary, so it works without network access.
const NameBPEOffline = "bpe_offline"

type bpeOfflineAdapter struct {
	codec   gotokenizer.Codec
	once    sync.Once
	initErr error
}

func newBPEOfflineAdapter(_ *config.Config, _ *zap.Logger) (Adapter, error) {
	return &bpeOfflineAdapter{}, nil
}

func (b *bpeOfflineAdapter) init() error {
	b.once.Do(func() {
		codec, err := gotokenizer.Get(gotokenizer.Cl100kBase)
		if err != nil {
			b.initErr = fmt.Errorf("init offline BPE codec: %w", err)
			return
		}
		b.codec = codec
	})
	return b.initErr
}

func (b *bpeOfflineAdapter) Name() string { return NameBPEOffline }

func (b *bpeOfflineAdapter) Description() string {
	return "embedded-vocabulary BPE (cl100k_base, offline)"
}

func (b *bpeOfflineAdapter) Tokenize(ctx context.Context, text string) (*types.TokenizationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewError(types.ErrBackendError, "tokenize cancelled").
			WithAdapter(b.Name()).WithCause(err)
	}
	if err := b.init(); err != nil {
		return nil, types.NewError(types.ErrBackendUnavailable, "offline BPE codec not loadable").
			WithAdapter(b.Name()).WithCause(err)
	}
	if text == "" {
		return emptyResult(b.Name()), nil
	}

	started := time.Now()
	ids, pieces, err := b.codec.Encode(text)
	if err != nil {
		return nil, types.NewError(types.ErrBackendError, "offline BPE rejected input").
			WithAdapter(b.Name()).WithCause(err)
	}

	spans := spansByConcat(text, pieces)
	tokens := make([]types.Token, len(ids))
	for i, id := range ids {
		tokens[i] = types.Token{Index: i, ID: int(id), Text: pieces[i]}
		if spans != nil {
			s := spans[i]
			tokens[i].ByteSpan = &s
		}
	}
	return finishResult(b.Name(), tokens, started), nil
}

func (b *bpeOfflineAdapter) Detokenize(tokens []types.Token) (string, error) {
	if err := b.init(); err != nil {
		return "", types.NewError(types.ErrBackendUnavailable, "offline BPE codec not loadable").
			WithAdapter(b.Name()).WithCause(err)
	}
	ids := make([]uint, len(tokens))
	for i, tok := range tokens {
		ids[i] = uint(tok.ID)
	}
	text, err := b.codec.Decode(ids)
	if err != nil {
		return "", types.NewError(types.ErrBackendError, "offline BPE decode failed").
			WithAdapter(b.Name()).WithCause(err)
	}
	return text, nil
}

func (b *bpeOfflineAdapter) VocabSize() int {
	return 0
}
