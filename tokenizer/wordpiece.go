package tokenizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
	"go.uber.org/zap"

	"github.com/quackverse/tokenscope/config"
	"github.com/quackverse/tokenscope/types"
)

// NameWordpiece is the model-vocabulary backend (BERT-style WordPiece
// loaded from a vocab.txt file).
const NameWordpiece = "wordpiece"

type wordpieceAdapter struct {
	vocabPath string
	t         *tk.Tokenizer
	once      sync.Once
	initErr   error
}

func newWordpieceAdapter(cfg *config.Config, _ *zap.Logger) (Adapter, error) {
	return &wordpieceAdapter{vocabPath: cfg.WordpieceVocab}, nil
}

func (w *wordpieceAdapter) init() error {
	w.once.Do(func() {
		if w.vocabPath == "" {
			w.initErr = fmt.Errorf("no wordpiece vocab configured")
			return
		}
		wp, err := wordpiece.NewWordPieceFromFile(w.vocabPath, "[UNK]")
		if err != nil {
			w.initErr = fmt.Errorf("load wordpiece vocab %s: %w", w.vocabPath, err)
			return
		}
		t := tk.NewTokenizer(wp)
		t.WithNormalizer(normalizer.NewBertNormalizer(true, true, true, true))
		t.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())
		w.t = t
	})
	return w.initErr
}

func (w *wordpieceAdapter) Name() string { return NameWordpiece }

func (w *wordpieceAdapter) Description() string {
	return "BERT-style WordPiece from a model vocabulary file"
}

func (w *wordpieceAdapter) Tokenize(ctx context.Context, text string) (*types.TokenizationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewError(types.ErrBackendError, "tokenize cancelled").
			WithAdapter(w.Name()).WithCause(err)
	}
	if err := w.init(); err != nil {
		return nil, types.NewError(types.ErrBackendUnavailable, "wordpiece model not loadable").
			WithAdapter(w.Name()).WithCause(err)
	}
	if text == "" {
		return emptyResult(w.Name()), nil
	}

	started := time.Now()
	enc, err := w.t.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(text)), false)
	if err != nil {
		return nil, types.NewError(types.ErrBackendError, "wordpiece rejected input").
			WithAdapter(w.Name()).WithCause(err)
	}

	ids := enc.GetIds()
	pieces := enc.GetTokens()
	offsets := enc.GetOffsets()
	runeToByte := runeByteIndex(text)

	tokens := make([]types.Token, len(ids))
	for i, id := range ids {
		tokens[i] = types.Token{Index: i, ID: id, Text: pieces[i]}
		if i < len(offsets) && len(offsets[i]) == 2 {
			if span, ok := spanFromRuneOffsets(runeToByte, offsets[i][0], offsets[i][1]); ok {
				tokens[i].ByteSpan = &span
			}
		}
	}
	return finishResult(w.Name(), tokens, started), nil
}

// Detokenize is unsupported: BERT normalization (lowercasing, accent
// stripping, "##" continuation markers) makes reconstruction lossy.
func (w *wordpieceAdapter) Detokenize([]types.Token) (string, error) {
	return "", types.NewError(types.ErrUnsupportedOperation,
		"wordpiece backend cannot reconstruct text").WithAdapter(w.Name())
}

func (w *wordpieceAdapter) VocabSize() int {
	if err := w.init(); err != nil {
		return 0
	}
	return w.t.GetVocabSize(false)
}

// runeByteIndex maps rune index -> byte offset, with one extra entry
// for the end of the string.
func runeByteIndex(text string) []int {
	idx := make([]int, 0, len(text)+1)
	for i := range text {
		idx = append(idx, i)
	}
	idx = append(idx, len(text))
	return idx
}

// spanFromRuneOffsets converts a [start, end) rune offset pair to a
// byte span, rejecting out-of-range offsets.
func spanFromRuneOffsets(runeToByte []int, start, end int) (types.Span, bool) {
	if start < 0 || end < start || end > len(runeToByte)-1 {
		return types.Span{}, false
	}
	return types.Span{Start: runeToByte[start], End: runeToByte[end]}, true
}
