package tokenizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBPEOffline_TokenizeAndRoundTrip(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, newBPEOfflineAdapter)
	const input = "hello world"

	res, err := a.Tokenize(context.Background(), input)
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Greater(t, res.TokenCount, 0)

	// Token texts concatenate back to the input, so every token
	// carries a byte span.
	var rebuilt string
	for _, tok := range res.Tokens {
		rebuilt += tok.Text
		require.NotNil(t, tok.ByteSpan)
		assert.Equal(t, tok.Text, input[tok.ByteSpan.Start:tok.ByteSpan.End])
	}
	assert.Equal(t, input, rebuilt)

	decoded, err := a.Detokenize(res.Tokens)
	require.NoError(t, err)
	assert.Equal(t, input, decoded)
}

func TestBPEOffline_EmptyInput(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, newBPEOfflineAdapter)
	res, err := a.Tokenize(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, res.TokenCount)
}
