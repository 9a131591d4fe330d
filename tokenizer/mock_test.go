package tokenizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quackverse/tokenscope/config"
	"github.com/quackverse/tokenscope/types"
)

func newAdapter(t *testing.T, factory Factory) Adapter {
	t.Helper()
	a, err := factory(config.DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	return a
}

func TestMockWhitespace_Tokenize(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, newMockWhitespaceAdapter)
	res, err := a.Tokenize(context.Background(), "hello world")
	require.NoError(t, err)
	require.True(t, res.OK())

	assert.Equal(t, NameMockWhitespace, res.AdapterName)
	assert.Equal(t, 2, res.TokenCount)
	require.Len(t, res.Tokens, 2)

	assert.Equal(t, "hello", res.Tokens[0].Text)
	assert.Equal(t, "world", res.Tokens[1].Text)
	assert.Equal(t, 0, res.Tokens[0].Index)
	assert.Equal(t, 1, res.Tokens[1].Index)

	require.NotNil(t, res.Tokens[0].ByteSpan)
	assert.Equal(t, types.Span{Start: 0, End: 5}, *res.Tokens[0].ByteSpan)
	require.NotNil(t, res.Tokens[1].ByteSpan)
	assert.Equal(t, types.Span{Start: 6, End: 11}, *res.Tokens[1].ByteSpan)
}

func TestMockWhitespace_CollapsesRuns(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, newMockWhitespaceAdapter)
	res, err := a.Tokenize(context.Background(), "  a\t\tb \n c  ")
	require.NoError(t, err)

	assert.Equal(t, 3, res.TokenCount)
	texts := make([]string, 0, 3)
	for _, tok := range res.Tokens {
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []string{"a", "b", "c"}, texts)
}

func TestMockWhitespace_EmptyInput(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, newMockWhitespaceAdapter)
	res, err := a.Tokenize(context.Background(), "")
	require.NoError(t, err)
	require.True(t, res.OK())

	assert.Equal(t, 0, res.TokenCount)
	assert.NotNil(t, res.Tokens)
	assert.Empty(t, res.Tokens)
}

func TestMockWhitespace_DetokenizeRoundTrip(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, newMockWhitespaceAdapter)
	res, err := a.Tokenize(context.Background(), "the quick brown fox")
	require.NoError(t, err)

	got, err := a.Detokenize(res.Tokens)
	require.NoError(t, err)
	assert.Equal(t, "the quick brown fox", got)
}

func TestMockWhitespace_StableTokenIDs(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, newMockWhitespaceAdapter)
	res, err := a.Tokenize(context.Background(), "abc xyz abc")
	require.NoError(t, err)
	require.Equal(t, 3, res.TokenCount)

	assert.Equal(t, res.Tokens[0].ID, res.Tokens[2].ID)
	assert.NotEqual(t, res.Tokens[0].ID, res.Tokens[1].ID)
	for _, tok := range res.Tokens {
		assert.GreaterOrEqual(t, tok.ID, 0)
	}
}

func TestMockChar_Tokenize(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, newMockCharAdapter)
	res, err := a.Tokenize(context.Background(), "The quick brown fox")
	require.NoError(t, err)

	// 16 non-space characters.
	assert.Equal(t, 16, res.TokenCount)
	assert.Equal(t, "T", res.Tokens[0].Text)
	require.NotNil(t, res.Tokens[0].ByteSpan)
	assert.Equal(t, types.Span{Start: 0, End: 1}, *res.Tokens[0].ByteSpan)
}

func TestMockChar_MultibyteRunes(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, newMockCharAdapter)
	res, err := a.Tokenize(context.Background(), "héllo")
	require.NoError(t, err)

	require.Equal(t, 5, res.TokenCount)
	assert.Equal(t, "é", res.Tokens[1].Text)
	// é is two bytes; the following token starts after it.
	assert.Equal(t, types.Span{Start: 1, End: 3}, *res.Tokens[1].ByteSpan)
	assert.Equal(t, 3, res.Tokens[2].ByteSpan.Start)
}

func TestMockChar_Detokenize(t *testing.T) {
	t.Parallel()

	a := newAdapter(t, newMockCharAdapter)
	res, err := a.Tokenize(context.Background(), "ab cd")
	require.NoError(t, err)

	got, err := a.Detokenize(res.Tokens)
	require.NoError(t, err)
	assert.Equal(t, "abcd", got)
}

func TestMocks_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, factory := range []Factory{newMockWhitespaceAdapter, newMockCharAdapter} {
		a := newAdapter(t, factory)
		_, err := a.Tokenize(ctx, "hello")
		require.Error(t, err)
		assert.Equal(t, types.ErrBackendError, types.GetErrorCode(err))
	}
}

func TestMockSubstitute_WearsRequestedName(t *testing.T) {
	t.Parallel()

	a := newMockSubstitute(NameTiktoken)
	assert.Equal(t, NameTiktoken, a.Name())

	res, err := a.Tokenize(context.Background(), "one two three")
	require.NoError(t, err)
	assert.Equal(t, NameTiktoken, res.AdapterName)
	assert.Equal(t, 3, res.TokenCount)
}
