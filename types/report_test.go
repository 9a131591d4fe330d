package types

import "testing"

func TestTokenizationResult_StatusHelpers(t *testing.T) {
	t.Parallel()

	ok := &TokenizationResult{AdapterName: "a", Tokens: []Token{}, TokenCount: 0}
	if !ok.OK() || ok.Status() != "ok" || ok.StatusMessage() != "" {
		t.Fatalf("unexpected status for clean result")
	}

	failed := &TokenizationResult{
		AdapterName: "b",
		Tokens:      []Token{},
		Err:         NewError(ErrBackendUnavailable, "down"),
	}
	if failed.OK() || failed.Status() != "error" || failed.StatusMessage() == "" {
		t.Fatalf("unexpected status for failed result")
	}

	var nilResult *TokenizationResult
	if nilResult.OK() {
		t.Fatalf("nil result must not be OK")
	}
}

func TestDisplayTokens(t *testing.T) {
	t.Parallel()

	tokens := []Token{{Text: "a"}, {Text: "b"}, {Text: "c"}}
	report := &ComparisonReport{
		Results: map[string]*TokenizationResult{
			"ok":   {AdapterName: "ok", Tokens: tokens, TokenCount: 3},
			"down": {AdapterName: "down", Tokens: []Token{}, Err: NewError(ErrBackendError, "boom")},
		},
		MaxTokensToDisplay: 2,
	}

	if got := report.DisplayTokens("ok"); len(got) != 2 {
		t.Fatalf("expected 2 display tokens, got %d", len(got))
	}
	if got := report.DisplayTokens("down"); got != nil {
		t.Fatalf("failed adapters have no display tokens")
	}
	if got := report.DisplayTokens("absent"); got != nil {
		t.Fatalf("unknown adapters have no display tokens")
	}

	report.MaxTokensToDisplay = 0
	if got := report.DisplayTokens("ok"); len(got) != 3 {
		t.Fatalf("zero cap keeps the full sequence, got %d", len(got))
	}
}
