package types

// Span is a half-open byte range [Start, End) into the input text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Token is one unit emitted by a tokenizer backend.
type Token struct {
	// Index is the position in the backend's emission order.
	Index int `json:"index"`
	// ID is the backend-specific token id.
	ID int `json:"id"`
	// Text is the surface form of the token.
	Text string `json:"text"`
	// ByteSpan locates the token in the original input, when the
	// backend can supply offsets. Nil otherwise.
	ByteSpan *Span `json:"byte_span,omitempty"`
}

// TokenizationResult is the outcome of running one adapter over the
// input. Immutable once produced; Tokens follow the backend's emission
// order.
type TokenizationResult struct {
	AdapterName string   `json:"adapter_name"`
	Tokens      []Token  `json:"tokens"`
	TokenCount  int      `json:"token_count"`
	ElapsedMS   float64  `json:"elapsed_ms"`
	Err         *Error   `json:"error,omitempty"`
}

// OK reports whether the adapter produced a usable tokenization.
func (r *TokenizationResult) OK() bool {
	return r != nil && r.Err == nil
}

// Status returns the user-visible status string for the adapter entry.
func (r *TokenizationResult) Status() string {
	if r.OK() {
		return "ok"
	}
	return "error"
}

// StatusMessage returns the error message for failed entries, empty
// otherwise.
func (r *TokenizationResult) StatusMessage() string {
	if r == nil || r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
