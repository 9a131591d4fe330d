package types

// AdapterMetrics carries the per-adapter scores computed from one
// successful tokenization.
type AdapterMetrics struct {
	TokenCount         int     `json:"token_count"`
	AvgTokenLength     float64 `json:"avg_token_length"`
	DistinctTokenRatio float64 `json:"distinct_token_ratio"`

	// ReconstructionDistance is the normalized Levenshtein distance
	// between the original input and the adapter's detokenized output
	// (0 = identical). Nil when the backend cannot detokenize.
	ReconstructionDistance *float64 `json:"reconstruction_distance,omitempty"`
	ReconstructionOK       bool     `json:"reconstruction_ok"`
}

// PairwiseComparison scores one unordered pair of adapters that both
// produced a result.
type PairwiseComparison struct {
	AdapterA string `json:"adapter_a"`
	AdapterB string `json:"adapter_b"`

	// BoundaryAlignmentScore is the Jaccard similarity of the two
	// tokenizations' token-start offsets, in [0, 1].
	BoundaryAlignmentScore float64 `json:"boundary_alignment_score"`

	TokenCountDelta int `json:"token_count_delta"`

	// ReconstructionEditDistance is the worse of the two adapters'
	// reconstruction distances against the original input. Nil when
	// either side cannot detokenize, in which case
	// ReconstructionUnavailable is set.
	ReconstructionEditDistance *float64 `json:"reconstruction_edit_distance,omitempty"`
	ReconstructionUnavailable  bool     `json:"reconstruction_unavailable"`
}

// TokenFrequency is one row of an adapter's token frequency table.
type TokenFrequency struct {
	Rank  int    `json:"rank"`
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// CostEstimate prices one adapter's token count against a model's
// published per-1K-token rates, in USD.
type CostEstimate struct {
	AdapterName  string  `json:"adapter_name"`
	Model        string  `json:"model"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	TotalCost    float64 `json:"total_cost"`
}

// ComparisonReport is the assembled outcome of one comparison run.
// Read-only once ReportAssembler returns it; the caller owns export
// and disposal.
type ComparisonReport struct {
	RunID       string `json:"run_id"`
	InputDigest string `json:"input_digest"`

	// Results holds exactly one entry per configured adapter,
	// including failed ones. Order holds the caller-supplied
	// tokenizer order for iteration via Order.
	Results map[string]*TokenizationResult `json:"results"`
	Order   []string                       `json:"order"`

	Metrics  map[string]AdapterMetrics `json:"metrics"`
	Pairwise []PairwiseComparison      `json:"pairwise"`

	// Ranking sorts successful adapters by ascending token count,
	// ties broken lexically. Advisory only.
	Ranking []string `json:"ranking"`

	Frequencies map[string][]TokenFrequency `json:"frequencies,omitempty"`
	Costs       []CostEstimate              `json:"costs,omitempty"`

	Commentary             string `json:"commentary,omitempty"`
	CommentaryUnavailable  bool   `json:"commentary_unavailable"`
	CommentaryFailureCause string `json:"commentary_failure_cause,omitempty"`

	// MaxTokensToDisplay caps human-readable previews. The full token
	// sequences stay in Results regardless.
	MaxTokensToDisplay int `json:"max_tokens_to_display"`
}

// DisplayTokens returns up to MaxTokensToDisplay tokens for the named
// adapter, for preview rendering. The underlying result is untouched.
func (r *ComparisonReport) DisplayTokens(name string) []Token {
	res, ok := r.Results[name]
	if !ok || !res.OK() {
		return nil
	}
	if r.MaxTokensToDisplay <= 0 || len(res.Tokens) <= r.MaxTokensToDisplay {
		return res.Tokens
	}
	return res.Tokens[:r.MaxTokensToDisplay]
}
