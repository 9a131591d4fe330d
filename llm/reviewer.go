package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quackverse/tokenscope/llm/retry"
	"github.com/quackverse/tokenscope/types"
)

// ReviewInput is the serializable view of a comparison handed to the
// provider. It deliberately omits raw tokens; the provider sees
// aggregate numbers, not the document.
type ReviewInput struct {
	InputDigest string                          `json:"input_digest"`
	Order       []string                        `json:"order"`
	Results     map[string]ResultSummary        `json:"results"`
	Metrics     map[string]types.AdapterMetrics `json:"metrics"`
	Pairwise    []types.PairwiseComparison      `json:"pairwise"`
	Ranking     []string                        `json:"ranking"`
}

// ResultSummary is the per-adapter slice of the review input.
type ResultSummary struct {
	Status     string  `json:"status"`
	Message    string  `json:"message,omitempty"`
	TokenCount int     `json:"token_count"`
	ElapsedMS  float64 `json:"elapsed_ms"`
}

// SummarizeResults builds the review input from raw comparison
// outputs.
func SummarizeResults(digest string, order []string, results map[string]*types.TokenizationResult, metrics map[string]types.AdapterMetrics, pairwise []types.PairwiseComparison, ranking []string) ReviewInput {
	in := ReviewInput{
		InputDigest: digest,
		Order:       order,
		Results:     make(map[string]ResultSummary, len(results)),
		Metrics:     metrics,
		Pairwise:    pairwise,
		Ranking:     ranking,
	}
	for name, res := range results {
		in.Results[name] = ResultSummary{
			Status:     res.Status(),
			Message:    res.StatusMessage(),
			TokenCount: res.TokenCount,
			ElapsedMS:  res.ElapsedMS,
		}
	}
	return in
}

const reviewSystemPrompt = "You are a tokenization analyst. Given metrics comparing " +
	"several tokenizers over one document, write a short qualitative commentary: " +
	"which tokenizer is most compact, how well their boundaries agree, and any " +
	"notable reconstruction issues. Three to five sentences, plain prose."

// ReviewOutcome is the reviewer's terminal state. Failures are data:
// a failed review degrades the report, it never fails the comparison.
type ReviewOutcome struct {
	Commentary string
	// Cause is the degradation reason; empty on success.
	Cause string
	// Attempts counts provider calls actually made.
	Attempts int
}

// Reviewer drives the optional LLM commentary under a retry/timeout
// policy.
type Reviewer struct {
	provider     Provider
	model        string
	timeout      time.Duration
	retryCount   int
	initialDelay time.Duration
	logger       *zap.Logger
}

// ReviewerOption tunes the reviewer.
type ReviewerOption func(*Reviewer)

// WithInitialDelay overrides the first backoff delay.
func WithInitialDelay(d time.Duration) ReviewerOption {
	return func(r *Reviewer) { r.initialDelay = d }
}

// NewReviewer creates a reviewer for the given provider.
func NewReviewer(provider Provider, model string, timeout time.Duration, retryCount int, logger *zap.Logger, opts ...ReviewerOption) *Reviewer {
	if retryCount < 0 {
		retryCount = 0
	}
	r := &Reviewer{
		provider:     provider,
		model:        model,
		timeout:      timeout,
		retryCount:   retryCount,
		initialDelay: 500 * time.Millisecond,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Review requests commentary for the summarized comparison. Transient
// provider failures are retried with exponential backoff up to the
// configured retry count; permanent failures (authentication,
// malformed request) get exactly one attempt. The outcome is always
// returned; failures degrade the report instead of propagating.
func (r *Reviewer) Review(ctx context.Context, input ReviewInput) ReviewOutcome {
	payload, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return ReviewOutcome{Cause: fmt.Sprintf("summary serialization failed: %v", err)}
	}

	req := &CompletionRequest{
		Model:   r.model,
		System:  reviewSystemPrompt,
		Prompt:  fmt.Sprintf("Comparison summary:\n%s", payload),
		Timeout: r.timeout,
	}

	policy := &retry.Policy{
		MaxRetries:   r.retryCount,
		InitialDelay: r.initialDelay,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
		Retryable:    IsRetryable,
	}
	retryer := retry.NewBackoffRetryer(policy, r.logger)

	outcome := ReviewOutcome{}
	var resp *CompletionResponse
	err = retryer.Do(ctx, func() error {
		outcome.Attempts++
		var callErr error
		resp, callErr = r.provider.Complete(ctx, req)
		return callErr
	})
	if err != nil {
		outcome.Cause = degradationCause(err)
		r.logger.Warn("commentary degraded",
			zap.String("provider", r.provider.Name()),
			zap.Int("attempts", outcome.Attempts),
			zap.String("cause", outcome.Cause),
		)
		return outcome
	}

	outcome.Commentary = resp.Text
	return outcome
}

// degradationCause renders the recorded failure cause, keeping the
// taxonomy code visible. The retryer wraps the terminal error, so the
// provider error is recovered through the chain.
func degradationCause(err error) string {
	var e *Error
	if errors.As(err, &e) {
		code := types.ErrProviderError
		if e.Code == ErrUpstreamTimeout {
			code = types.ErrProviderTimeout
		}
		return fmt.Sprintf("%s: %s", code, e.Message)
	}
	return err.Error()
}
