// Package mocks provides test doubles for the LLM provider and the
// tokenizer adapter contracts, with error-injection support.
package mocks

import (
	"context"
	"sync"

	"github.com/quackverse/tokenscope/llm"
	"github.com/quackverse/tokenscope/types"
)

// MockProvider is a scriptable llm.Provider.
type MockProvider struct {
	mu sync.Mutex

	response  string
	err       error
	failFirst int // fail this many calls, then succeed

	calls []llm.CompletionRequest
}

// NewMockProvider creates a provider returning a fixed response.
func NewMockProvider() *MockProvider {
	return &MockProvider{response: "mock commentary"}
}

// WithResponse sets the fixed response text.
func (m *MockProvider) WithResponse(text string) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = text
	return m
}

// WithError makes every call fail with err.
func (m *MockProvider) WithError(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithFailuresThenSuccess fails the first n calls with err, then
// succeeds.
func (m *MockProvider) WithFailuresThenSuccess(n int, err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFirst = n
	m.err = err
	return m
}

func (m *MockProvider) Name() string { return "mock" }

// Complete records the call and returns the scripted outcome.
func (m *MockProvider) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, *req)
	if m.err != nil {
		if m.failFirst == 0 || len(m.calls) <= m.failFirst {
			return nil, m.err
		}
	}
	return &llm.CompletionResponse{Provider: m.Name(), Model: req.Model, Text: m.response}, nil
}

// CallCount returns the number of Complete invocations.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// TransientError builds a retryable provider error.
func TransientError(msg string) *llm.Error {
	return &llm.Error{Code: llm.ErrUpstreamError, Message: msg, HTTPStatus: 503, Retryable: true}
}

// AuthError builds a permanent authentication error.
func AuthError(msg string) *llm.Error {
	return &llm.Error{Code: llm.ErrUnauthorized, Message: msg, HTTPStatus: 401}
}

// FailingAdapter simulates a backend outage: every Tokenize call
// reports BACKEND_UNAVAILABLE.
type FailingAdapter struct {
	AdapterName string
}

func (f *FailingAdapter) Name() string        { return f.AdapterName }
func (f *FailingAdapter) Description() string { return "always-failing test backend" }
func (f *FailingAdapter) VocabSize() int      { return 0 }

func (f *FailingAdapter) Tokenize(context.Context, string) (*types.TokenizationResult, error) {
	return nil, types.NewError(types.ErrBackendUnavailable, "simulated outage").
		WithAdapter(f.AdapterName)
}

func (f *FailingAdapter) Detokenize([]types.Token) (string, error) {
	return "", types.NewError(types.ErrUnsupportedOperation, "failing adapter cannot detokenize").
		WithAdapter(f.AdapterName)
}
