package types

import "fmt"

// ErrorCode represents a unified error code across the engine.
type ErrorCode string

// Configuration error codes. These are fatal and raised before a
// comparison starts.
const (
	ErrUnknownTokenizer   ErrorCode = "CONFIG_UNKNOWN_TOKENIZER"
	ErrMissingCredentials ErrorCode = "CONFIG_MISSING_CREDENTIALS"
	ErrInvalidConfig      ErrorCode = "CONFIG_INVALID"
)

// Backend error codes. Per-adapter, non-fatal: recorded inside the
// TokenizationResult instead of being raised.
const (
	ErrBackendError         ErrorCode = "BACKEND_ERROR"
	ErrBackendUnavailable   ErrorCode = "BACKEND_UNAVAILABLE"
	ErrUnsupportedOperation ErrorCode = "UNSUPPORTED_OPERATION"
	ErrNoUsableTokenizers   ErrorCode = "NO_USABLE_TOKENIZERS"
)

// Provider error codes. LLM enrichment only; degrade the report.
const (
	ErrProviderError   ErrorCode = "PROVIDER_ERROR"
	ErrProviderTimeout ErrorCode = "PROVIDER_TIMEOUT"
)

// Export error codes. Post-comparison; do not invalidate the report.
const (
	ErrExport ErrorCode = "EXPORT_ERROR"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Adapter   string    `json:"adapter,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithAdapter sets the adapter name.
func (e *Error) WithAdapter(adapter string) *Error {
	e.Adapter = adapter
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// IsFatal reports whether the code belongs to the fatal family:
// configuration errors and total tokenizer failure. Everything else is
// captured as data inside the report.
func IsFatal(code ErrorCode) bool {
	switch code {
	case ErrUnknownTokenizer, ErrMissingCredentials, ErrInvalidConfig, ErrNoUsableTokenizers:
		return true
	}
	return false
}
