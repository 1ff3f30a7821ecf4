package errors

import (
	"fmt"
	"time"
)

/*
RpcError represents a JSON-RPC error response.
*/
type RpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

/*
Error implements the error interface for RpcError.
*/
func (e *RpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Convenience errors (JSON-RPC reserved codes -32700 .. -32603)
// Application specific codes should use other ranges.
var (
	ErrParseError     = &RpcError{Code: -32700, Message: "Parse error"}
	ErrInvalidRequest = &RpcError{Code: -32600, Message: "Invalid Request"}
	ErrMethodNotFound = &RpcError{Code: -32601, Message: "Method not found"}
	ErrInvalidParams  = &RpcError{Code: -32602, Message: "Invalid params"}
	ErrInternal       = &RpcError{Code: -32603, Message: "Internal error"}

	// A2A private block (-32001 .. -32007). The numeric values are an
	// interoperability contract shared with the other A2A implementations,
	// so they must never be renumbered.
	ErrAgentNotFound          = &RpcError{Code: -32001, Message: "Agent not found"}
	ErrCapabilityNotSupported = &RpcError{Code: -32002, Message: "Capability not supported"}
	ErrAgentBusy              = &RpcError{Code: -32003, Message: "Agent busy"}
	ErrAgentUnavailable       = &RpcError{Code: -32004, Message: "Agent unavailable"}
	ErrAuthenticationFailed   = &RpcError{Code: -32005, Message: "Authentication failed"}
	ErrQuotaExceeded          = &RpcError{Code: -32006, Message: "Quota exceeded"}
	ErrExecutionTimeout       = &RpcError{Code: -32007, Message: "Execution timeout"}
)

// WithMessagef creates a *copy* of an RpcError with a formatted message.
// It does not modify the original error variable.
func (e *RpcError) WithMessagef(format string, args ...any) *RpcError {
	newErr := *e
	newErr.Message = fmt.Sprintf(format, args...)
	return &newErr
}

// WithData creates a *copy* of an RpcError carrying additional data.
func (e *RpcError) WithData(data any) *RpcError {
	newErr := *e
	newErr.Data = data
	return &newErr
}

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the retry configuration used by the A2A client:
// three attempts with exponential backoff capped at ten seconds, no jitter.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Delay returns the backoff delay to apply after the given attempt.
// Attempts are counted from one.
func (config *RetryConfig) Delay(attempt int) time.Duration {
	delay := config.InitialDelay

	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * config.BackoffFactor)
		if delay >= config.MaxDelay {
			return config.MaxDelay
		}
	}

	return delay
}
