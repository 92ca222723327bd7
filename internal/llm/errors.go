// Package llm provides the generative text backend used to render plans and
// synthesize follow-up questions. Every caller must tolerate failure: the
// intake engine always has a deterministic fallback.
package llm

import "errors"

var (
	// ErrDisabled indicates the backend is switched off by configuration.
	ErrDisabled = errors.New("llm backend disabled")

	// ErrBackendUnavailable indicates the backend server is unreachable.
	ErrBackendUnavailable = errors.New("llm backend unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)
