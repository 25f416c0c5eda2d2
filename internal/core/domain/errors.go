package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Domain errors represent pipeline failures callers can act on.
// Adapters wrap them with the underlying cause using fmt.Errorf("%w: ...: %w").
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates invalid chunking, retrieval or generation parameters,
	// or an embedding space that does not match the existing index.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnsupportedDocument indicates the document kind is not recognised.
	ErrUnsupportedDocument = errors.New("unsupported document")

	// ErrIndexNotReady indicates a query was made before anything was ingested.
	ErrIndexNotReady = errors.New("index not ready")

	// ErrNotReady indicates the answer chain has no retriever or generator bound.
	ErrNotReady = errors.New("pipeline not ready")

	// ErrEmbedding indicates the embedding provider call failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates the generation provider call failed.
	ErrGeneration = errors.New("generation failed")

	// ErrPersistence indicates the index could not be read from or written to storage.
	ErrPersistence = errors.New("persistence failed")

	// ErrTimeout indicates a provider call exceeded its deadline.
	ErrTimeout = errors.New("timed out")

	// ErrRateLimited indicates the provider rejected the call with a rate limit.
	ErrRateLimited = errors.New("rate limited")
)

// Error kinds reported in structured results.
const (
	KindConfiguration       = "configuration"
	KindUnsupportedDocument = "unsupported_document"
	KindIndexNotReady       = "index_not_ready"
	KindNotReady            = "not_ready"
	KindEmbedding           = "embedding"
	KindGeneration          = "generation"
	KindPersistence         = "persistence"
	KindTimeout             = "timeout"
	KindInvalidInput        = "invalid_input"
	KindInternal            = "internal"
)

// ErrorKind maps an error to its stable kind string.
// Timeouts win over the provider kind they were wrapped in.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsTimeout(err):
		return KindTimeout
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrUnsupportedDocument):
		return KindUnsupportedDocument
	case errors.Is(err, ErrIndexNotReady):
		return KindIndexNotReady
	case errors.Is(err, ErrNotReady):
		return KindNotReady
	case errors.Is(err, ErrEmbedding):
		return KindEmbedding
	case errors.Is(err, ErrGeneration):
		return KindGeneration
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	default:
		return KindInternal
	}
}

// ErrorResult is the structured form in which errors reach users.
type ErrorResult struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// NewErrorResult builds the structured result for err.
func NewErrorResult(err error) ErrorResult {
	if err == nil {
		return ErrorResult{}
	}
	return ErrorResult{Kind: ErrorKind(err), Message: err.Error()}
}

type timeoutError interface {
	Timeout() bool
}

// IsTimeout reports whether err is, or wraps, a deadline or network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te timeoutError
	return errors.As(err, &te) && te.Timeout()
}

// RateLimitError is returned by adapters when a provider answers with a rate
// limit. It matches ErrRateLimited and the provider error.
type RateLimitError struct {
	// RetryAfter is the wait the provider asked for; zero when it gave none.
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s): %v", ErrRateLimited, e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrRateLimited, e.Err)
}

func (e *RateLimitError) Unwrap() []error {
	return []error{ErrRateLimited, e.Err}
}
