package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type netTimeout struct{}

func (netTimeout) Error() string { return "i/o timeout" }
func (netTimeout) Timeout() bool { return true }

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrUnsupportedDocument", ErrUnsupportedDocument},
		{"ErrIndexNotReady", ErrIndexNotReady},
		{"ErrNotReady", ErrNotReady},
		{"ErrEmbedding", ErrEmbedding},
		{"ErrGeneration", ErrGeneration},
		{"ErrPersistence", ErrPersistence},
		{"ErrTimeout", ErrTimeout},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrorKind(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, ""},
		{"configuration", fmt.Errorf("%w: k must be at least 1", ErrConfiguration), KindConfiguration},
		{"unsupported", fmt.Errorf("%w: .exe", ErrUnsupportedDocument), KindUnsupportedDocument},
		{"index not ready", ErrIndexNotReady, KindIndexNotReady},
		{"not ready", ErrNotReady, KindNotReady},
		{"embedding with cause", fmt.Errorf("%w: %w", ErrEmbedding, cause), KindEmbedding},
		{"generation with cause", fmt.Errorf("%w: %w", ErrGeneration, cause), KindGeneration},
		{"persistence", fmt.Errorf("%w: disk full", ErrPersistence), KindPersistence},
		{"embedding deadline", fmt.Errorf("%w: %w", ErrEmbedding, context.DeadlineExceeded), KindTimeout},
		{"generation net timeout", fmt.Errorf("%w: %w", ErrGeneration, netTimeout{}), KindTimeout},
		{"invalid input", ErrInvalidInput, KindInvalidInput},
		{"unknown", cause, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ErrorKind(tt.err))
		})
	}
}

func TestErrorKind_KeepsCause(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := fmt.Errorf("%w: %w", ErrGeneration, cause)

	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, cause)
}

func TestNewErrorResult(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Equal(t, ErrorResult{}, NewErrorResult(nil))
	})

	t.Run("wrapped error", func(t *testing.T) {
		err := fmt.Errorf("%w: nothing ingested yet", ErrIndexNotReady)
		result := NewErrorResult(err)
		assert.Equal(t, KindIndexNotReady, result.Kind)
		assert.Equal(t, "index not ready: nothing ingested yet", result.Message)
	})
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, IsTimeout(nil))
	assert.False(t, IsTimeout(errors.New("boom")))
	assert.True(t, IsTimeout(ErrTimeout))
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.True(t, IsTimeout(fmt.Errorf("wrapped: %w", netTimeout{})))
	assert.False(t, IsTimeout(context.Canceled))
}

func TestRateLimitError(t *testing.T) {
	cause := errors.New("429 Too Many Requests")
	err := fmt.Errorf("%w: embedding chunks: %w", ErrEmbedding, &RateLimitError{RetryAfter: 2 * time.Second, Err: cause})

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindEmbedding, ErrorKind(err))
	assert.Contains(t, err.Error(), "retry after 2s")

	var rl *RateLimitError
	assert.ErrorAs(t, err, &rl)
	assert.Equal(t, 2*time.Second, rl.RetryAfter)

	assert.Equal(t, "rate limited: "+cause.Error(), (&RateLimitError{Err: cause}).Error())
}
