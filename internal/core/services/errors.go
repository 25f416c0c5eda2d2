package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

// providerError wraps a failed provider call in kind, adding domain.ErrTimeout
// when the call or its context ran out of time. The cause stays attached.
func providerError(ctx context.Context, kind error, op string, err error) error {
	if domain.IsTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %s: %w", kind, domain.ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}

// withTimeout derives a context bounded by d. A non-positive d only adds cancellation.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
