package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/voxqa/internal/core/domain"
	"github.com/custodia-labs/voxqa/internal/core/ports/driven"
)

// RateLimitConfig holds rate limiting configuration for a provider.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits are conservative per-provider defaults for cloud APIs.
// Local providers are not limited.
var DefaultRateLimits = map[domain.AIProvider]RateLimitConfig{
	domain.AIProviderOpenAI:    {RequestsPerSecond: 5.0, BurstSize: 10},
	domain.AIProviderGemini:    {RequestsPerSecond: 2.0, BurstSize: 5},
	domain.AIProviderAnthropic: {RequestsPerSecond: 1.0, BurstSize: 2},
}

// DefaultBackoff is used when a 429 carries no Retry-After.
const DefaultBackoff = 30 * time.Second

// RateLimiter paces provider calls with a token bucket and holds off
// every caller after a provider reports a rate limit.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		now:     time.Now,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff set by Record.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := retryAt.Sub(r.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// Record inspects a call's error and sets a backoff when it is a rate limit.
// The error is returned unchanged.
func (r *RateLimiter) Record(err error) error {
	var rl *domain.RateLimitError
	if !errors.As(err, &rl) {
		return err
	}

	backoff := rl.RetryAfter
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	r.mu.Lock()
	if at := r.now().Add(backoff); at.After(r.retryAt) {
		r.retryAt = at
	}
	r.mu.Unlock()
	return err
}

// RetryAt returns the end of the current backoff, zero when none was recorded.
func (r *RateLimiter) RetryAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt
}

// rateLimitedEmbedder paces an embedding service.
type rateLimitedEmbedder struct {
	driven.EmbeddingService
	limiter *RateLimiter
}

// WithEmbeddingRateLimit wraps svc so every call waits on limiter.
func WithEmbeddingRateLimit(svc driven.EmbeddingService, limiter *RateLimiter) driven.EmbeddingService {
	if svc == nil || limiter == nil {
		return svc
	}
	return &rateLimitedEmbedder{EmbeddingService: svc, limiter: limiter}
}

func (e *rateLimitedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	v, err := e.EmbeddingService.Embed(ctx, text)
	return v, e.limiter.Record(err)
}

func (e *rateLimitedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	v, err := e.EmbeddingService.EmbedBatch(ctx, texts)
	return v, e.limiter.Record(err)
}

// ProviderName forwards to the wrapped service so fingerprints are unchanged.
func (e *rateLimitedEmbedder) ProviderName() string {
	if named, ok := e.EmbeddingService.(driven.ProviderNamer); ok {
		return named.ProviderName()
	}
	return ""
}

// rateLimitedLLM paces a generation service.
type rateLimitedLLM struct {
	driven.LLMService
	limiter *RateLimiter
}

// WithLLMRateLimit wraps svc so every generation waits on limiter.
func WithLLMRateLimit(svc driven.LLMService, limiter *RateLimiter) driven.LLMService {
	if svc == nil || limiter == nil {
		return svc
	}
	return &rateLimitedLLM{LLMService: svc, limiter: limiter}
}

func (l *rateLimitedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := l.LLMService.Generate(ctx, prompt, opts)
	return out, l.limiter.Record(err)
}

// limiterFor returns the default limiter for provider, nil for unlimited providers.
func limiterFor(provider domain.AIProvider) *RateLimiter {
	cfg, ok := DefaultRateLimits[provider]
	if !ok {
		return nil
	}
	return NewRateLimiter(cfg)
}
