// Package apierror turns provider HTTP failures into errors the core can classify.
package apierror

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/voxqa/internal/core/domain"
)

// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
const HeaderRetryAfter = "Retry-After"

// maxBodyBytes caps how much of an error body is quoted in the message.
const maxBodyBytes = 512

// FromResponse builds an error for a non-2xx response.
// A 429 becomes a *domain.RateLimitError carrying the provider's Retry-After.
// The body is read but not closed.
func FromResponse(provider string, resp *http.Response) error {
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	msg := strings.TrimSpace(string(body))
	if readErr != nil {
		msg = "failed to read response"
	}

	err := fmt.Errorf("%s: API returned status %d: %s", provider, resp.StatusCode, msg)
	if resp.StatusCode == http.StatusTooManyRequests {
		return &domain.RateLimitError{
			RetryAfter: ParseRetryAfter(resp.Header.Get(HeaderRetryAfter), time.Now()),
			Err:        err,
		}
	}
	return err
}

// ParseRetryAfter reads a Retry-After value as delta seconds or an HTTP date.
// Unparseable or past values yield zero.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// FromStatus marks err as a rate limit when status is 429.
// SDK clients that surface only the status code use it.
func FromStatus(status int, err error) error {
	if err == nil || status != http.StatusTooManyRequests {
		return err
	}
	return &domain.RateLimitError{Err: err}
}
