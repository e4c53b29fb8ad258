package customsearch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// RetryConfig defines retry behavior for upstream search calls
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns the contract defaults: one initial attempt plus
// two retries with short exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  250 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

// retryableError marks a failure as worth another attempt: transport-level
// errors, HTTP 429, and 5xx. Upstream 4xx rejections are never wrapped.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

func retryable(err error) error {
	return &retryableError{err: err}
}

func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// withRetry executes fn with exponential backoff, retrying only failures
// marked retryable. The context cancels both in-flight waits and the loop.
func withRetry[T any](ctx context.Context, cfg RetryConfig, operation string, fn func() (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			if attempt > 1 {
				log.Info().
					Str("operation", operation).
					Int("attempt", attempt).
					Msg("operation succeeded after retry")
			}
			return result, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := calculateBackoff(attempt, cfg.InitialDelay, cfg.MaxDelay, cfg.BackoffFactor)

		log.Warn().
			Err(err).
			Str("operation", operation).
			Int("attempt", attempt).
			Int("max_attempts", cfg.MaxAttempts).
			Dur("retry_delay", delay).
			Msg("retrying operation after error")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("%s failed after %d attempts: %w", operation, cfg.MaxAttempts, lastErr)
}

// calculateBackoff computes exponential backoff delay with jitter
func calculateBackoff(attempt int, initial, max time.Duration, factor float64) time.Duration {
	backoff := float64(initial) * math.Pow(factor, float64(attempt-1))

	if backoff > float64(max) {
		backoff = float64(max)
	}

	// 10% jitter to avoid synchronized retries
	jitter := backoff * 0.1 * (2.0*float64(time.Now().UnixNano()%100)/100.0 - 1.0)

	return time.Duration(backoff + jitter)
}
