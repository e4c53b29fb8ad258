package customsearch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestWithRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), fastRetryConfig(), "op", func() (*string, error) {
		calls++
		value := "ok"
		return &value, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", *result)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRecoversFromRetryableError(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), fastRetryConfig(), "op", func() (*string, error) {
		calls++
		if calls < 3 {
			return nil, retryable(errors.New("transient"))
		}
		value := "eventually"
		return &value, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "eventually", *result)
	assert.Equal(t, 3, calls)
}

func TestWithRetryStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	terminal := errors.New("bad request")
	_, err := withRetry(context.Background(), fastRetryConfig(), "op", func() (*string, error) {
		calls++
		return nil, terminal
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, terminal)
}

func TestWithRetryExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), fastRetryConfig(), "op", func() (*string, error) {
		calls++
		return nil, retryable(errors.New("still down"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, isRetryable(err), "retryable marker survives the exhaustion wrap")
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:   5,
		InitialDelay:  time.Second,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := withRetry(ctx, cfg, "op", func() (*string, error) {
		calls++
		return nil, retryable(errors.New("down"))
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestCalculateBackoffBounds(t *testing.T) {
	initial := 100 * time.Millisecond
	max := time.Second

	for attempt := 1; attempt <= 10; attempt++ {
		delay := calculateBackoff(attempt, initial, max, 2.0)
		assert.GreaterOrEqual(t, delay, time.Duration(0))
		// 10% jitter can push slightly above the cap but never past 110%.
		assert.LessOrEqual(t, delay, max+max/10)
	}
}

func TestCalculateBackoffGrows(t *testing.T) {
	initial := 100 * time.Millisecond
	max := time.Minute

	first := calculateBackoff(1, initial, max, 2.0)
	third := calculateBackoff(3, initial, max, 2.0)
	assert.Greater(t, third, first)
}

func TestRetryableClassification(t *testing.T) {
	plain := errors.New("plain")
	assert.False(t, isRetryable(plain))
	assert.True(t, isRetryable(retryable(plain)))
	assert.ErrorIs(t, retryable(plain), plain)
}
