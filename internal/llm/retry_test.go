package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_SucceedsAfterFailures(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(attempt int) error {
		calls++
		assert.Equal(t, calls, attempt)
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_ReturnsLastError(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3}

	calls := 0
	err := policy.Do(context.Background(), func(attempt int) error {
		calls++
		return errors.New("attempt failed")
	})

	assert.EqualError(t, err, "attempt failed")
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_Backoff(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, InitialDelay: 20 * time.Millisecond}

	start := time.Now()
	_ = policy.Do(context.Background(), func(int) error { return errors.New("x") })

	// 20ms + 40ms between three attempts
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestRetryPolicy_StopsOnCancel(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, InitialDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := policy.Do(ctx, func(int) error {
		calls++
		return errors.New("x")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_AtLeastOneAttempt(t *testing.T) {
	calls := 0
	_ = RetryPolicy{}.Do(context.Background(), func(int) error {
		calls++
		return nil
	})
	assert.Equal(t, 1, calls)
}
