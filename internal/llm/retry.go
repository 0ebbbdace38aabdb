package llm

import (
	"context"
	"time"
)

// RetryPolicy retries a call with exponential backoff
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultRetryPolicy makes 3 attempts, waiting 1s then 2s
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, InitialDelay: time.Second}

func (r RetryPolicy) attempts() int {
	if r.MaxAttempts < 1 {
		return 1
	}
	return r.MaxAttempts
}

// Do calls fn until it succeeds or the attempts are used up, doubling the
// wait after each failure. It stops early when ctx is done.
func (r RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) error {
	var err error
	delay := r.InitialDelay
	limit := r.attempts()

	for attempt := 1; attempt <= limit; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt == limit {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return err
}
