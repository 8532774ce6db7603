package llm

import (
	"context"
	"math/rand"
	"time"
)

// RetryPolicy parameterizes the retry-with-backoff loop wrapped around every
// provider call: attempt ceiling plus the backoff curve. Randomized jitter is
// added to each wait so concurrent jobs do not retry in lockstep.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	MaxJitter time.Duration
}

// DefaultRetryPolicy matches the production policy: 6 total attempts,
// exponential growth from 1s capped at 60s, up to 1s of jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts:  6,
		BaseDelay: time.Second,
		MaxDelay:  60 * time.Second,
		MaxJitter: time.Second,
	}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt-1)
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	if p.MaxJitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.MaxJitter)))
	}
	return d
}

// WithRetry invokes call until it succeeds or the attempt ceiling is reached,
// sleeping with exponential backoff and jitter between attempts. The final
// error propagates to the caller on exhaustion; a cancelled context ends the
// loop early with the context's error.
func WithRetry(ctx context.Context, policy RetryPolicy, call func() (string, error)) (string, error) {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = DefaultRetryPolicy().Attempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := call()
		if err == nil {
			return text, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(policy.delay(attempt)):
		}
	}
	return "", lastErr
}
