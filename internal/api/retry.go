package api

import (
	"context"
	"time"
)

// RetryPolicy retries an operation a bounded number of times with a
// fixed delay between attempts. Attempts are strictly sequential; the
// policy never launches concurrent tries.
type RetryPolicy struct {
	MaxAttempts int           // total attempts including the first
	Delay       time.Duration // pause between attempts
}

// DefaultRetryPolicy suits idempotent GETs issued right after login,
// when the session cookie may not be visible to the client yet.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Delay: 200 * time.Millisecond}

// Do runs op until it succeeds or attempts are exhausted. The last
// error is returned. Context cancellation stops the loop between
// attempts.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 && p.Delay > 0 {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if lastErr = op(ctx); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
