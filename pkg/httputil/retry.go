// Package httputil provides shared HTTP plumbing for the external service
// clients: retry policies and retryable error classification.
package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses) with this type
// so that [Policy.Do] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps an error as a RetryableError. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Policy describes how an operation is retried. The zero value performs a
// single attempt. Policies are plain values and safe to share.
type Policy struct {
	Attempts int           // total attempts, including the first
	Delay    time.Duration // delay before the first retry
	Backoff  float64       // delay multiplier between retries; <=1 keeps it fixed
}

// FixedPolicy returns a policy with a constant inter-attempt delay.
func FixedPolicy(attempts int, delay time.Duration) Policy {
	return Policy{Attempts: attempts, Delay: delay, Backoff: 1}
}

// ExponentialPolicy returns a policy whose delay doubles after each attempt.
func ExponentialPolicy(attempts int, delay time.Duration) Policy {
	return Policy{Attempts: attempts, Delay: delay, Backoff: 2}
}

// Do executes fn according to the policy. Only errors wrapped with
// [RetryableError] are retried; other errors are returned immediately.
// Returns the last error if all attempts fail, or ctx.Err() if cancelled
// while waiting between attempts.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				if p.Backoff > 1 {
					delay = time.Duration(float64(delay) * p.Backoff)
				}
			}
		}
	}
	return lastErr
}
