package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is an explicit, injectable retry discipline: exponential backoff
// with jitter, bounded by a maximum attempt count, gated by a retryable
// predicate. Attempt n waits base * 2^(n-1) * (1 +/- jitter) before running.
type Policy struct {
	// MaxAttempts bounds total attempts, including the first one.
	MaxAttempts int
	// BaseDelay is the backoff base for the first retry.
	BaseDelay time.Duration
	// Jitter is the randomization factor (0.2 means +/-20%).
	Jitter float64
	// Retryable decides whether a failure deserves another attempt.
	Retryable func(error) bool
}

// Notify observes each scheduled retry: the error that triggered it and the
// delay before the next attempt.
type Notify func(err error, delay time.Duration)

// Do runs op under the policy. The last error is returned once attempts are
// exhausted or a non-retryable failure occurs.
func (p Policy) Do(ctx context.Context, op func() error, notify Notify) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = p.Jitter
	b.MaxInterval = time.Minute
	b.MaxElapsedTime = 0

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var n Notify = notify
	if n == nil {
		n = func(error, time.Duration) {}
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
	return backoff.RetryNotify(wrapped, bo, backoff.Notify(n))
}
