// Package retry provides the single retry policy used across the pipeline.
// Orchestrator steps and notification channels share this abstraction instead
// of carrying their own ad-hoc loops.
package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	apperrors "nomadly/internal/shared/errors"
)

// Policy describes bounded retries with exponential backoff. Retryable
// decides whether an error is worth another attempt; errors it rejects are
// returned to the caller immediately.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Retryable      func(error) bool
}

// ExternalCalls is the default policy for registrar/DNS/gateway calls:
// only external dependency failures are retried, validation errors never.
func ExternalCalls() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Retryable:      apperrors.IsExternalDependencyError,
	}
}

// Notifications is the default policy for notification channel delivery,
// where any transient failure is retried.
func Notifications() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
		Retryable:      func(err error) bool { return err != nil },
	}
}

// Do runs fn under the policy. The last error is returned once attempts are
// exhausted; a nil return means some attempt succeeded.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := retry.NewExponential(p.InitialBackoff)
	if p.MaxBackoff > 0 {
		backoff = retry.WithCappedDuration(p.MaxBackoff, backoff)
	}
	backoff = retry.WithMaxRetries(uint64(attempts-1), backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && p.Retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
