// Package retry re-executes remote store calls that fail transiently.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
)

// Policy bounds how often and how slowly a call is retried.
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy is used when a zero Policy is passed.
var DefaultPolicy = Policy{
	MaxAttempts:     3,
	InitialInterval: 200 * time.Millisecond,
	MaxInterval:     2 * time.Second,
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err so Do returns it without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// timeouts, refused or reset connections and unknown store errors are transient
	return true
}

func (p Policy) normalize() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultPolicy.InitialInterval
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = p.InitialInterval
	}
	return p
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = 2
	exp.RandomizationFactor = 0.2
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1)), ctx)
}

// Do runs fn until it succeeds, returns a non-retryable error, or the policy's
// attempts are used up. The last error is returned unwrapped.
func Do[T any](ctx context.Context, policy Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	policy = policy.normalize()

	var result T
	op := func() error {
		v, err := fn(ctx)
		if err != nil {
			if !IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = v
		return nil
	}

	err := backoff.Retry(op, policy.backOff(ctx))
	if err != nil {
		var perm *permanentError
		if errors.As(err, &perm) {
			err = perm.err
		}
		var zero T
		return zero, err
	}
	return result, nil
}
