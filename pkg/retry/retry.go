// Package retry wraps fallible operations with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/newspulse/pkg/logger"
)

// ErrExhausted marks failures where every allowed attempt was used up.
// The underlying error is wrapped alongside it.
var ErrExhausted = errors.New("retries exhausted")

// Policy configures retry behavior for one call.
type Policy struct {
	// MaxRetries is the number of backoff retries after the initial attempt
	// (and after the immediate retry, when enabled).
	MaxRetries int

	// InitialDelay is the first backoff delay.
	InitialDelay time.Duration

	// Multiplier grows the delay per backoff attempt.
	Multiplier float64

	// MaxDelay caps the computed backoff delay.
	MaxDelay time.Duration

	// ImmediateFirst retries once with zero delay before backoff starts.
	// The immediate retry does not advance the backoff exponent.
	ImmediateFirst bool

	// Retryable decides whether an error is worth another attempt.
	// A nil predicate retries everything.
	Retryable func(error) bool
}

// DefaultPolicy returns the policy used for outbound HTTP calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     3,
		InitialDelay:   1 * time.Second,
		Multiplier:     2.0,
		MaxDelay:       30 * time.Second,
		ImmediateFirst: true,
	}
}

// Do runs op under the policy. It returns the operation result on first
// success, the underlying error immediately when the predicate rejects it,
// and ErrExhausted wrapping the last error once attempts run out.
func Do[T any](ctx context.Context, p Policy, label string, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = func(error) bool { return true }
	}

	totalAttempts := 1 + p.MaxRetries
	if p.ImmediateFirst {
		totalAttempts++
	}

	var lastErr error
	backoffIdx := 0

	for attempt := 0; attempt < totalAttempts; attempt++ {
		if attempt > 0 {
			var delay time.Duration
			if p.ImmediateFirst && attempt == 1 {
				delay = 0
			} else {
				delay = backoffDelay(p, backoffIdx)
				backoffIdx++
			}

			logger.Debug("retrying operation",
				zap.String("op", label),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", totalAttempts),
				zap.Duration("delay", delay),
			)

			if delay > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					return zero, fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
				}
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(err) {
			logger.Warn("non-retryable error, aborting",
				zap.String("op", label),
				zap.Error(err),
			)
			return zero, err
		}

		logger.Warn("retryable error encountered",
			zap.String("op", label),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return zero, fmt.Errorf("%s: %w after %d attempts: %w", label, ErrExhausted, totalAttempts, lastErr)
}

// backoffDelay computes the delay for the n-th backoff retry (0-based).
func backoffDelay(p Policy, n int) time.Duration {
	delay := time.Duration(float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(n)))
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}
