package usecase

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"car-rental/internal/errs"

	"go.uber.org/zap"
)

const (
	defaultMaxAttempts  = 4
	defaultBaseDelay    = 20 * time.Millisecond
	defaultJitterFactor = 0.3
)

var (
	ErrInvalidMaxAttempts  = errors.New("max attempts must be positive")
	ErrNegativeBaseDelay   = errors.New("base delay must not be negative")
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

type retryConfig struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
	log          *zap.Logger
	operation    string
}

// RetryOption configures retry behavior using the functional options pattern.
type RetryOption func(*retryConfig) error

// retryOnConflict runs fn until it succeeds, fails with a non-retryable
// error or the attempts run out. Only ErrConcurrencyConflict (deadlocks and
// serialization failures) is retried.
//
// Retry schedule (default): 0, 20, 40, 80 ms plus up to 30% jitter.
func retryOnConflict(ctx context.Context, fn func(ctx context.Context) error, options ...RetryOption) error {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
		log:          zap.NewNop(),
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return err
		}
	}

	var lastErr error

	for attempt := 0; attempt < config.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := config.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec // jitter only
			backoff := delay + time.Duration(jitter)

			config.log.Debug("Retrying after concurrency conflict",
				zap.String("operation", config.operation),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)

			timer := time.NewTimer(backoff)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, errs.ErrConcurrencyConflict) {
			return lastErr
		}
	}

	config.log.Warn("Giving up after concurrency conflicts",
		zap.String("operation", config.operation),
		zap.Int("attempts", config.maxAttempts),
		zap.Error(lastErr),
	)

	return lastErr
}

func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		config.maxAttempts = attempts
		return nil
	}
}

// WithBaseDelay sets the first backoff; later ones double it.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}
		config.baseDelay = delay
		return nil
	}
}

func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}
		config.jitterFactor = factor
		return nil
	}
}

// WithRetryLogger logs retries and exhaustion under the given operation name.
func WithRetryLogger(log *zap.Logger, operation string) RetryOption {
	return func(config *retryConfig) error {
		if log != nil {
			config.log = log
		}
		config.operation = operation
		return nil
	}
}
