package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/loykin/sqlrun/internal/common"
)

// Unlimited makes WithRetry keep trying until the context ends.
const Unlimited = -1

// Config holds the backoff schedule used while waiting for a database to accept connections.
type Config struct {
	MaxRetries    int           // Maximum number of retry attempts, or Unlimited
	InitialDelay  time.Duration // Initial delay before first retry
	MaxDelay      time.Duration // Maximum delay between retries
	BackoffFactor float64       // Multiplier for exponential backoff
}

// isRetryableError reports whether err is worth another attempt. Context
// cancellation never is.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// calculateDelay calculates the delay for a given retry attempt using exponential backoff
func (rc *Config) calculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return rc.InitialDelay
	}

	delay := time.Duration(float64(rc.InitialDelay) * math.Pow(rc.BackoffFactor, float64(attempt-1)))
	if delay > rc.MaxDelay {
		delay = rc.MaxDelay
	}
	return delay
}

// RetryableOperation represents an operation that can be retried
type RetryableOperation func() error

// WithRetry executes operation until it succeeds or gives up. It gives up
// on a context error, after MaxRetries extra attempts, or when ctx is done.
func WithRetry(ctx context.Context, config *Config, operation RetryableOperation) error {
	logger := common.GetLogger().WithComponent("retry")

	var lastErr error
	for attempt := 0; config.MaxRetries == Unlimited || attempt <= config.MaxRetries; attempt++ {
		err := operation()
		if err == nil {
			if attempt > 0 {
				logger.Info("operation succeeded after retry", "attempt", attempt+1)
			}
			return nil
		}

		lastErr = err

		if attempt == config.MaxRetries {
			break
		}

		if !isRetryableError(err) {
			logger.Debug("operation failed with non-retryable error",
				"error", err,
				"attempt", attempt+1)
			return err
		}

		delay := config.calculateDelay(attempt)
		logger.Warn("operation failed, retrying",
			"error", err,
			"attempt", attempt+1,
			"retry_delay", delay)

		select {
		case <-ctx.Done():
			return fmt.Errorf("operation cancelled during retry: %w (last error: %v)", ctx.Err(), lastErr)
		case <-time.After(delay):
		}
	}

	logger.Error("operation failed after all retry attempts",
		"error", lastErr,
		"attempts", config.MaxRetries+1)

	return fmt.Errorf("operation failed after %d attempts: %w", config.MaxRetries+1, lastErr)
}

// Wait polls check with exponential backoff starting at interval until it
// succeeds or timeout elapses. Any error is treated as "not ready yet".
func Wait(ctx context.Context, timeout, interval time.Duration, check func(context.Context) error) error {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	config := &Config{
		MaxRetries:    Unlimited,
		InitialDelay:  interval,
		MaxDelay:      8 * interval,
		BackoffFactor: 2.0,
	}

	var lastErr error
	err := WithRetry(waitCtx, config, func() error {
		if err := check(waitCtx); err != nil {
			if waitCtx.Err() == nil {
				lastErr = err
			}
			return err
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("wait cancelled: %w", ctx.Err())
	}
	if lastErr != nil && waitCtx.Err() != nil {
		return fmt.Errorf("not ready after %s: %w", timeout, lastErr)
	}
	return err
}
