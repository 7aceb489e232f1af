package bank

import (
	"context"
	"log/slog"
	"time"

	"taglift/internal/logging"
)

// Policy controls how bank requests are retried. The defaults mirror the
// service's observed behavior: one short retry rescues flaky 5xx and timeout
// responses, anything beyond that just burns the politeness budget.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Retryable   func(error) bool
}

// DefaultPolicy returns the retry policy used for all bank calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 2,
		BaseDelay:   2 * time.Second,
		MaxDelay:    15 * time.Second,
		Retryable:   isServiceFailure,
	}
}

// Do runs fn under the policy, sleeping with exponential backoff between
// attempts. It returns the last error when every attempt fails.
func (p Policy) Do(ctx context.Context, logger *slog.Logger, op string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) || attempt == attempts {
			return err
		}

		delay := p.backoff(attempt)
		if logger != nil {
			logger.Warn("retrying bank request",
				logging.String("operation", op),
				logging.Int("attempt", attempt),
				logging.Duration("delay", delay),
				logging.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

func (p Policy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}
