// Package retry runs fallible operations with exponential backoff.
package retry

import (
	"context"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy configures Do. The zero value uses the defaults.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Sleep replaces the real timer, mainly for tests
	Sleep SleepFunc
}

// DefaultPolicy returns 3 attempts with 1s, 2s waits
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// Delay returns the wait after failed attempt i (0-indexed): BaseDelay * 2^i
func (p Policy) Delay(attempt int) time.Duration {
	return p.baseDelay() << attempt
}

func (p Policy) maxAttempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

func (p Policy) baseDelay() time.Duration {
	if p.BaseDelay <= 0 {
		return DefaultBaseDelay
	}
	return p.BaseDelay
}

func (p Policy) sleep() SleepFunc {
	if p.Sleep != nil {
		return p.Sleep
	}
	return sleepContext
}

// Do calls op until it succeeds or the attempt budget is spent.
// The last error is returned as-is; nothing is logged here.
// If ctx is cancelled while waiting, ctx.Err() is returned.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.maxAttempts()
	sleep := p.sleep()

	var zero T
	for i := 0; ; i++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if i == attempts-1 {
			return zero, err
		}
		if sleepErr := sleep(ctx, p.Delay(i)); sleepErr != nil {
			return zero, sleepErr
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
