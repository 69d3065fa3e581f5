// Package retry holds the retry/backoff policy applied to page fetches.
package retry

import (
	"context"
	"fmt"
	"time"
)

// BackoffMode selects how the delay grows between retries
type BackoffMode string

const (
	BackoffFixed       BackoffMode = "fixed"
	BackoffLinear      BackoffMode = "linear"
	BackoffExponential BackoffMode = "exponential"
)

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Mode       BackoffMode   // fixed|linear|exponential
	Initial    time.Duration // base delay, zero retries immediately
	Max        time.Duration // cap for growth
	MaxRetries int           // maximum retry attempts after the first failure
}

// DefaultPolicy returns the two-try policy: one immediate retry, no backoff.
func DefaultPolicy() Policy {
	return Policy{Mode: BackoffFixed, Initial: 0, Max: 0, MaxRetries: 1}
}

// NewPolicy builds a policy from raw config fields; invalid values fall back to defaults.
func NewPolicy(mode BackoffMode, initial, maxDuration time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	switch mode {
	case BackoffFixed, BackoffLinear, BackoffExponential:
		p.Mode = mode
	default:
		// unknown or empty -> keep default
	}
	if p.Max > 0 && p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the backoff delay for the given retry attempt number (1-based: first retry => 1).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 || p.Initial <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case BackoffExponential:
		d = p.Initial * (1 << (retryCount - 1))
	case BackoffLinear:
		d = time.Duration(retryCount) * p.Initial
	default:
		d = p.Initial
	}
	if p.Max > 0 && d > p.Max {
		return p.Max
	}
	return d
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.Initial < 0 {
		return fmt.Errorf("initial cannot be negative")
	}
	if p.Max < 0 {
		return fmt.Errorf("max cannot be negative")
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	return nil
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do calls fn until it succeeds or the policy is exhausted, returning the last error.
// attempt is 1-based.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	return p.DoWithSleeper(ctx, SleepContext, fn)
}

// DoWithSleeper is Do with an explicit Sleeper
func (p Policy) DoWithSleeper(ctx context.Context, sleep Sleeper, fn func(attempt int) error) error {
	var err error
	for attempt := 1; attempt <= p.MaxRetries+1; attempt++ {
		if attempt > 1 {
			if serr := sleep(ctx, p.Delay(attempt-1)); serr != nil {
				return fmt.Errorf("retry interrupted: %w (last error: %v)", serr, err)
			}
		}
		if err = fn(attempt); err == nil {
			return nil
		}
	}
	return err
}
