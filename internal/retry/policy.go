// Package retry holds the bounded retry policies used by acquisition and
// analysis. Broadcast downloads wait a fixed delay between attempts while
// online extraction backs off exponentially, so both are values of the same
// Policy type rather than loops written in place.
package retry

import (
	"context"
	"errors"
	"time"
)

// Backoff selects how the delay grows between attempts.
type Backoff int

const (
	// Fixed waits Delay between every attempt.
	Fixed Backoff = iota
	// Exponential waits Delay * 2^(attempt-1) after the given attempt.
	Exponential
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the default Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
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

// Policy is a bounded retry schedule.
type Policy struct {
	Attempts int
	Delay    time.Duration
	Backoff  Backoff
	Sleep    Sleeper
}

// NewFixed returns a policy with a constant inter-attempt delay.
func NewFixed(attempts int, delay time.Duration) Policy {
	return Policy{Attempts: attempts, Delay: delay, Backoff: Fixed}
}

// NewExponential returns a policy whose delay doubles after every attempt.
func NewExponential(attempts int, base time.Duration) Policy {
	return Policy{Attempts: attempts, Delay: base, Backoff: Exponential}
}

// WithSleeper returns a copy of p that waits with s.
func (p Policy) WithSleeper(s Sleeper) Policy {
	p.Sleep = s
	return p
}

// DelayAfter is the wait following the given 1-based attempt.
func (p Policy) DelayAfter(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if p.Backoff == Exponential {
		return p.Delay * time.Duration(1<<uint(attempt-1))
	}
	return p.Delay
}

// MaxAttempts is Attempts, never less than one.
func (p Policy) MaxAttempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

// permanent marks an error that must not be retried.
type permanent struct{ err error }

func (p *permanent) Error() string { return p.err.Error() }
func (p *permanent) Unwrap() error { return p.err }

// Permanent wraps err so Do stops immediately and returns err.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanent{err: err}
}

// Hook is called after a failed attempt, before the wait.
type Hook func(attempt int, err error, wait time.Duration)

// Do runs fn up to MaxAttempts times. fn receives the 1-based attempt number.
// It returns nil on the first success, the unwrapped error of a Permanent
// failure, or the last error once attempts are exhausted.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error, onRetry Hook) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = ContextSleep
	}
	attempts := p.MaxAttempts()

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx, attempt)
		if err == nil {
			return nil
		}
		var perm *permanent
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == attempts {
			break
		}
		wait := p.DelayAfter(attempt)
		if onRetry != nil {
			onRetry(attempt, err, wait)
		}
		if serr := sleep(ctx, wait); serr != nil {
			return err
		}
	}
	return err
}
