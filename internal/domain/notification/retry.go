package notification

import (
	"fmt"
	"time"
)

type Backoff string

const (
	BackoffFixed       Backoff = "fixed"
	BackoffLinear      Backoff = "linear"
	BackoffExponential Backoff = "exponential"
)

const (
	DefaultMaxAttempts = 5
	DefaultRetryDelay  = 300 * time.Second
	maxRetryDelay      = 24 * time.Hour
)

// RetryPolicy bounds how a failed batch is re-invoked. MaxAttempts counts the first attempt.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     Backoff
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultRetryDelay, Backoff: BackoffFixed}
}

func NewRetryPolicy(maxAttempts int, delay time.Duration, backoff string) (RetryPolicy, error) {
	if maxAttempts < 1 {
		return RetryPolicy{}, fmt.Errorf("max attempts must be at least 1, got %d", maxAttempts)
	}
	if delay < 0 {
		return RetryPolicy{}, fmt.Errorf("retry delay must not be negative, got %s", delay)
	}
	b := Backoff(backoff)
	switch b {
	case BackoffFixed, BackoffLinear, BackoffExponential:
	case "":
		b = BackoffFixed
	default:
		return RetryPolicy{}, fmt.Errorf("unknown backoff %q", backoff)
	}
	return RetryPolicy{MaxAttempts: maxAttempts, Delay: delay, Backoff: b}, nil
}

// DelayFor is the wait after failed attempt n (1-based) before attempt n+1.
func (p RetryPolicy) DelayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	var d time.Duration
	switch p.Backoff {
	case BackoffLinear:
		d = p.Delay * time.Duration(attempt)
	case BackoffExponential:
		d = p.Delay
		for i := 1; i < attempt && d < maxRetryDelay; i++ {
			d *= 2
		}
	default:
		d = p.Delay
	}
	return min(d, maxRetryDelay)
}

// Allows reports whether attempt n may run at all.
func (p RetryPolicy) Allows(attempt int) bool {
	return attempt >= 1 && attempt <= p.MaxAttempts
}

// RetryState lives for one invocation chain and is dropped on success or exhaustion.
type RetryState struct {
	Attempt     int
	MaxAttempts int
	NextDelay   time.Duration
}

func (p RetryPolicy) Start() RetryState {
	return RetryState{Attempt: 1, MaxAttempts: p.MaxAttempts, NextDelay: p.DelayFor(1)}
}

// Next returns the state for the following attempt, or false once the chain is exhausted.
func (p RetryPolicy) Next(s RetryState) (RetryState, bool) {
	next := s.Attempt + 1
	if !p.Allows(next) {
		return s, false
	}
	return RetryState{Attempt: next, MaxAttempts: p.MaxAttempts, NextDelay: p.DelayFor(next)}, true
}

func (s RetryState) Exhausted() bool {
	return s.Attempt >= s.MaxAttempts
}
