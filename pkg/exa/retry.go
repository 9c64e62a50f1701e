package exa

import (
	"context"
	"time"
)

// RetryPolicy controls the poll loop of SubmitResearch. The delay starts at
// BaseDelay and is multiplied by Multiplier after each attempt, capped at
// MaxDelay, for at most MaxAttempts polls.
type RetryPolicy struct {
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	MaxAttempts int

	// Sleep waits between polls. Tests inject a recorder to avoid real
	// sleeps. Nil means the default context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy suits the background consumer, where a research task
// may legitimately run for several minutes.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:   2 * time.Second,
		Multiplier:  2.0,
		MaxDelay:    30 * time.Second,
		MaxAttempts: 40,
	}
}

// SyncRetryPolicy fits inside a short request window. The synchronous
// action variant is bounded by the caller's wall clock; a full research
// cycle belongs on the async path.
func SyncRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:   2 * time.Second,
		Multiplier:  2.0,
		MaxDelay:    8 * time.Second,
		MaxAttempts: 4,
	}
}

// DelayFor returns the backoff delay after poll attempt (0-based).
func (p RetryPolicy) DelayFor(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d = time.Duration(float64(d) * p.Multiplier)
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
