package notify

import (
	"context"
	"time"
)

// DeliveryRetry bounds redelivery of a notification the downstream channel
// rejected. Delays grow by Factor per attempt and never exceed Cap.
type DeliveryRetry struct {
	Attempts  int
	BaseDelay time.Duration
	Cap       time.Duration
	Factor    float64
}

// attempts normalizes the attempt budget; a zero value still delivers once.
func (r DeliveryRetry) attempts() int {
	if r.Attempts < 1 {
		return 1
	}
	return r.Attempts
}

// delay is the pause before re-attempting delivery, attempt counted from 1.
func (r DeliveryRetry) delay(attempt int) time.Duration {
	base := r.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	factor := r.Factor
	if factor <= 0 {
		factor = 2
	}

	d := base
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * factor)
		if r.Cap > 0 && d >= r.Cap {
			return r.Cap
		}
	}
	return d
}

// wait sleeps out the backoff for the attempt, aborting when ctx ends.
func (r DeliveryRetry) wait(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.delay(attempt)):
		return nil
	}
}
