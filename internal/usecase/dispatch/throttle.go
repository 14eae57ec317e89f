package dispatch

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces gateway calls within a batch.
type Throttle interface {
	Wait(ctx context.Context) error
}

// NewThrottle allows one send immediately and then one per interval. A zero interval disables spacing.
func NewThrottle(interval time.Duration) Throttle {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}
