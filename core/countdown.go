package core

import (
	"context"
	"time"
)

// Countdown is the thin scheduling wrapper around TimeUntil: it invokes
// the callback with a fresh breakdown on a fixed period until the
// reservation instant passes or the context is cancelled. The countdown
// math itself stays in TimeUntil so it can be tested without a ticker.
type Countdown struct {
	res      Reservation
	interval time.Duration
	clock    Clock
	done     chan struct{}
}

// NewCountdown builds a countdown for the reservation. A zero interval
// defaults to one second, the display refresh rate.
func NewCountdown(res Reservation, interval time.Duration, clock Clock) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Countdown{
		res:      res,
		interval: interval,
		clock:    clock,
		done:     make(chan struct{}),
	}
}

// Start runs the countdown until the target passes, Stop is called, or
// ctx is cancelled. The callback receives one immediate tick and then
// one per interval. Start blocks; run it on its own goroutine when the
// caller has other work.
func (c *Countdown) Start(ctx context.Context, tick func(TimeParts)) error {
	parts, err := TimeUntil(c.res, c.clock())
	if err != nil {
		return err
	}
	tick(parts)
	if parts.Total <= 0 {
		return nil
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case <-ticker.C:
			parts, err := TimeUntil(c.res, c.clock())
			if err != nil {
				return err
			}
			tick(parts)
			if parts.Total <= 0 {
				return nil
			}
		}
	}
}

// Stop ends the countdown. Safe to call once.
func (c *Countdown) Stop() {
	close(c.done)
}
