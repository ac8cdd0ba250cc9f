// Package throttle bounds how many probes run at once and paces slot reuse.
package throttle

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds throttle configuration
type Config struct {
	// MaxConcurrency is the number of probes allowed in flight
	MaxConcurrency int
	// Pacing is how long a slot stays occupied after its probe returns
	Pacing time.Duration
	// RequestsPerSecond caps the global start rate; zero disables the cap
	RequestsPerSecond float64
	Burst             int
}

// Throttle gates work behind a counting semaphore. Acquiring a slot blocks
// until one is free; there is no other queueing.
type Throttle struct {
	slots    *semaphore.Weighted
	size     int
	pacing   time.Duration
	limiter  *rate.Limiter
	inFlight atomic.Int64
	sleep    func(time.Duration)
}

// New creates a throttle
func New(config Config) *Throttle {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 1
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	return &Throttle{
		slots:   semaphore.NewWeighted(int64(config.MaxConcurrency)),
		size:    config.MaxConcurrency,
		pacing:  config.Pacing,
		limiter: limiter,
		sleep:   time.Sleep,
	}
}

// Acquire blocks until a slot is free and the rate limiter allows a start
func (t *Throttle) Acquire(ctx context.Context) error {
	if err := t.slots.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire slot: %w", err)
	}
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			t.slots.Release(1)
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}
	t.inFlight.Add(1)
	return nil
}

// Release waits out the pacing delay and frees the slot
func (t *Throttle) Release() {
	t.inFlight.Add(-1)
	if t.pacing > 0 {
		t.sleep(t.pacing)
	}
	t.slots.Release(1)
}

// Go acquires a slot, then runs fn in its own goroutine and releases the
// slot once fn and the pacing delay are over.
func (t *Throttle) Go(ctx context.Context, fn func()) error {
	if err := t.Acquire(ctx); err != nil {
		return err
	}
	go func() {
		defer t.Release()
		fn()
	}()
	return nil
}

// InFlight returns the number of probes currently running
func (t *Throttle) InFlight() int {
	return int(t.inFlight.Load())
}

// Size returns the configured concurrency
func (t *Throttle) Size() int {
	return t.size
}
