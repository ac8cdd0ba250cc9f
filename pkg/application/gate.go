package application

import (
	"context"
	"sync"
)

// Gate blocks new submissions while paused. Work already submitted keeps
// running.
type Gate struct {
	mu     sync.Mutex
	paused bool
	resume chan struct{}
}

// NewGate creates an open gate
func NewGate() *Gate {
	return &Gate{}
}

// Pause closes the gate
func (g *Gate) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused {
		return
	}
	g.paused = true
	g.resume = make(chan struct{})
}

// Resume opens the gate and wakes every waiter
func (g *Gate) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.paused {
		return
	}
	g.paused = false
	close(g.resume)
}

// Toggle flips the gate and returns true if it is now paused
func (g *Gate) Toggle() bool {
	g.mu.Lock()
	paused := g.paused
	g.mu.Unlock()

	if paused {
		g.Resume()
		return false
	}
	g.Pause()
	return true
}

// Paused reports whether the gate is closed
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// Wait returns immediately when open, otherwise blocks until Resume or ctx is done
func (g *Gate) Wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		if !g.paused {
			g.mu.Unlock()
			return ctx.Err()
		}
		resume := g.resume
		g.mu.Unlock()

		select {
		case <-resume:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
