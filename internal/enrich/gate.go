package enrich

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of in-flight tasks of one domain.
// Waiters are admitted in arrival order.
type Gate struct {
	sem      *semaphore.Weighted
	max      int64
	inFlight atomic.Int64
	peak     atomic.Int64
}

// NewGate creates a gate admitting at most maxInFlight tasks (minimum 1).
func NewGate(maxInFlight int) *Gate {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	return &Gate{
		sem: semaphore.NewWeighted(int64(maxInFlight)),
		max: int64(maxInFlight),
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	g.admitted()
	return nil
}

// TryAcquire takes a slot without blocking.
func (g *Gate) TryAcquire() bool {
	if !g.sem.TryAcquire(1) {
		return false
	}
	g.admitted()
	return true
}

func (g *Gate) admitted() {
	n := g.inFlight.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (g *Gate) Release() {
	g.inFlight.Add(-1)
	g.sem.Release(1)
}

// InFlight returns the number of currently admitted tasks.
func (g *Gate) InFlight() int {
	return int(g.inFlight.Load())
}

// Max returns the configured bound.
func (g *Gate) Max() int {
	return int(g.max)
}

// Peak returns the highest InFlight value observed.
func (g *Gate) Peak() int {
	return int(g.peak.Load())
}
