// Package dedup guards the access log against the same badge being recorded
// twice within a short window, whichever station submitted it.
package dedup

import (
	"context"
	"sync"
	"time"
)

// Guard hands out one claim per user code per window.
type Guard interface {
	// Claim reports true when code has no live claim, and takes one.
	Claim(ctx context.Context, code string, at time.Time) (bool, error)
	// Release drops a claim whose write failed so a retry is not blocked.
	Release(ctx context.Context, code string) error
}

// Nop never rejects. Used when the window is zero.
type Nop struct{}

func (Nop) Claim(context.Context, string, time.Time) (bool, error) { return true, nil }
func (Nop) Release(context.Context, string) error                  { return nil }

// MemoryGuard keeps claims in process memory. Expired claims are ignored on
// read and removed by Sweep.
type MemoryGuard struct {
	window time.Duration

	mu     sync.Mutex
	claims map[string]time.Time // code -> expiry
}

func NewMemoryGuard(window time.Duration) *MemoryGuard {
	return &MemoryGuard{window: window, claims: make(map[string]time.Time)}
}

func (g *MemoryGuard) Claim(_ context.Context, code string, at time.Time) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if until, ok := g.claims[code]; ok && at.Before(until) {
		return false, nil
	}
	g.claims[code] = at.Add(g.window)
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, code string) error {
	g.mu.Lock()
	delete(g.claims, code)
	g.mu.Unlock()
	return nil
}

// Sweep removes claims that expired at or before now and returns how many.
func (g *MemoryGuard) Sweep(now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for code, until := range g.claims {
		if !now.Before(until) {
			delete(g.claims, code)
			n++
		}
	}
	return n
}

// Len is the number of claims held, expired or not.
func (g *MemoryGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.claims)
}
