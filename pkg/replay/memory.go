package replay

import (
	"context"
	"sync"
	"time"
)

// MemoryGuard is an in-process Guard for development, tests, and
// single-instance deployments. Expired entries are swept opportunistically
// on Consume, so the map never outgrows the set of live tokens.
type MemoryGuard struct {
	mu      sync.Mutex
	used    map[string]time.Time
	now     clock
	lastGC  time.Time
	gcEvery time.Duration
}

// MemoryOption configures a MemoryGuard.
type MemoryOption func(*MemoryGuard)

// WithMemoryClock overrides the wall clock. Intended for tests.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(g *MemoryGuard) {
		if now != nil {
			g.now = now
		}
	}
}

// NewMemoryGuard creates an empty in-memory guard.
func NewMemoryGuard(opts ...MemoryOption) *MemoryGuard {
	g := &MemoryGuard{
		used:    make(map[string]time.Time),
		now:     time.Now,
		gcEvery: time.Minute,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.lastGC = g.now()
	return g
}

// Consume implements Guard.
func (g *MemoryGuard) Consume(_ context.Context, id string, ttl time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now.Sub(g.lastGC) >= g.gcEvery {
		for k, exp := range g.used {
			if now.After(exp) {
				delete(g.used, k)
			}
		}
		g.lastGC = now
	}

	if exp, ok := g.used[id]; ok && now.Before(exp) {
		return ErrAlreadyUsed
	}

	g.used[id] = now.Add(ttl)
	return nil
}

// Release implements Guard.
func (g *MemoryGuard) Release(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.used, id)
	return nil
}
