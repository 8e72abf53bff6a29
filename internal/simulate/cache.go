package simulate

import (
	"sync"

	"github.com/avoca/mortgage-engine/internal/aggregate"
)

// resultCache is a bounded fingerprint-keyed cache of simulation outcomes.
// Outcomes are immutable once produced, so entries are shared by pointer.
// When the cache fills up it is cleared wholesale; simulations are cheap
// enough that an occasional cold start beats eviction bookkeeping.
type resultCache struct {
	mu      sync.Mutex
	entries map[string]*aggregate.Outcome
	max     int
}

func newResultCache(max int) *resultCache {
	return &resultCache{
		entries: make(map[string]*aggregate.Outcome),
		max:     max,
	}
}

func (c *resultCache) get(key string) (*aggregate.Outcome, bool) {
	if key == "" {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out, ok := c.entries[key]
	return out, ok
}

func (c *resultCache) put(key string, out *aggregate.Outcome) {
	if key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.max {
		c.entries = make(map[string]*aggregate.Outcome)
	}
	c.entries[key] = out
}
