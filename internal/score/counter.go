// Package score provides in-memory score accumulators.
package score

import (
	"context"
	"sync"

	"arcade-dashboard/internal/game"
)

// Counter is a running score total. A delta applied by ApplyDelta is visible
// to Total as soon as ApplyDelta returns.
type Counter struct {
	mu    sync.Mutex
	total int64
}

// NewCounter creates a counter starting at initial.
func NewCounter(initial int64) *Counter {
	return &Counter{total: initial}
}

// ApplyDelta adds amount to the total. It never fails.
func (c *Counter) ApplyDelta(_ context.Context, amount int, _ game.Reason) error {
	c.Add(int64(amount))
	return nil
}

// Add adds amount and returns the new total.
func (c *Counter) Add(amount int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total += amount
	return c.total
}

// Total returns the current total.
func (c *Counter) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}
