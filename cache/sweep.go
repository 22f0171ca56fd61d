package cache

import (
	"log/slog"
	"time"
)

// Sweep removes every expired entry and returns the number removed.
func (c *cache[K, V]) Sweep() int {
	c.mu.Lock()
	n := c.sweepLocked(c.now())
	if n > 0 {
		c.reportSizeLocked()
	}
	left := len(c.m)
	c.mu.Unlock()

	if n > 0 {
		c.log.Debug("cache: swept expired entries",
			slog.Int("removed", n),
			slog.Int("remaining", left))
	}
	return n
}

// sweepLocked evicts all entries expired at now.
// Deleting from a map while ranging over it is safe in Go.
func (c *cache[K, V]) sweepLocked(now int64) int {
	n := 0
	for _, e := range c.m {
		if c.expired(e, now) {
			c.evictLocked(e, EvictTTL)
			n++
		}
	}
	return n
}

// sweeper runs Sweep every interval until Close. It owns the ticker and
// signals exit by closing c.done, which Close waits on.
func (c *cache[K, V]) sweeper(interval time.Duration) {
	defer close(c.done)

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			// A tick may race with Close; never sweep once stop is closed.
			select {
			case <-c.stop:
				return
			default:
			}
			c.Sweep()
		}
	}
}
