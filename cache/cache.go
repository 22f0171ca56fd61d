package cache

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/fetchcache/internal/util"
	"github.com/IvanBrykalov/fetchcache/policy/lfu"
)

// cache is a bounded in-memory KV store with a pluggable eviction policy.
// A single mutex guards the map and the running memory total together, so
// Set's sweep-evict-insert sequence is atomic with respect to Get, Set and
// the background sweep.
type cache[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu     sync.Mutex
	m      map[K]*entry[K, V]
	memory int64  // sum of entry sizes
	seq    uint64 // last insertion sequence

	opt    Options[K, V]
	log    *slog.Logger
	closed atomic.Bool

	// background sweep lifecycle
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicUint64
	misses util.PaddedAtomicUint64
	evicts util.PaddedAtomicUint64
}

// New constructs a cache with the provided Options and starts its
// background sweep. The caller owns the cache and must Close it.
//
// MaxEntries, MaxMemoryBytes and SweepInterval must be positive and TTL
// must not be negative; New panics otherwise.
func New[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	if opt.MaxEntries <= 0 {
		panic("cache: MaxEntries must be > 0")
	}
	if opt.MaxMemoryBytes <= 0 {
		panic("cache: MaxMemoryBytes must be > 0")
	}
	if opt.TTL < 0 {
		panic("cache: TTL must be >= 0")
	}
	if opt.SweepInterval <= 0 {
		panic("cache: SweepInterval must be > 0")
	}
	if opt.SizeOf == nil {
		opt.SizeOf = JSONSize[V]
	}
	if opt.Policy == nil {
		opt.Policy = lfu.New()
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	log := opt.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	c := &cache[K, V]{
		m:    make(map[K]*entry[K, V], opt.MaxEntries),
		opt:  opt,
		log:  log,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go c.sweeper(opt.SweepInterval)
	return c
}

// ---- Cache[K,V] implementation ----

// Get returns the value for k and a presence flag.
func (c *cache[K, V]) Get(k K) (V, bool) {
	var zero V
	if c.closed.Load() {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[k]
	if !ok {
		c.missLocked()
		return zero, false
	}
	if c.expired(e, c.now()) {
		c.evictLocked(e, EvictTTL)
		c.reportSizeLocked()
		c.missLocked()
		return zero, false
	}

	e.hits++
	c.hits.Add(1)
	c.opt.Metrics.Hit()
	return e.val, true
}

// Peek returns the value for k without updating counters, metrics or
// eviction eligibility.
func (c *cache[K, V]) Peek(k K) (V, bool) {
	var zero V
	if c.closed.Load() {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[k]
	if !ok || c.expired(e, c.now()) {
		return zero, false
	}
	return e.val, true
}

// Set inserts or replaces k→v, evicting as needed to honour both limits.
func (c *cache[K, V]) Set(k K, v V) {
	if c.closed.Load() {
		return
	}
	// Estimating may serialise v; keep it outside the lock.
	size := c.sizeOf(v)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return
	}

	// A replaced entry gives its size back before anything is measured.
	if old, ok := c.m[k]; ok {
		c.removeLocked(old)
	}

	now := c.now()
	c.sweepLocked(now)

	for c.memory+size > c.opt.MaxMemoryBytes && len(c.m) > 0 {
		c.evictLocked(c.victimLocked(), EvictMemory)
	}
	if len(c.m) >= c.opt.MaxEntries {
		c.evictLocked(c.victimLocked(), EvictCapacity)
	}
	if size > c.opt.MaxMemoryBytes {
		c.log.Warn("cache: value exceeds memory budget",
			slog.Int64("size_bytes", size),
			slog.Int64("max_memory_bytes", c.opt.MaxMemoryBytes))
	}

	c.seq++
	c.m[k] = &entry[K, V]{
		key:     k,
		val:     v,
		created: now,
		hits:    1,
		size:    size,
		seq:     c.seq,
	}
	c.memory += size
	c.reportSizeLocked()
}

// Remove deletes an entry by key. Returns true if the entry existed.
func (c *cache[K, V]) Remove(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[k]
	if !ok {
		return false
	}
	// Explicit Remove is not counted as an eviction.
	c.removeLocked(e)
	c.reportSizeLocked()
	return true
}

// Clear removes all entries and resets the running memory total.
func (c *cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Stats returns a snapshot of the cache state and counters.
func (c *cache[K, V]) Stats() Stats {
	c.mu.Lock()
	entries, memory := len(c.m), c.memory
	c.mu.Unlock()

	return Stats{
		Entries:     entries,
		MemoryBytes: memory,
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evicts.Load(),
	}
}

// Len returns the number of resident entries.
func (c *cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// Close stops the sweep goroutine, waits for it to exit and clears the cache.
func (c *cache[K, V]) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.stop)
		<-c.done

		c.mu.Lock()
		n := len(c.m)
		c.clearLocked()
		c.mu.Unlock()

		c.log.Debug("cache: closed", slog.Int("dropped_entries", n))
	})
	return nil
}

// -------------------- internals (mu held) --------------------

func (c *cache[K, V]) now() int64 {
	if c.opt.Clock != nil {
		return c.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

// expired reports whether e is logically dead at now.
// A zero TTL expires every entry as soon as it is looked at again.
func (c *cache[K, V]) expired(e *entry[K, V], now int64) bool {
	return c.opt.TTL == 0 || now-e.created > int64(c.opt.TTL)
}

// sizeOf runs the estimator; negative estimates count as zero.
func (c *cache[K, V]) sizeOf(v V) int64 {
	if n := c.opt.SizeOf(v); n > 0 {
		return n
	}
	return 0
}

// victimLocked scans all entries for the most eligible one under the policy.
// It must only be called on a non-empty cache.
func (c *cache[K, V]) victimLocked() *entry[K, V] {
	var victim *entry[K, V]
	for _, e := range c.m {
		if victim == nil || c.opt.Policy.Less(e, victim) {
			victim = e
		}
	}
	return victim
}

// removeLocked unlinks e and gives back its size.
func (c *cache[K, V]) removeLocked(e *entry[K, V]) {
	delete(c.m, e.key)
	c.memory -= e.size
	if c.memory < 0 {
		panic(fmt.Sprintf("cache: negative memory total %d after removing %d bytes", c.memory, e.size))
	}
}

// evictLocked removes e, updates counters and calls OnEvict.
func (c *cache[K, V]) evictLocked(e *entry[K, V], reason EvictReason) {
	c.removeLocked(e)
	c.evicts.Add(1)
	c.opt.Metrics.Evict(reason)
	if cb := c.opt.OnEvict; cb != nil {
		cb(e.key, e.val, reason)
	}
}

func (c *cache[K, V]) clearLocked() {
	clear(c.m)
	c.memory = 0
	c.reportSizeLocked()
}

func (c *cache[K, V]) missLocked() {
	c.misses.Add(1)
	c.opt.Metrics.Miss()
}

func (c *cache[K, V]) reportSizeLocked() {
	c.opt.Metrics.Size(len(c.m), c.memory)
}
