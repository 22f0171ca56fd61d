package cache

import (
	"log/slog"
	"time"

	"github.com/IvanBrykalov/fetchcache/policy"
)

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictTTL: expired (lazily on read or by the periodic sweep).
	EvictTTL EvictReason = iota
	// EvictMemory: removed to bring the estimated footprint under MaxMemoryBytes.
	EvictMemory
	// EvictCapacity: removed to make room under MaxEntries.
	EvictCapacity
)

// String returns a stable lowercase name, suitable for metric labels.
func (r EvictReason) String() string {
	switch r {
	case EvictTTL:
		return "ttl"
	case EvictMemory:
		return "memory"
	case EvictCapacity:
		return "capacity"
	default:
		return "unknown"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int, bytes int64)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures the cache. The four limits are required;
// everything else has a default applied in New():
//   - nil SizeOf  => JSONSize
//   - nil Policy  => lfu (least accessed, then oldest)
//   - nil Metrics => NoopMetrics
//   - nil Logger  => discard
type Options[K comparable, V any] struct {
	// MaxEntries is the entry count limit.
	MaxEntries int

	// MaxMemoryBytes is the budget for the sum of estimated entry sizes.
	MaxMemoryBytes int64

	// TTL is measured from insertion and never refreshed by reads.
	// Zero makes every entry a miss on its next read.
	TTL time.Duration

	// SweepInterval is the period of the background expiry sweep.
	SweepInterval time.Duration

	// SizeOf estimates the footprint of a value once, at insertion.
	SizeOf func(v V) int64

	// Policy ranks entries for eviction.
	Policy policy.Policy

	// OnEvict is called on eviction under the cache lock; keep callbacks lightweight.
	OnEvict func(k K, v V, reason EvictReason)
	Metrics Metrics
	Logger  *slog.Logger

	// Clock allows overriding time source (tests). Nil => time.Now().
	Clock Clock
}
