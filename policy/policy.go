// Package policy defines how resident entries are ranked for eviction.
package policy

// Entry is the read-only view of a resident entry that a policy ranks.
type Entry interface {
	// AccessCount is 1 on insertion and grows by one per successful read.
	AccessCount() uint64
	// CreatedAt is the insertion time in UnixNano (never refreshed).
	CreatedAt() int64
	// Seq is a monotonic insertion counter, unique within one cache.
	Seq() uint64
}

// Policy orders entries by eviction eligibility.
//
// The cache scans every resident entry and evicts the one for which no
// other entry is Less. Implementations must be a strict weak ordering and
// should fall back to Seq so that the victim is deterministic.
//
// Concurrency: Less is called under the cache lock and must not block.
type Policy interface {
	// Less reports whether a should be evicted before b.
	Less(a, b Entry) bool
}

// Func adapts an ordinary function to the Policy interface.
type Func func(a, b Entry) bool

// Less calls f(a, b).
func (f Func) Less(a, b Entry) bool { return f(a, b) }
