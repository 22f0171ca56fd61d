package cache

// Stats is a point-in-time snapshot of a cache.
type Stats struct {
	// Entries is the number of resident entries, including any expired
	// entries not yet removed by a read or a sweep.
	Entries int
	// MemoryBytes is the running total of estimated entry sizes.
	MemoryBytes int64

	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a bounded, time-aware in-memory key/value cache.
// All methods are safe for concurrent use by multiple goroutines.
//
// Three limits are enforced together: an entry count, an estimated memory
// budget, and a fixed TTL measured from insertion. Lookups are O(1);
// an eviction scans all resident entries (O(n)), which is intended for
// caches bounded to a few thousand entries.
type Cache[K comparable, V any] interface {
	// Get returns the value for k and a boolean flag indicating presence.
	// An expired entry is removed and reported as a miss.
	// On hit, the entry's access count grows, making it less eligible
	// for eviction.
	Get(k K) (V, bool)

	// Peek is Get without side effects: it neither counts a hit or miss
	// nor touches the access count, and it leaves expired entries for
	// the next Get or sweep to remove. It reports expired entries as absent.
	Peek(k K) (V, bool)

	// Set inserts or replaces k→v. Expired entries are swept first, then
	// live entries are evicted until the new value fits the memory budget,
	// then one more if the count limit is reached. A replaced entry starts
	// over: new timestamp, access count 1, new size.
	Set(k K, v V)

	// Remove deletes k if present and returns true on success.
	Remove(k K) bool

	// Clear removes every entry and resets the memory total.
	Clear()

	// Stats returns the current counters. It does not sweep.
	Stats() Stats

	// Len returns the number of resident entries.
	Len() int

	// Sweep removes every expired entry now and returns how many were removed.
	// The same routine runs in the background every SweepInterval.
	Sweep() int

	// Close stops the background sweep and clears the cache.
	// It is idempotent; once it returns no sweep will run again.
	// Later Set calls are ignored and Get always misses.
	Close() error
}
