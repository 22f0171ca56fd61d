// Package cache provides a generic, bounded, time-aware in-memory cache
// for results of expensive external lookups (geocoding, forecasts,
// generated content).
//
// Design
//
//   - Limits: every cache enforces three limits at once: an entry count
//     (MaxEntries), a memory budget over estimated entry sizes
//     (MaxMemoryBytes), and a fixed TTL counted from insertion. Reads do
//     not extend the TTL.
//
//   - Size: each value is measured once, at insertion, by Options.SizeOf.
//     The default, JSONSize, charges two bytes per UTF-16 code unit of the
//     value's JSON encoding. Inject a deterministic estimator in tests.
//
//   - Eviction: Set first sweeps expired entries, then evicts live entries
//     one at a time until the new value fits the memory budget, then evicts
//     exactly one more if the count limit is reached. The victim is chosen
//     by a linear scan under Options.Policy; the default (policy/lfu) picks
//     the fewest reads, then the oldest insertion.
//
//   - Expiration: lazy on read, plus a background sweep every
//     SweepInterval so that keys which are never read again still leave.
//
//   - Concurrency: one mutex per cache guards the map and the memory total.
//     The sweep goroutine takes the same lock.
//
//   - Lifecycle: New starts the sweep; Close stops it, waits for it to
//     exit, and clears the cache. Owners construct caches at startup and
//     close them at shutdown; there are no package-level instances.
//
// Basic usage
//
//	c := cache.New[string, Forecast](cache.Options[string, Forecast]{
//	    MaxEntries:     1000,
//	    MaxMemoryBytes: 16 << 20,
//	    TTL:            3 * time.Hour,
//	    SweepInterval:  10 * time.Minute,
//	})
//	defer c.Close()
//
//	c.Set("paris|2024-06-01", f)
//	if v, ok := c.Get("paris|2024-06-01"); ok {
//	    _ = v
//	}
//
// A miss is reported by the boolean, never by the value, so zero values
// such as false, "" or nil are cached and returned like any other.
//
// To deduplicate concurrent fetches on a miss, pair a cache with a
// coalesce.Group, or use the fetch package which does both.
package cache
