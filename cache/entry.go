package cache

// entry is a resident value plus the metadata the eviction policy ranks on.
// All fields are guarded by the owning cache's lock.
type entry[K comparable, V any] struct {
	key K
	val V

	// Insertion time in UnixNano. Never refreshed on access:
	// expiry is absolute from insertion.
	created int64

	// Number of successful reads plus one for the write itself.
	hits uint64

	// Estimated footprint computed once by Options.SizeOf.
	size int64

	// Monotonic insertion sequence; breaks ties between entries
	// created within the same clock tick.
	seq uint64
}

// AccessCount implements policy.Entry.
func (e *entry[K, V]) AccessCount() uint64 { return e.hits }

// CreatedAt implements policy.Entry.
func (e *entry[K, V]) CreatedAt() int64 { return e.created }

// Seq implements policy.Entry.
func (e *entry[K, V]) Seq() uint64 { return e.seq }
