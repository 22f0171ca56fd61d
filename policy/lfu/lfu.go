// Package lfu implements the least-frequently-used eviction policy.
package lfu

import "github.com/IvanBrykalov/fetchcache/policy"

// lfu evicts the entry with the fewest accesses. Ties go to the entry
// inserted earliest (by CreatedAt, then Seq). Note that this is insertion
// recency, not last-access recency: reads never refresh CreatedAt.
type lfu struct{}

// New returns the LFU policy. It is stateless and safe to share.
func New() policy.Policy { return lfu{} }

// Less implements policy.Policy.
func (lfu) Less(a, b policy.Entry) bool {
	if ac, bc := a.AccessCount(), b.AccessCount(); ac != bc {
		return ac < bc
	}
	if at, bt := a.CreatedAt(), b.CreatedAt(); at != bt {
		return at < bt
	}
	return a.Seq() < b.Seq()
}
