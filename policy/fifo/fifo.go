// Package fifo implements a first-in-first-out eviction policy.
package fifo

import "github.com/IvanBrykalov/fetchcache/policy"

// fifo evicts the oldest insertion and ignores access counts entirely.
type fifo struct{}

// New returns the FIFO policy. It is stateless and safe to share.
func New() policy.Policy { return fifo{} }

// Less implements policy.Policy.
func (fifo) Less(a, b policy.Entry) bool {
	if at, bt := a.CreatedAt(), b.CreatedAt(); at != bt {
		return at < bt
	}
	return a.Seq() < b.Seq()
}
