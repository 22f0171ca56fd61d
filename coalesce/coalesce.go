// Package coalesce deduplicates concurrent calls that share a key.
package coalesce

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

// ErrGoexit is delivered to waiters when the operation called runtime.Goexit.
var ErrGoexit = errors.New("coalesce: operation called runtime.Goexit")

// PanicError is delivered to waiters when the operation panicked.
// The caller that ran the operation re-panics with it.
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("coalesce: operation panicked: %v\n\n%s", p.Value, p.Stack)
}

// Metrics receives one signal per Do: Executed when the caller ran the
// operation itself, Shared when it joined a call already in flight.
type Metrics interface {
	Executed()
	Shared()
}

// Options configures a Group. The zero value is valid.
type Options struct {
	Metrics Metrics
}

// Group coalesces concurrent function calls for the same key K so that
// the supplied fn is executed at most once while it is in flight. Other
// concurrent callers wait for the shared result.
//
// Concurrency notes:
//   - The first caller for a given key becomes the leader and runs fn.
//   - The key is unregistered before the result is published, so once any
//     caller has returned, a new Do for that key starts a fresh call.
//   - Cancelling ctx in a follower unblocks only that follower; it does
//     NOT cancel the leader's fn. Thread ctx into fn if the work itself
//     must stop.
//
// The zero value is ready to use.
type Group[K comparable, V any] struct {
	mu      sync.Mutex
	m       map[K]*call[V]
	metrics Metrics
}

type call[V any] struct {
	done chan struct{} // closed when val/err are published
	val  V
	err  error

	panicked bool
}

// NewGroup returns a Group configured with opt.
func NewGroup[K comparable, V any](opt Options) *Group[K, V] {
	return &Group[K, V]{metrics: opt.Metrics}
}

// Do runs fn once for the given key. Concurrent calls with the same key
// wait for the shared result; every caller observes the same value and the
// same error, which is returned exactly as fn produced it.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		g.mu.Unlock()
		if g.metrics != nil {
			g.metrics.Shared()
		}

		select {
		case <-c.done:
			return c.val, c.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}

	// We are the leader for this key.
	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()
	if g.metrics != nil {
		g.metrics.Executed()
	}

	g.doCall(key, c, fn)
	if c.panicked {
		panic(c.err)
	}
	return c.val, c.err
}

// doCall runs fn, then unregisters c and wakes followers, in that order.
// It also runs when fn panics or calls runtime.Goexit.
func (g *Group[K, V]) doCall(key K, c *call[V], fn func() (V, error)) {
	returned := false
	defer func() {
		if !returned {
			if r := recover(); r != nil {
				c.err = &PanicError{Value: r, Stack: debug.Stack()}
				c.panicked = true
			} else {
				c.err = ErrGoexit
			}
		}

		// A Clear or Forget may have dropped c and a newer call may own
		// the key now; only remove our own registration.
		g.mu.Lock()
		if g.m[key] == c {
			delete(g.m, key)
		}
		g.mu.Unlock()

		close(c.done)
	}()

	c.val, c.err = fn()
	returned = true
}

// Forget drops the registration for key without cancelling the call.
// Callers already waiting still receive its result; the next Do for key
// starts a new call.
func (g *Group[K, V]) Forget(key K) {
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
}

// Clear drops every registration without cancelling the calls.
// Callers already waiting still receive their results.
func (g *Group[K, V]) Clear() {
	g.mu.Lock()
	clear(g.m)
	g.mu.Unlock()
}

// InFlight returns the number of registered calls.
func (g *Group[K, V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}
