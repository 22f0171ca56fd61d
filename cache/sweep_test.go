package cache

import (
	"sync/atomic"
	"testing"
	"time"
)

// Sweep removes every expired entry without touching live ones.
func TestCache_SweepRemovesExpired(t *testing.T) {
	t.Parallel()

	var ttlEvictions atomic.Int64
	c, clk := newTest[int](t, Options[string, int]{
		TTL:    time.Minute,
		SizeOf: func(int) int64 { return 5 },
		OnEvict: func(_ string, _ int, r EvictReason) {
			if r == EvictTTL {
				ttlEvictions.Add(1)
			}
		},
	})

	c.Set("a", 1)
	c.Set("b", 2)
	clk.add(40 * time.Second)
	c.Set("c", 3)
	clk.add(30 * time.Second)

	if n := c.Sweep(); n != 2 {
		t.Fatalf("Sweep want 2 removed, got %d", n)
	}
	if st := c.Stats(); st.Entries != 1 || st.MemoryBytes != 5 {
		t.Fatalf("want c only, got %+v", st)
	}
	if ttlEvictions.Load() != 2 {
		t.Fatalf("want 2 TTL evictions, got %d", ttlEvictions.Load())
	}
	if n := c.Sweep(); n != 0 {
		t.Fatalf("second Sweep want 0, got %d", n)
	}
}

// The background sweep removes entries that are never read again.
func TestCache_BackgroundSweep(t *testing.T) {
	t.Parallel()

	c := New[string, string](Options[string, string]{
		MaxEntries:     8,
		MaxMemoryBytes: 1024,
		TTL:            20 * time.Millisecond,
		SweepInterval:  10 * time.Millisecond,
	})
	t.Cleanup(func() { _ = c.Close() })

	c.Set("a", "x")
	c.Set("b", "y")

	deadline := time.Now().Add(2 * time.Second)
	for c.Len() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("background sweep did not run, Len=%d", c.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if st := c.Stats(); st.MemoryBytes != 0 {
		t.Fatalf("memory want 0 after sweep, got %d", st.MemoryBytes)
	}
}

// After Close returns the sweep goroutine has exited.
func TestCache_CloseStopsSweep(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{
		MaxEntries:     8,
		MaxMemoryBytes: 1024,
		TTL:            time.Millisecond,
		SweepInterval:  time.Millisecond,
	})
	c.Set("a", 1)
	time.Sleep(5 * time.Millisecond)

	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	impl := c.(*cache[string, int])
	select {
	case <-impl.done:
	default:
		t.Fatal("sweep goroutine still running after Close")
	}
	if st := c.Stats(); st.Entries != 0 || st.MemoryBytes != 0 {
		t.Fatalf("Close must clear, got %+v", st)
	}
}
