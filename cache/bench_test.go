package cache

import (
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

// benchmarkMix exercises a read/write mix against a warm cache.
// It uses parallel workers (RunParallel spawns GOMAXPROCS goroutines).
// Capacity is kept in the low thousands, which is the scale the linear
// eviction scan is meant for.
func benchmarkMix(b *testing.B, readsPct, capacity int) {
	c := New[string, string](Options[string, string]{
		MaxEntries:     capacity,
		MaxMemoryBytes: 1 << 30,
		TTL:            time.Hour,
		SweepInterval:  time.Minute,
		SizeOf:         func(v string) int64 { return int64(2 * len(v)) },
	})
	b.Cleanup(func() { _ = c.Close() })

	// Preload half the capacity to get a realistic hit-rate.
	for i := 0; i < capacity/2; i++ {
		c.Set("k:"+strconv.Itoa(i), "v")
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 12) - 1

	b.RunParallel(func(pb *testing.PB) {
		// Independent RNG stream for each worker.
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := "k:" + strconv.Itoa(i&keyMask)
			if r.Intn(100) < readsPct {
				c.Get(k)
			} else {
				c.Set(k, "v")
			}
			i++
		}
	})
}

func BenchmarkCache_90r10w_1k(b *testing.B) { benchmarkMix(b, 90, 1_000) }
func BenchmarkCache_50r50w_1k(b *testing.B) { benchmarkMix(b, 50, 1_000) }
func BenchmarkCache_90r10w_4k(b *testing.B) { benchmarkMix(b, 90, 4_000) }

// BenchmarkJSONSize measures the default estimator on a typical payload.
func BenchmarkJSONSize(b *testing.B) {
	type forecast struct {
		City  string    `json:"city"`
		Temps []float64 `json:"temps"`
	}
	v := forecast{City: "Reykjavík", Temps: make([]float64, 24)}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = JSONSize(v)
	}
}
