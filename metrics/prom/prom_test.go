package prom

import (
	"context"
	"testing"
	"time"

	"github.com/IvanBrykalov/fetchcache/cache"
	"github.com/IvanBrykalov/fetchcache/coalesce"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_CacheSignals(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	a := New(reg, "fetchcache", "weather", prometheus.Labels{"preset": "weather"})

	c := cache.New[string, int](cache.Options[string, int]{
		MaxEntries:     1,
		MaxMemoryBytes: 1024,
		TTL:            time.Hour,
		SweepInterval:  time.Hour,
		SizeOf:         func(int) int64 { return 8 },
		Metrics:        a,
	})
	t.Cleanup(func() { _ = c.Close() })

	c.Set("a", 1)
	c.Get("a")
	c.Get("zzz")
	c.Set("b", 2) // evicts a (capacity)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.evicts.WithLabelValues("capacity")))
	assert.Equal(t, 0.0, testutil.ToFloat64(a.evicts.WithLabelValues("memory")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.sizeEnt))
	assert.Equal(t, 8.0, testutil.ToFloat64(a.sizeBytes))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestAdapter_CoalescerSignals(t *testing.T) {
	t.Parallel()

	a := New(prometheus.NewRegistry(), "fetchcache", "geocoding", nil)
	g := coalesce.NewGroup[string, string](coalesce.Options{Metrics: a})

	for i := 0; i < 3; i++ {
		_, err := g.Do(context.Background(), "k", func() (string, error) { return "v", nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(a.calls.WithLabelValues("executed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(a.calls.WithLabelValues("shared")))
}

func TestReasonLabels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ttl", cache.EvictTTL.String())
	assert.Equal(t, "memory", cache.EvictMemory.String())
	assert.Equal(t, "capacity", cache.EvictCapacity.String())
}
