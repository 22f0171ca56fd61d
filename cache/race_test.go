package cache

import (
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"
)

// A mixed workload of concurrent Set/Get/Remove/Sweep/Stats on random keys
// while the background sweep runs. Should pass under `-race` without
// detector reports, and the accounting must stay within limits.
func TestRace_Basic(t *testing.T) {
	const (
		maxEntries = 512
		maxMemory  = 64 << 10
	)
	c := New[string, []byte](Options[string, []byte]{
		MaxEntries:     maxEntries,
		MaxMemoryBytes: maxMemory,
		TTL:            20 * time.Millisecond,
		SweepInterval:  5 * time.Millisecond,
		SizeOf:         func(v []byte) int64 { return int64(len(v)) },
	})
	t.Cleanup(func() { _ = c.Close() })

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 5_000
	deadline := time.Now().Add(time.Second)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*9973))
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				switch r.Intn(100) {
				case 0, 1, 2, 3, 4: // ~5% Remove
					c.Remove(k)
				case 5: // ~1% Sweep
					c.Sweep()
				case 6, 7, 8: // ~3% Stats
					st := c.Stats()
					if st.Entries > maxEntries || st.MemoryBytes > maxMemory {
						t.Errorf("limits exceeded: %+v", st)
						return
					}
				case 10, 11, 12, 13, 14, 15, 16, 17, 18, 19: // ~10% Set
					c.Set(k, make([]byte, 1+r.Intn(256)))
				default: // ~80% Get
					c.Get(k)
				}
			}
		}(w)
	}
	wg.Wait()
}
