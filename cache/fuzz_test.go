package cache

import (
	"strings"
	"testing"
	"time"
)

// Fuzz basic Set/Get/Remove semantics under arbitrary string inputs with the
// default JSON size estimator. Guards against panics and checks that the
// memory total tracks exactly one resident value.
func FuzzCache_SetGetRemove(f *testing.F) {
	// Seed corpus: empty, ASCII, Unicode, long strings.
	f.Add("", "")
	f.Add("a", "1")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("html", "<script>&</script>")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		// Cap lengths to keep memory bounded during fuzzing.
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := New[string, string](Options[string, string]{
			MaxEntries:     16,
			MaxMemoryBytes: 1 << 20,
			TTL:            time.Hour,
			SweepInterval:  time.Hour,
		})
		t.Cleanup(func() { _ = c.Close() })

		c.Set(k, v)
		got, ok := c.Get(k)
		if !ok || got != v {
			t.Fatalf("after Set/Get: want %q, got %q ok=%v", v, got, ok)
		}
		if st := c.Stats(); st.MemoryBytes != JSONSize(v) {
			t.Fatalf("memory %d, want %d", st.MemoryBytes, JSONSize(v))
		}

		// Overwrite keeps a single entry.
		c.Set(k, v+v)
		if st := c.Stats(); st.Entries != 1 || st.MemoryBytes != JSONSize(v+v) {
			t.Fatalf("after overwrite: %+v", st)
		}

		if !c.Remove(k) {
			t.Fatalf("Remove must return true")
		}
		if st := c.Stats(); st.Entries != 0 || st.MemoryBytes != 0 {
			t.Fatalf("after Remove: %+v", st)
		}
	})
}
