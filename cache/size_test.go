package cache

import (
	"strings"
	"testing"
)

func TestJSONSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		v    any
		want int64
	}{
		{"null", nil, 2 * len(`null`)},
		{"false", false, 2 * len(`false`)},
		{"empty string", "", 2 * len(`""`)},
		{"ascii", "abc", 2 * len(`"abc"`)},
		{"html not escaped", "<a>", 2 * len(`"<a>"`)},
		{"bmp", "ü", 2 * 3},
		{"astral", "🙂", 2 * 4},
		{"object", map[string]int{"a": 1}, 2 * len(`{"a":1}`)},
		{"slice", []int{1, 2, 3}, 2 * len(`[1,2,3]`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := JSONSize(tc.v); got != tc.want {
				t.Fatalf("JSONSize(%#v) = %d, want %d", tc.v, got, tc.want)
			}
		})
	}
}

// Size grows with the serialized length.
func TestJSONSize_Monotonic(t *testing.T) {
	t.Parallel()

	small := JSONSize(strings.Repeat("x", 10))
	large := JSONSize(strings.Repeat("x", 1000))
	if small >= large {
		t.Fatalf("want small < large, got %d >= %d", small, large)
	}
}

// Unencodable values are a programming error.
func TestJSONSize_PanicsOnUnencodable(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("want panic")
		}
		if !strings.Contains(r.(string), "chan int") {
			t.Fatalf("panic should name the type, got %v", r)
		}
	}()
	JSONSize(make(chan int))
}
