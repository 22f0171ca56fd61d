package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// JSONSize estimates the footprint of v as two bytes per UTF-16 code unit
// of its JSON encoding. It is a proxy correlated with the real cost, not a
// measurement of heap usage.
//
// JSONSize panics if v cannot be encoded (channels, funcs, cyclic values):
// caching such a value is a programming error.
func JSONSize[V any](v V) int64 {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		panic(fmt.Sprintf("cache.JSONSize: cannot encode %T: %v", v, err))
	}
	b := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return 2 * int64(utf16Len(b))
}

// utf16Len counts UTF-16 code units in UTF-8 encoded b.
func utf16Len(b []byte) int {
	n := 0
	for len(b) > 0 {
		r, w := utf8.DecodeRune(b)
		b = b[w:]
		if r >= 0x10000 {
			n += 2 // surrogate pair
		} else {
			n++
		}
	}
	return n
}
