package probe

import (
	"strings"
)

// SafeMemcmp compares the first n bytes of a and b as unsigned bytes, lexicographically.
// It returns -1, 0 or 1.
func SafeMemcmp(a, b []byte, n int) int {
	a, b = a[:n], b[:n]
	for i := 0; i < n; i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}

// Memcheck reports whether any byte of b differs from the sentinel c,
// and if so the position of the first one.
func Memcheck(b []byte, c byte) (pos int, mismatch bool) {
	for i := range b {
		if b[i] != c {
			return i, true
		}
	}
	return -1, false
}

// Dump renders b as space-separated two-digit hex.
func Dump(b []byte) string {
	const digits = "0123456789abcdef"
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(digits[v>>4])
		sb.WriteByte(digits[v&0xF])
	}
	return sb.String()
}

func firstDiff(a, b []byte) int {
	for i := range a {
		if i >= len(b) || a[i] != b[i] {
			return i
		}
	}
	return -1
}

// pattern returns 1, 2, ..., n (wrapping past 255).
func pattern(n uint64) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i + 1)
	}
	return out
}
