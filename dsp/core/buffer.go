package core

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// CopyInto copies src into dst and returns the number of copied elements.
// Nothing is copied when both slices start at the same element.
func CopyInto(dst, src []float64) int {
	n := min(len(dst), len(src))
	if n == 0 || SameStorage(dst, src) {
		return n
	}
	copy(dst[:n], src[:n])
	return n
}

// SameStorage reports whether a and b are non-empty and begin at the same
// backing array element.
func SameStorage(a, b []float64) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}
