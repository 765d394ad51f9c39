package core

// EnsureLen returns buf resized to n samples, reusing its backing array
// when the capacity allows and allocating otherwise. Contents are only
// zeroed on allocation; callers that need a clean slice follow up with
// Zero.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if n <= cap(buf) {
		return buf[:n]
	}
	return make([]float64, n)
}

// Zero silences buf.
func Zero(buf []float64) {
	clear(buf)
}

// CopyInto copies src into dst, truncating to the shorter of the two, and
// returns the number of samples copied.
func CopyInto(dst, src []float64) int {
	return copy(dst, src)
}
