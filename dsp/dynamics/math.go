//go:build !fastmath

package dynamics

import "math"

// decibelsToLinear converts dB to linear amplitude using standard library math.
func decibelsToLinear(db float64) float64 {
	return math.Pow(10, 0.05*db)
}

// linearToDecibels converts linear amplitude to dB using standard library math.
// Returns -Inf for zero input; callers on the audio path guard for this.
func linearToDecibels(linear float64) float64 {
	return 20 * math.Log10(linear)
}

// mathSqrt computes sqrt(x) using standard library math.
func mathSqrt(x float64) float64 {
	return math.Sqrt(x)
}
