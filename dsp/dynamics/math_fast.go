//go:build fastmath

package dynamics

import "github.com/meko-christian/algo-approx"

const (
	// ln10Div20 converts dB to natural log domain: ln(10) / 20.
	ln10Div20 = 0.1151292546497022842008995727342

	// twentyDivLn10 converts natural log to dB domain: 20 / ln(10).
	twentyDivLn10 = 8.6858896380650365530225783783321
)

// decibelsToLinear converts dB to linear amplitude using fast approximation.
// Uses the identity: 10^(x/20) = e^(x * ln(10)/20)
func decibelsToLinear(db float64) float64 {
	return approx.FastExp(db * ln10Div20)
}

// linearToDecibels converts linear amplitude to dB using fast approximation.
// Uses the identity: 20*log10(x) = ln(x) * 20/ln(10)
func linearToDecibels(linear float64) float64 {
	return twentyDivLn10 * approx.FastLog(linear)
}

// mathSqrt computes sqrt(x) using fast approximation.
func mathSqrt(x float64) float64 {
	return approx.FastSqrt(x)
}
