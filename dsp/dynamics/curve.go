package dynamics

import "math"

const (
	// kAtSlope bisection bounds and fixed iteration count. Fifteen
	// geometric-mean steps give ~1e-4 relative precision on the fitted
	// slope with a constant, branch-predictable cost.
	minKneeSteepness     = 0.1
	maxKneeSteepness     = 10000.0
	kneeSolveIterations  = 15
	initialKneeSteepness = 5.0

	// slopeAtPerturbation is the relative input perturbation used for the
	// finite-difference slope estimate.
	slopeAtPerturbation = 1.001

	// makeupExponent is an empirical/perceptual tuning of the full-range
	// makeup gain.
	makeupExponent = 0.6
)

// curveParams holds the static compression transfer curve (knee + ratio)
// and every value derived from the (threshold, knee, ratio) triple. The
// triple itself is stored as the cache tag: update recomputes the derived
// state only when the triple changes, keeping the iterative knee solve off
// the per-sample hot path.
//
// The zero value is an empty cache; the first update always recomputes
// since no valid ratio is ever zero.
type curveParams struct {
	// Cache tag.
	thresholdDB float64
	kneeDB      float64
	ratio       float64

	// Derived state.
	linearThreshold    float64 // threshold as linear amplitude
	slope              float64 // 1/ratio, the post-knee slope in dB/dB
	kneeThresholdDB    float64 // thresholdDB + kneeDB, where the knee ends
	kneeThreshold      float64 // kneeThresholdDB as linear amplitude
	kneeThresholdOutDB float64 // curve output at the knee end, in dB
	k                  float64 // fitted knee steepness
	makeupGain         float64 // inverted full-scale curve gain, perceptually scaled
}

// update refreshes the derived state if the parameter triple changed and
// reports whether a recompute happened.
func (c *curveParams) update(thresholdDB, kneeDB, ratio float64) bool {
	if thresholdDB == c.thresholdDB && kneeDB == c.kneeDB && ratio == c.ratio {
		return false
	}

	c.thresholdDB = thresholdDB
	c.linearThreshold = decibelsToLinear(thresholdDB)
	c.kneeDB = kneeDB

	c.ratio = ratio
	c.slope = 1 / ratio

	k := c.kAtSlope(1 / ratio)

	c.kneeThresholdDB = thresholdDB + kneeDB
	c.kneeThreshold = decibelsToLinear(c.kneeThresholdDB)
	c.kneeThresholdOutDB = linearToDecibels(c.kneeCurve(c.kneeThreshold, k))
	c.k = k

	// Makeup gain inverts the curve's full-scale gain so unity input maps
	// back near unity output.
	fullRangeGain := c.saturate(1, k)
	c.makeupGain = math.Pow(1/fullRangeGain, makeupExponent)

	return true
}

// kneeCurve is the exponential knee. It is linear up to the threshold,
// first-derivative matched there, and asymptotically approaches
// linearThreshold + 1/k.
func (c *curveParams) kneeCurve(x, k float64) float64 {
	if x < c.linearThreshold {
		return x
	}

	return c.linearThreshold + (1-math.Exp(-k*(x-c.linearThreshold)))/k
}

// saturate is the full static curve: knee up to the knee threshold, then a
// constant ratio expressed as linear extrapolation in the dB domain.
func (c *curveParams) saturate(x, k float64) float64 {
	if x < c.kneeThreshold {
		return c.kneeCurve(x, k)
	}

	xDb := linearToDecibels(x)
	yDb := c.kneeThresholdOutDB + c.slope*(xDb-c.kneeThresholdDB)

	return decibelsToLinear(yDb)
}

// slopeAt approximates the curve's first derivative at x with input and
// output expressed in dB. The slope equals the inverse of the compression
// ratio: a ratio of 20 gives a slope of 1/20.
func (c *curveParams) slopeAt(x, k float64) float64 {
	if x < c.linearThreshold {
		return 1
	}

	x2 := x * slopeAtPerturbation

	xDb := linearToDecibels(x)
	x2Db := linearToDecibels(x2)

	yDb := linearToDecibels(c.kneeCurve(x, k))
	y2Db := linearToDecibels(c.kneeCurve(x2, k))

	return (y2Db - yDb) / (x2Db - xDb)
}

// kAtSlope solves for the knee steepness k that yields the desired slope
// at the end of the knee. Fixed-count geometric-mean bisection: a high k
// asymptotically approaches a slope of 0.
func (c *curveParams) kAtSlope(desiredSlope float64) float64 {
	xDb := c.thresholdDB + c.kneeDB
	x := decibelsToLinear(xDb)

	minK := minKneeSteepness
	maxK := maxKneeSteepness
	k := initialKneeSteepness

	for i := 0; i < kneeSolveIterations; i++ {
		slope := c.slopeAt(x, k)

		if slope < desiredSlope {
			// k is too high.
			maxK = k
		} else {
			// k is too low.
			minK = k
		}

		k = mathSqrt(minK * maxK)
	}

	return k
}
