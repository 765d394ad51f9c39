package dynamics

import (
	"math"
	"testing"
)

func makeCurve(t *testing.T, thresholdDB, kneeDB, ratio float64) *curveParams {
	t.Helper()

	var c curveParams
	if !c.update(thresholdDB, kneeDB, ratio) {
		t.Fatal("first update must recompute")
	}

	return &c
}

func TestCurveIdentityBelowThreshold(t *testing.T) {
	tests := []struct {
		name        string
		thresholdDB float64
		kneeDB      float64
		ratio       float64
	}{
		{"broadcast defaults", -24, 30, 12},
		{"hard knee", -12, 0, 4},
		{"gentle", -36, 6, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := makeCurve(t, tt.thresholdDB, tt.kneeDB, tt.ratio)

			for _, frac := range []float64{0.1, 0.5, 0.9, 0.999} {
				x := c.linearThreshold * frac
				if got := c.saturate(x, c.k); got != x {
					t.Fatalf("saturate(%v) = %v, want identity below threshold", x, got)
				}
			}
		})
	}
}

func TestKneeCurveContinuousAtThreshold(t *testing.T) {
	c := makeCurve(t, -24, 30, 12)

	for _, k := range []float64{0.5, c.k, 50, 5000} {
		below := c.kneeCurve(c.linearThreshold*(1-1e-9), k)
		above := c.kneeCurve(c.linearThreshold*(1+1e-9), k)

		if math.Abs(above-below) > 1e-6*c.linearThreshold {
			t.Fatalf("k=%v: discontinuity at threshold: %v vs %v", k, below, above)
		}
	}
}

func TestKneeCurveDerivativeMatchedAtThreshold(t *testing.T) {
	c := makeCurve(t, -24, 30, 12)

	// First derivative just above the junction must stay 1 for any k > 0.
	for _, k := range []float64{0.5, c.k, 50, 5000} {
		h := c.linearThreshold * 1e-7
		x := c.linearThreshold
		deriv := (c.kneeCurve(x+h, k) - c.kneeCurve(x, k)) / h

		if math.Abs(deriv-1) > 1e-3 {
			t.Fatalf("k=%v: derivative at threshold = %v, want 1", k, deriv)
		}
	}
}

func TestKneeCurveAsymptote(t *testing.T) {
	c := makeCurve(t, -24, 30, 12)

	k := 10.0
	limit := c.linearThreshold + 1/k

	far := c.kneeCurve(c.linearThreshold+10, k)
	if far > limit || limit-far > 1e-9 {
		t.Fatalf("kneeCurve asymptote: got %v, want just below %v", far, limit)
	}
}

func TestKAtSlopeConvergence(t *testing.T) {
	tests := []struct {
		name        string
		thresholdDB float64
		kneeDB      float64
		ratio       float64
		slopes      []float64
	}{
		// A wide knee flattens hard: only steep-compression slopes are
		// reachable on its curve.
		{"wide knee", -24, 30, 12, []float64{0.01, 0.05, 1.0 / 12, 0.1, 0.25, 0.5}},
		// A narrow knee stays close to linear, so the solve must also hit
		// slopes up to 1.
		{"narrow knee", -24, 6, 2, []float64{0.1, 0.5, 0.8, 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := makeCurve(t, tt.thresholdDB, tt.kneeDB, tt.ratio)

			for _, desired := range tt.slopes {
				k := c.kAtSlope(desired)
				got := c.slopeAt(c.kneeThreshold, k)

				if math.Abs(got-desired)/desired > 0.01 {
					t.Fatalf("desired slope %v: slopeAt(kneeThreshold, %v) = %v (>1%% off)",
						desired, k, got)
				}
			}
		})
	}
}

func TestSlopeAtBelowThreshold(t *testing.T) {
	c := makeCurve(t, -24, 30, 12)

	if got := c.slopeAt(c.linearThreshold*0.5, c.k); got != 1 {
		t.Fatalf("slopeAt below threshold = %v, want 1", got)
	}
}

func TestSaturateRatioRegionSlope(t *testing.T) {
	c := makeCurve(t, -24, 30, 12)

	// Above the knee threshold the curve is a straight line in dB with
	// slope 1/ratio.
	x1 := c.kneeThreshold * 2
	x2 := c.kneeThreshold * 4

	y1DB := linearToDecibels(c.saturate(x1, c.k))
	y2DB := linearToDecibels(c.saturate(x2, c.k))
	x1DB := linearToDecibels(x1)
	x2DB := linearToDecibels(x2)

	gotSlope := (y2DB - y1DB) / (x2DB - x1DB)
	if math.Abs(gotSlope-1.0/12) > 1e-9 {
		t.Fatalf("post-knee slope = %v, want %v", gotSlope, 1.0/12)
	}
}

func TestCurveCacheRecomputesOnlyOnChange(t *testing.T) {
	var c curveParams

	if !c.update(-24, 30, 12) {
		t.Fatal("first update must recompute")
	}
	if c.update(-24, 30, 12) {
		t.Fatal("identical triple must reuse the cache")
	}
	if !c.update(-24, 30, 8) {
		t.Fatal("changed ratio must recompute")
	}
	if !c.update(-20, 30, 8) {
		t.Fatal("changed threshold must recompute")
	}
	if !c.update(-20, 6, 8) {
		t.Fatal("changed knee must recompute")
	}
}

func TestMakeupGainInvertsFullScaleGain(t *testing.T) {
	c := makeCurve(t, -24, 30, 12)

	fullRangeGain := c.saturate(1, c.k)
	want := math.Pow(1/fullRangeGain, makeupExponent)

	if math.Abs(c.makeupGain-want) > 1e-12 {
		t.Fatalf("makeupGain = %v, want %v", c.makeupGain, want)
	}
	if c.makeupGain <= 1 {
		t.Fatalf("makeupGain = %v, expected boost for a compressing curve", c.makeupGain)
	}
}
