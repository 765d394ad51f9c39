package dynamics

import (
	"math"

	"github.com/cwbudde/algo-dynamics/dsp/core"
)

const (
	// Release-zone fractions of the configured release-frame count. The
	// quartic release curve is fitted through these four points so deeper
	// compression releases faster.
	releaseZone1 = 0.09
	releaseZone2 = 0.16
	releaseZone3 = 0.42
	releaseZone4 = 0.98

	// releaseSpacingDB is the dB distance covered per effective release
	// frame count.
	releaseSpacingDB = 5.0

	// minAttackTime floors the attack time constant in seconds.
	minAttackTime = 0.001

	piOverTwo = math.Pi / 2
)

// gainEnvelope integrates the compressor gain toward the detector output
// using asymmetric attack/release dynamics. The integration happens in a
// pre-warped domain (asin of the desired gain) so the sine warp applied on
// output smooths the hard 0/1 boundaries of the exponential approach.
type gainEnvelope struct {
	gain float64

	// maxAttackDiffDb is the sticky maximum compression difference seen
	// while attacking; -1 marks the cleared state.
	maxAttackDiffDb float64

	attackFrames  float64
	releaseFrames float64

	// Quartic release curve coefficients, refreshed per block.
	kA, kB, kC, kD, kE float64

	// Sub-block mode decision.
	envelopeRate      float64
	scaledDesiredGain float64
}

func (e *gainEnvelope) reset() {
	e.gain = 1
	e.maxAttackDiffDb = -1
}

// updateTiming recomputes attack/release frame counts and the quartic
// release coefficients for the current block.
func (e *gainEnvelope) updateTiming(attackTime, releaseTime, sampleRate float64) {
	if attackTime < minAttackTime {
		attackTime = minAttackTime
	}

	e.attackFrames = attackTime * sampleRate
	e.releaseFrames = releaseTime * sampleRate

	y1 := e.releaseFrames * releaseZone1
	y2 := e.releaseFrames * releaseZone2
	y3 := e.releaseFrames * releaseZone3
	y4 := e.releaseFrames * releaseZone4

	// 4th order polynomial fit through (0,y1) (1,y2) (2,y3) (3,y4) with
	// evenly spaced x values.
	e.kA = 0.9999999999999998*y1 + 1.8432219684323923e-16*y2 - 1.9373394351676423e-16*y3 + 8.824516011816245e-18*y4
	e.kB = -1.5788320352845888*y1 + 2.3305837032074286*y2 - 0.9141194204840429*y3 + 0.1623677525612032*y4
	e.kC = 0.5334142869106424*y1 - 1.272736789213631*y2 + 0.9258856042207512*y3 - 0.18656310191776226*y4
	e.kD = 0.08783463138207234*y1 - 0.1694162967925622*y2 + 0.08588057951595272*y3 - 0.00429891410546283*y4
	e.kE = -0.042416883008123074*y1 + 0.1115693827987602*y2 - 0.09764676325265872*y3 + 0.028494263462021576*y4
}

// decideMode fixes the attack-or-release decision and the slew rate for
// the next sub-block, based on the detector state carried from the
// previous sample.
func (e *gainEnvelope) decideMode(detectorAverage float64) {
	if !core.IsFinite(detectorAverage) {
		detectorAverage = 1
	}

	// Pre-warp so the post-integration sin() lands on the desired gain.
	scaled := math.Asin(detectorAverage) / piOverTwo
	e.scaledDesiredGain = scaled

	isReleasing := scaled > e.gain

	// Difference between current compression level and the desired level.
	diffDb := linearToDecibels(e.gain / scaled)

	if isReleasing {
		// Release mode: diffDb should be negative dB.
		e.maxAttackDiffDb = -1

		if !core.IsFinite(diffDb) {
			diffDb = -1
		}

		// Adaptive release: deeper compression releases faster. Contain
		// within [-12, 0] then rescale to [0, 3] for the quartic.
		x := core.Clamp(diffDb, -12, 0)
		x = 0.25 * (x + 12)

		x2 := x * x
		x3 := x2 * x
		x4 := x2 * x2
		releaseFrames := e.kA + e.kB*x + e.kC*x2 + e.kD*x3 + e.kE*x4

		dbPerFrame := releaseSpacingDB / releaseFrames
		e.envelopeRate = decibelsToLinear(dbPerFrame)

		return
	}

	// Attack mode: diffDb should be positive dB.
	if !core.IsFinite(diffDb) {
		diffDb = 1
	}

	// While attacking, slew off the largest difference encountered so far.
	if e.maxAttackDiffDb == -1 || e.maxAttackDiffDb < diffDb {
		e.maxAttackDiffDb = diffDb
	}

	effDiffDb := math.Max(0.5, e.maxAttackDiffDb)

	x := 0.25 / effDiffDb
	e.envelopeRate = 1 - math.Pow(x, 1/e.attackFrames)
}

// integrate advances the gain one sample toward the desired level and
// returns the sine-warped gain to apply to the signal.
func (e *gainEnvelope) integrate() float64 {
	if e.envelopeRate < 1 {
		// Attack: exponential approach to the desired gain.
		e.gain += (e.scaledDesiredGain - e.gain) * e.envelopeRate
	} else {
		// Release: exponentially raise gain back toward 1.
		e.gain *= e.envelopeRate
		if e.gain > 1 {
			e.gain = 1
		}
	}

	if !core.IsFinite(e.gain) {
		e.gain = 1
	}

	return math.Sin(piOverTwo * e.gain)
}
