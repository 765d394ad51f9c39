package dynamics

import "github.com/cwbudde/algo-dynamics/dsp/core"

const (
	// satReleaseTime is the detector's release time constant in seconds.
	satReleaseTime = 0.0025

	// minDetectorInput guards the attenuation division; inputs at or below
	// this level are treated as unity attenuation.
	minDetectorInput = 1e-4

	// minAttenuationDB floors the release-rate computation so very small
	// attenuations cannot produce degenerate release rates.
	minAttenuationDB = 2.0
)

// envelopeDetector tracks a shaped peak of the undelayed input with an
// instant attack and an adaptive release. Its average stays within [0, 1]:
// 1 means no attenuation requested, smaller values mean deeper compression.
type envelopeDetector struct {
	average          float64
	satReleaseFrames float64
}

func (d *envelopeDetector) configure(sampleRate float64) {
	d.satReleaseFrames = satReleaseTime * sampleRate
}

func (d *envelopeDetector) reset() {
	d.average = 0
}

// processSample feeds one cross-channel peak value through the shaping
// curve and updates the running average. Returns the updated average.
func (d *envelopeDetector) processSample(peak float64, curve *curveParams) float64 {
	absInput := peak
	if absInput < 0 {
		absInput = -absInput
	}

	// Shaping curve: linear up to the threshold, then knee, then ratio.
	shaped := curve.saturate(absInput, curve.k)

	attenuation := 1.0
	if absInput > minDetectorInput {
		attenuation = shaped / absInput
	}

	attenuationDB := -linearToDecibels(attenuation)
	if attenuationDB < minAttenuationDB {
		attenuationDB = minAttenuationDB
	}

	dbPerFrame := attenuationDB / d.satReleaseFrames
	satReleaseRate := decibelsToLinear(dbPerFrame) - 1

	// Deeper attenuation snaps instantly; recovery follows the release rate.
	rate := 1.0
	if attenuation > d.average {
		rate = satReleaseRate
	}

	d.average += (attenuation - d.average) * rate
	if d.average > 1 {
		d.average = 1
	}

	if !core.IsFinite(d.average) {
		// Never propagate NaN/Inf downstream: fully open, no compression.
		d.average = 1
	}

	return d.average
}
