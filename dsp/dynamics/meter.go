package dynamics

import "github.com/cwbudde/algo-dynamics/dsp/core"

// meteringReleaseTime is the display meter's release time constant in
// seconds. Slow on purpose: the meter is for eyes, not for the signal path.
const meteringReleaseTime = 0.325

// meteringTracker follows the applied gain reduction in dB for display.
// New reduction snaps instantly; recovery relaxes exponentially. The value
// never feeds back into the signal path.
type meteringTracker struct {
	gainDB   float64
	releaseK float64
}

func (m *meteringTracker) configure(sampleRate float64) {
	m.releaseK = core.DiscreteTimeConstant(meteringReleaseTime, sampleRate)
}

func (m *meteringTracker) reset() {
	m.gainDB = 0
}

// update feeds the post-warp gain applied to the current sample.
func (m *meteringTracker) update(postWarpGain float64) {
	dbRealGain := linearToDecibels(postWarpGain)
	if !core.IsFinite(dbRealGain) {
		return
	}

	if dbRealGain < m.gainDB {
		m.gainDB = dbRealGain
	} else {
		m.gainDB += (dbRealGain - m.gainDB) * m.releaseK
	}
}

// value returns the current gain reduction in dB (0 or negative).
func (m *meteringTracker) value() float64 {
	return m.gainDB
}
