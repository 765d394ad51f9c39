package dynamics

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-dynamics/dsp/buffer"
	"github.com/cwbudde/algo-dynamics/dsp/core"
	"github.com/cwbudde/algo-dynamics/dsp/param"
)

const (
	// Default compressor parameters.
	defaultThresholdDB  = -24.0
	defaultRatio        = 12.0
	defaultKneeDB       = 30.0
	defaultAttackTime   = 0.003
	defaultReleaseTime  = 0.25
	defaultPreDelayTime = 0.006
	defaultPostGainDB   = 0.0

	// Parameter validation ranges.
	minThresholdDB  = -100.0
	maxThresholdDB  = 0.0
	minRatio        = 1.0
	maxRatio        = 100.0
	minKneeDB       = 0.0
	maxKneeDB       = 40.0
	minAttackTimeS  = 0.0
	maxAttackTimeS  = 1.0
	minReleaseTimeS = 0.001
	maxReleaseTimeS = 5.0
	minPreDelayTime = 0.0
	maxPreDelayTime = 1.0
	minPostGainDB   = -24.0
	maxPostGainDB   = 24.0

	// defaultMaxDelayFrames bounds the look-ahead delay line.
	defaultMaxDelayFrames = 1024

	// subBlockFrames is the granularity of attack/release mode decisions:
	// decided once per sub-block, applied uniformly within it. A CPU vs
	// audible-adaptiveness tradeoff.
	subBlockFrames = 32

	// effectBlend fixes the wet path at full level; the dry path is the
	// complement.
	effectBlend = 1.0
)

// Option configures a LookaheadCompressor at construction time.
type Option func(*compressorConfig)

type compressorConfig struct {
	maxDelayFrames int
}

// WithMaxDelayFrames sets the look-ahead delay line capacity in frames.
// The value is rounded up to a power of two; the usable delay is capped at
// capacity-2 frames.
func WithMaxDelayFrames(frames int) Option {
	return func(cfg *compressorConfig) {
		if frames > 0 {
			cfg.maxDelayFrames = frames
		}
	}
}

// LookaheadCompressor is a look-ahead, feed-forward dynamic-range
// compressor. The gain-reduction envelope is computed from the undelayed
// multichannel input and applied to a delayed copy of the signal, so
// sudden transients are caught before they reach the output.
//
// ProcessInPlace and Reset must run on a single render thread; they are
// allocation-free and lock-free. Parameter setters and MeteringDB may be
// called concurrently from other goroutines.
type LookaheadCompressor struct {
	sampleRate  float64
	numChannels int

	// Smoothed parameters, published by the control thread and evaluated
	// once per block on the render thread.
	threshold *param.Smoothed
	ratio     *param.Smoothed
	knee      *param.Smoothed
	attack    *param.Smoothed
	release   *param.Smoothed
	preDelay  *param.Smoothed
	postGain  *param.Smoothed

	curve    curveParams
	delay    *lookaheadBuffer
	detector envelopeDetector
	envelope gainEnvelope
	meter    meteringTracker

	// gainScratch holds per-sample total gains for one sub-block so the
	// gain application is a single block multiply per channel.
	gainScratch []float64

	// meterBits mirrors the metering value for lock-free UI reads.
	meterBits atomic.Uint64
}

// NewLookaheadCompressor creates a compressor with broadcast-style
// defaults: threshold -24 dB, ratio 12:1, knee 30 dB, attack 3 ms,
// release 250 ms, 6 ms look-ahead. All state is allocated here; nothing on
// the processing path allocates afterwards.
func NewLookaheadCompressor(sampleRate float64, numChannels int, opts ...Option) (*LookaheadCompressor, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("lookahead compressor sample rate must be positive and finite: %f", sampleRate)
	}

	if numChannels < 1 {
		return nil, fmt.Errorf("lookahead compressor needs at least one channel: %d", numChannels)
	}

	cfg := compressorConfig{maxDelayFrames: defaultMaxDelayFrames}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	// The pre-delay must not ramp: every intermediate frame count would
	// trigger a delay-line reset, so it snaps straight to the target.
	preDelay, err := param.NewSmoothedCoeff(defaultPreDelayTime, 1)
	if err != nil {
		return nil, err
	}

	c := &LookaheadCompressor{
		sampleRate:  sampleRate,
		numChannels: numChannels,
		threshold:   param.NewSmoothed(defaultThresholdDB),
		ratio:       param.NewSmoothed(defaultRatio),
		knee:        param.NewSmoothed(defaultKneeDB),
		attack:      param.NewSmoothed(defaultAttackTime),
		release:     param.NewSmoothed(defaultReleaseTime),
		preDelay:    preDelay,
		postGain:    param.NewSmoothed(defaultPostGainDB),
		delay:       newLookaheadBuffer(numChannels, cfg.maxDelayFrames),
		gainScratch: make([]float64, subBlockFrames),
	}

	c.detector.configure(sampleRate)
	c.meter.configure(sampleRate)
	c.delay.setDelayFrames(int(defaultPreDelayTime * sampleRate))
	c.Reset()

	return c, nil
}

// SetThreshold sets the compression threshold in dB.
func (c *LookaheadCompressor) SetThreshold(dB float64) error {
	if dB < minThresholdDB || dB > maxThresholdDB || !core.IsFinite(dB) {
		return fmt.Errorf("lookahead compressor threshold must be in [%f, %f]: %f",
			minThresholdDB, maxThresholdDB, dB)
	}

	c.threshold.Set(dB)

	return nil
}

// SetRatio sets the compression ratio: 1 is no compression, 100 is close
// to limiting.
func (c *LookaheadCompressor) SetRatio(ratio float64) error {
	if ratio < minRatio || ratio > maxRatio || !core.IsFinite(ratio) {
		return fmt.Errorf("lookahead compressor ratio must be in [%f, %f]: %f",
			minRatio, maxRatio, ratio)
	}

	c.ratio.Set(ratio)

	return nil
}

// SetKnee sets the soft-knee width in dB above the threshold.
func (c *LookaheadCompressor) SetKnee(kneeDB float64) error {
	if kneeDB < minKneeDB || kneeDB > maxKneeDB || !core.IsFinite(kneeDB) {
		return fmt.Errorf("lookahead compressor knee must be in [%f, %f]: %f",
			minKneeDB, maxKneeDB, kneeDB)
	}

	c.knee.Set(kneeDB)

	return nil
}

// SetAttack sets the attack time in seconds. Values below 1 ms are
// processed as 1 ms.
func (c *LookaheadCompressor) SetAttack(seconds float64) error {
	if seconds < minAttackTimeS || seconds > maxAttackTimeS || !core.IsFinite(seconds) {
		return fmt.Errorf("lookahead compressor attack must be in [%f, %f]: %f",
			minAttackTimeS, maxAttackTimeS, seconds)
	}

	c.attack.Set(seconds)

	return nil
}

// SetRelease sets the release time in seconds.
func (c *LookaheadCompressor) SetRelease(seconds float64) error {
	if seconds < minReleaseTimeS || seconds > maxReleaseTimeS || !core.IsFinite(seconds) {
		return fmt.Errorf("lookahead compressor release must be in [%f, %f]: %f",
			minReleaseTimeS, maxReleaseTimeS, seconds)
	}

	c.release.Set(seconds)

	return nil
}

// SetPreDelay sets the look-ahead time in seconds. The effective delay is
// capped by the delay line capacity. Changing the delay audibly resets the
// look-ahead buffer.
func (c *LookaheadCompressor) SetPreDelay(seconds float64) error {
	if seconds < minPreDelayTime || seconds > maxPreDelayTime || !core.IsFinite(seconds) {
		return fmt.Errorf("lookahead compressor pre-delay must be in [%f, %f]: %f",
			minPreDelayTime, maxPreDelayTime, seconds)
	}

	c.preDelay.Set(seconds)

	return nil
}

// SetPostGain sets the output trim in dB, applied on top of the automatic
// makeup gain.
func (c *LookaheadCompressor) SetPostGain(dB float64) error {
	if dB < minPostGainDB || dB > maxPostGainDB || !core.IsFinite(dB) {
		return fmt.Errorf("lookahead compressor post gain must be in [%f, %f]: %f",
			minPostGainDB, maxPostGainDB, dB)
	}

	c.postGain.Set(dB)

	return nil
}

// Threshold returns the published threshold target in dB.
func (c *LookaheadCompressor) Threshold() float64 { return c.threshold.Target() }

// Ratio returns the published compression ratio target.
func (c *LookaheadCompressor) Ratio() float64 { return c.ratio.Target() }

// Knee returns the published knee width target in dB.
func (c *LookaheadCompressor) Knee() float64 { return c.knee.Target() }

// Attack returns the published attack time target in seconds.
func (c *LookaheadCompressor) Attack() float64 { return c.attack.Target() }

// Release returns the published release time target in seconds.
func (c *LookaheadCompressor) Release() float64 { return c.release.Target() }

// PreDelay returns the published look-ahead time target in seconds.
func (c *LookaheadCompressor) PreDelay() float64 { return c.preDelay.Target() }

// PostGain returns the published output trim target in dB.
func (c *LookaheadCompressor) PostGain() float64 { return c.postGain.Target() }

// SampleRate returns the sample rate in Hz.
func (c *LookaheadCompressor) SampleRate() float64 { return c.sampleRate }

// Channels returns the channel count the processor was built for.
func (c *LookaheadCompressor) Channels() int { return c.numChannels }

// MeteringDB returns the current gain reduction in dB (0 or negative) for
// display. Safe to poll from any goroutine at any cadence.
func (c *LookaheadCompressor) MeteringDB() float64 {
	return math.Float64frombits(c.meterBits.Load())
}

// Reset zeroes the delay line and all envelope and metering state.
// Configured parameters and the cached curve are preserved. Render thread
// only.
func (c *LookaheadCompressor) Reset() {
	c.delay.reset()
	c.detector.reset()
	c.envelope.reset()
	c.meter.reset()
	c.meterBits.Store(math.Float64bits(0))
}

// ProcessInPlace compresses one block of planar samples in place. The
// slice count must match the configured channel count; mismatched blocks
// are left untouched. Channels longer than the shortest one are processed
// up to the shortest length.
func (c *LookaheadCompressor) ProcessInPlace(channels [][]float64) {
	if len(channels) != c.numChannels {
		return
	}

	frames := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) < frames {
			frames = len(ch)
		}
	}

	if frames == 0 {
		return
	}

	// Evaluate the smoothed parameters once per block.
	thresholdDB := c.threshold.Eval()
	ratio := c.ratio.Eval()
	kneeDB := c.knee.Eval()
	attackTime := c.attack.Eval()
	releaseTime := c.release.Eval()
	preDelayTime := c.preDelay.Eval()
	postGainDB := c.postGain.Eval()

	// The knee solve runs only when the parameter triple changed.
	c.curve.update(thresholdDB, kneeDB, ratio)

	c.envelope.updateTiming(attackTime, releaseTime, c.sampleRate)

	masterLinearGain := decibelsToLinear(postGainDB) * c.curve.makeupGain

	c.delay.setDelayFrames(int(preDelayTime * c.sampleRate))

	// Fixed sub-block partition; the tail shorter than subBlockFrames is
	// processed as a final partial sub-block so no frames are dropped.
	frameIndex := 0
	for frameIndex < frames {
		n := subBlockFrames
		if remainder := frames - frameIndex; remainder < n {
			n = remainder
		}

		c.processSubBlock(channels, frameIndex, n, masterLinearGain)
		frameIndex += n
	}

	c.meterBits.Store(math.Float64bits(c.meter.value()))
}

// ProcessBlock compresses a planar block in place.
func (c *LookaheadCompressor) ProcessBlock(blk *buffer.Planar) {
	if blk == nil {
		return
	}

	c.ProcessInPlace(blk.Channels())
}

// processSubBlock decides the attack/release mode once, then runs the
// per-sample detector, gain integration and metering while streaming
// through the look-ahead delay line.
func (c *LookaheadCompressor) processSubBlock(channels [][]float64, start, n int, masterLinearGain float64) {
	const (
		dryMix = 1 - effectBlend
		wetMix = effectBlend
	)

	c.envelope.decideMode(c.detector.average)

	gains := c.gainScratch[:n]

	for i := 0; i < n; i++ {
		frame := start + i

		// Feed-forward side-chain: peak of the raw, undelayed input.
		peak := 0.0
		for ch := range channels {
			s := channels[ch][frame]
			c.delay.write(ch, s)

			if abs := math.Abs(s); abs > peak {
				peak = abs
			}
		}

		c.detector.processSample(peak, &c.curve)
		postWarpGain := c.envelope.integrate()
		c.meter.update(postWarpGain)

		gains[i] = dryMix + wetMix*masterLinearGain*postWarpGain

		for ch := range channels {
			channels[ch][frame] = c.delay.read(ch)
		}

		c.delay.advance()
	}

	for ch := range channels {
		vecmath.MulBlockInPlace(channels[ch][start:start+n], gains)
	}
}

// MakeupGain returns the automatic makeup gain (linear) for the published
// parameter targets. Like CurveOutputLevel it works on a private curve and
// is safe to call while audio runs.
func (c *LookaheadCompressor) MakeupGain() float64 {
	var curve curveParams
	curve.update(c.threshold.Target(), c.knee.Target(), c.ratio.Target())

	return curve.makeupGain
}

// CurveOutputLevel computes the steady-state static-curve output magnitude
// for a given input magnitude using the published parameter targets. This
// allows visualizing the compression curve; it does not touch processing
// state and is safe to call while audio runs.
func (c *LookaheadCompressor) CurveOutputLevel(inputMagnitude float64) float64 {
	var curve curveParams
	curve.update(c.threshold.Target(), c.knee.Target(), c.ratio.Target())

	return curve.saturate(math.Abs(inputMagnitude), curve.k)
}
