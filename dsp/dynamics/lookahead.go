package dynamics

import "github.com/cwbudde/algo-dynamics/dsp/core"

// lookaheadBuffer is a fixed-capacity per-channel circular delay line. The
// capacity is a power of two so index wraparound is a single bitmask AND.
// The invariant writeIndex == (readIndex + delayFrames) mod capacity holds
// between samples; delayFrames never exceeds capacity-2.
type lookaheadBuffer struct {
	data        [][]float64
	mask        int
	readIndex   int
	writeIndex  int
	delayFrames int
}

// newLookaheadBuffer allocates zeroed storage for the given channel count
// and at least maxDelayFrames capacity, rounded up to a power of two.
func newLookaheadBuffer(channels, maxDelayFrames int) *lookaheadBuffer {
	capacity := nextPowerOf2(maxDelayFrames)
	if capacity < 4 {
		capacity = 4
	}

	data := make([][]float64, channels)
	for i := range data {
		data[i] = make([]float64, capacity)
	}

	return &lookaheadBuffer{data: data, mask: capacity - 1}
}

func (b *lookaheadBuffer) capacity() int {
	return b.mask + 1
}

func (b *lookaheadBuffer) channels() int {
	return len(b.data)
}

// setDelayFrames clamps frames to [0, capacity-2] and applies it. Changing
// the delay zeroes the buffer and restarts the indices; the audible reset
// is deliberate, delay-time changes are not crossfaded.
func (b *lookaheadBuffer) setDelayFrames(frames int) {
	if frames < 0 {
		frames = 0
	}
	if frames > b.capacity()-2 {
		frames = b.capacity() - 2
	}

	if frames == b.delayFrames {
		return
	}

	b.delayFrames = frames
	b.reset()
}

// reset zeroes the storage and restores the index invariant for the
// current delay.
func (b *lookaheadBuffer) reset() {
	for _, ch := range b.data {
		core.Zero(ch)
	}

	b.readIndex = 0
	b.writeIndex = b.delayFrames
}

// write stores a sample for channel ch at the write position.
func (b *lookaheadBuffer) write(ch int, sample float64) {
	b.data[ch][b.writeIndex] = sample
}

// read returns the delayed sample for channel ch at the read position.
func (b *lookaheadBuffer) read(ch int) float64 {
	return b.data[ch][b.readIndex]
}

// advance moves both indices forward one frame, wrapping at capacity.
func (b *lookaheadBuffer) advance() {
	b.readIndex = (b.readIndex + 1) & b.mask
	b.writeIndex = (b.writeIndex + 1) & b.mask
}

// nextPowerOf2 returns the smallest power of two >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
