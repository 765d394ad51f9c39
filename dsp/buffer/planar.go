package buffer

import (
	"math"

	"github.com/cwbudde/algo-dynamics/dsp/core"
)

// Planar holds one sample slice per channel, all of equal length.
// This is the non-interleaved layout real-time processors operate on.
type Planar struct {
	channels [][]float64
	frames   int
}

// NewPlanar returns a zero-filled Planar block with the given channel
// count and frame count. Negative arguments are treated as zero.
func NewPlanar(channels, frames int) *Planar {
	if channels < 0 {
		channels = 0
	}
	if frames < 0 {
		frames = 0
	}

	chs := make([][]float64, channels)
	for i := range chs {
		chs[i] = make([]float64, frames)
	}

	return &Planar{channels: chs, frames: frames}
}

// FromSlices wraps existing channel slices without copying. All slices are
// truncated to the shortest length so every channel exposes the same frame
// count. Mutations through the Planar are visible in the original slices.
func FromSlices(chs [][]float64) *Planar {
	frames := 0
	if len(chs) > 0 {
		frames = len(chs[0])
		for _, ch := range chs[1:] {
			if len(ch) < frames {
				frames = len(ch)
			}
		}
	}

	wrapped := make([][]float64, len(chs))
	for i, ch := range chs {
		wrapped[i] = ch[:frames]
	}

	return &Planar{channels: wrapped, frames: frames}
}

// Channel returns the sample slice for channel i.
func (p *Planar) Channel(i int) []float64 {
	return p.channels[i]
}

// Channels returns the underlying per-channel slices.
func (p *Planar) Channels() [][]float64 {
	return p.channels
}

// NumChannels returns the channel count.
func (p *Planar) NumChannels() int {
	return len(p.channels)
}

// Frames returns the per-channel frame count.
func (p *Planar) Frames() int {
	return p.frames
}

// Zero sets all samples in all channels to 0.
func (p *Planar) Zero() {
	for _, ch := range p.channels {
		core.Zero(ch)
	}
}

// CopyFrom copies as many channels and frames as fit from src.
func (p *Planar) CopyFrom(src *Planar) {
	if src == nil {
		return
	}

	n := len(p.channels)
	if len(src.channels) < n {
		n = len(src.channels)
	}

	for i := 0; i < n; i++ {
		core.CopyInto(p.channels[i], src.channels[i])
	}
}

// Peak returns the largest absolute sample value across all channels.
func (p *Planar) Peak() float64 {
	peak := 0.0
	for _, ch := range p.channels {
		for _, s := range ch {
			if v := math.Abs(s); v > peak {
				peak = v
			}
		}
	}

	return peak
}
