package buffer

import (
	"math"
	"testing"
)

func TestNewPlanar(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		frames   int
	}{
		{name: "stereo block", channels: 2, frames: 128},
		{name: "mono block", channels: 1, frames: 64},
		{name: "empty", channels: 0, frames: 0},
		{name: "negative clamped", channels: -1, frames: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewPlanar(tt.channels, tt.frames)

			wantCh := tt.channels
			if wantCh < 0 {
				wantCh = 0
			}
			wantFrames := tt.frames
			if wantFrames < 0 {
				wantFrames = 0
			}

			if b.NumChannels() != wantCh {
				t.Fatalf("NumChannels() = %d, want %d", b.NumChannels(), wantCh)
			}
			if b.Frames() != wantFrames {
				t.Fatalf("Frames() = %d, want %d", b.Frames(), wantFrames)
			}

			for c := 0; c < b.NumChannels(); c++ {
				for i, v := range b.Channel(c) {
					if v != 0 {
						t.Fatalf("channel %d sample %d = %v, want 0", c, i, v)
					}
				}
			}
		})
	}
}

func TestFromSlicesTruncatesToShortest(t *testing.T) {
	b := FromSlices([][]float64{
		make([]float64, 10),
		make([]float64, 7),
	})

	if b.Frames() != 7 {
		t.Fatalf("Frames() = %d, want 7", b.Frames())
	}
	for c := 0; c < b.NumChannels(); c++ {
		if len(b.Channel(c)) != 7 {
			t.Fatalf("channel %d len = %d, want 7", c, len(b.Channel(c)))
		}
	}
}

func TestFromSlicesSharesStorage(t *testing.T) {
	raw := [][]float64{{1, 2, 3}}
	b := FromSlices(raw)

	b.Channel(0)[1] = 42
	if raw[0][1] != 42 {
		t.Fatal("mutation through Planar not visible in source slice")
	}
}

func TestPlanarZeroAndCopyFrom(t *testing.T) {
	src := NewPlanar(2, 4)
	for c := 0; c < 2; c++ {
		for i := range src.Channel(c) {
			src.Channel(c)[i] = float64(c*10 + i)
		}
	}

	dst := NewPlanar(2, 4)
	dst.CopyFrom(src)
	if dst.Channel(1)[3] != 13 {
		t.Fatalf("CopyFrom: dst[1][3] = %v, want 13", dst.Channel(1)[3])
	}

	dst.Zero()
	for c := 0; c < 2; c++ {
		for i, v := range dst.Channel(c) {
			if v != 0 {
				t.Fatalf("Zero: dst[%d][%d] = %v", c, i, v)
			}
		}
	}

	// Copying from nil must be a no-op.
	dst.CopyFrom(nil)
}

func TestPlanarPeak(t *testing.T) {
	b := NewPlanar(2, 8)
	b.Channel(0)[3] = 0.25
	b.Channel(1)[5] = -0.75

	if got := b.Peak(); math.Abs(got-0.75) > 1e-15 {
		t.Fatalf("Peak() = %v, want 0.75", got)
	}
}
