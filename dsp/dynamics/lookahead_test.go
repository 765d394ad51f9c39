package dynamics

import "testing"

func TestNextPowerOf2(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{64, 64},
		{65, 128},
		{1000, 1024},
		{1024, 1024},
	}

	for _, tt := range tests {
		if got := nextPowerOf2(tt.in); got != tt.want {
			t.Errorf("nextPowerOf2(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLookaheadBufferCapacityRounding(t *testing.T) {
	b := newLookaheadBuffer(2, 1000)
	if b.capacity() != 1024 {
		t.Fatalf("capacity = %d, want 1024", b.capacity())
	}
	if b.channels() != 2 {
		t.Fatalf("channels = %d, want 2", b.channels())
	}

	// Tiny requested capacities still leave room for delay+2.
	small := newLookaheadBuffer(1, 0)
	if small.capacity() < 4 {
		t.Fatalf("capacity = %d, want >= 4", small.capacity())
	}
}

func TestLookaheadBufferImpulseRoundTrip(t *testing.T) {
	const delay = 5

	b := newLookaheadBuffer(1, 64)
	b.setDelayFrames(delay)

	// Write a unit impulse, then silence. The impulse must come back after
	// exactly delay advances; every other read in the window is zero.
	b.write(0, 1)
	for i := 0; i < delay; i++ {
		if got := b.read(0); got != 0 {
			t.Fatalf("read %d = %v, want 0 before the delay elapses", i, got)
		}
		b.advance()
		b.write(0, 0)
	}

	if got := b.read(0); got != 1 {
		t.Fatalf("delayed read = %v, want the impulse back unchanged", got)
	}
}

func TestLookaheadBufferDelayClamping(t *testing.T) {
	b := newLookaheadBuffer(1, 64)

	b.setDelayFrames(100000)
	if b.delayFrames != b.capacity()-2 {
		t.Fatalf("delayFrames = %d, want clamp to %d", b.delayFrames, b.capacity()-2)
	}

	b.setDelayFrames(-3)
	if b.delayFrames != 0 {
		t.Fatalf("delayFrames = %d, want clamp to 0", b.delayFrames)
	}
}

func TestLookaheadBufferDelayChangeResets(t *testing.T) {
	b := newLookaheadBuffer(2, 64)
	b.setDelayFrames(0)

	// Fill with non-silent history.
	for i := 0; i < 48; i++ {
		b.write(0, 0.5)
		b.write(1, -0.5)
		b.advance()
	}

	b.setDelayFrames(8)

	if b.readIndex != 0 || b.writeIndex != 8 {
		t.Fatalf("indices after reset = (%d, %d), want (0, 8)", b.readIndex, b.writeIndex)
	}

	for ch := 0; ch < 2; ch++ {
		for i, v := range b.data[ch] {
			if v != 0 {
				t.Fatalf("channel %d sample %d = %v, want zeroed buffer", ch, i, v)
			}
		}
	}

	// Same delay again must not reset.
	b.write(0, 1)
	b.setDelayFrames(8)
	if b.data[0][8] != 1 {
		t.Fatal("unchanged delay must not clear the buffer")
	}
}

func TestLookaheadBufferIndexInvariant(t *testing.T) {
	b := newLookaheadBuffer(1, 32)
	b.setDelayFrames(7)

	for i := 0; i < 200; i++ {
		if b.writeIndex != (b.readIndex+b.delayFrames)&b.mask {
			t.Fatalf("invariant broken at step %d: write=%d read=%d delay=%d",
				i, b.writeIndex, b.readIndex, b.delayFrames)
		}
		if b.readIndex >= b.capacity() || b.writeIndex >= b.capacity() {
			t.Fatalf("index out of range at step %d: write=%d read=%d",
				i, b.writeIndex, b.readIndex)
		}

		b.write(0, float64(i))
		b.advance()
	}
}
