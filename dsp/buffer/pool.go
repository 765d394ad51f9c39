package buffer

import (
	"sync"

	"github.com/cwbudde/algo-dynamics/dsp/core"
)

// Pool provides sync.Pool-based Planar reuse to reduce GC pressure in
// render loops that cannot preallocate every block shape up front.
type Pool struct {
	pool sync.Pool
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &Planar{}
			},
		},
	}
}

// Get returns a zeroed Planar with the requested shape. Blocks pulled from
// the pool are reshaped in place when their capacity allows it. Callers
// must return the block via Put when done.
func (p *Pool) Get(channels, frames int) *Planar {
	b := p.pool.Get().(*Planar)
	b.reshape(channels, frames)
	b.Zero()

	return b
}

// Put returns a Planar to the pool for reuse.
// The caller must not use the block after calling Put.
func (p *Pool) Put(b *Planar) {
	if b == nil {
		return
	}
	p.pool.Put(b)
}

// reshape resizes the block to the given shape, reusing existing channel
// slices where capacity permits.
func (b *Planar) reshape(channels, frames int) {
	if channels < 0 {
		channels = 0
	}
	if frames < 0 {
		frames = 0
	}

	if cap(b.channels) >= channels {
		b.channels = b.channels[:channels]
	} else {
		grown := make([][]float64, channels)
		copy(grown, b.channels)
		b.channels = grown
	}

	for i := range b.channels {
		b.channels[i] = core.EnsureLen(b.channels[i], frames)
	}

	b.frames = frames
}
