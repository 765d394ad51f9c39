// Package param provides wait-free smoothed parameter values for handing
// control-thread changes to a real-time render thread. A control thread
// publishes targets with Set; the render thread advances the audible value
// with Eval at its own cadence. Neither side ever blocks.
package param

import (
	"fmt"
	"math"
	"sync/atomic"
)

const (
	// defaultCoeff is the per-Eval exponential smoothing factor.
	defaultCoeff = 0.5

	// snapEpsilon is the distance below which Eval snaps to the target,
	// ending the smoothing ramp.
	snapEpsilon = 1e-4

	minSmoothedCoeff = 1e-6
	maxSmoothedCoeff = 1.0
)

// Smoothed is a single parameter value with one-pole smoothing between a
// published target and the value the render thread consumes.
//
// Set may be called from any goroutine. Eval, Value and Snap must only be
// called from the render thread; they are not safe for concurrent use with
// each other.
type Smoothed struct {
	target  atomic.Uint64 // float64 bits, written by the control thread
	current float64       // render-thread state
	coeff   float64
}

// NewSmoothed returns a Smoothed holding initial with the default
// smoothing factor.
func NewSmoothed(initial float64) *Smoothed {
	s, _ := NewSmoothedCoeff(initial, defaultCoeff)
	return s
}

// NewSmoothedCoeff returns a Smoothed with an explicit per-Eval smoothing
// factor in (0, 1]. A factor of 1 disables smoothing.
func NewSmoothedCoeff(initial, coeff float64) (*Smoothed, error) {
	if coeff < minSmoothedCoeff || coeff > maxSmoothedCoeff ||
		math.IsNaN(coeff) {
		return nil, fmt.Errorf("param: smoothing coeff must be in (%g, %g]: %f",
			0.0, maxSmoothedCoeff, coeff)
	}

	if !isFinite(initial) {
		initial = 0
	}

	s := &Smoothed{current: initial, coeff: coeff}
	s.target.Store(math.Float64bits(initial))

	return s, nil
}

// Set publishes a new target value. Non-finite values are ignored so the
// render thread can never observe NaN or Inf. Wait-free.
func (s *Smoothed) Set(v float64) {
	if !isFinite(v) {
		return
	}

	s.target.Store(math.Float64bits(v))
}

// Target returns the most recently published target.
func (s *Smoothed) Target() float64 {
	return math.Float64frombits(s.target.Load())
}

// Eval advances the smoothed value one step toward the current target and
// returns it. Render thread only.
func (s *Smoothed) Eval() float64 {
	target := s.Target()

	s.current += (target - s.current) * s.coeff
	if math.Abs(target-s.current) < snapEpsilon {
		s.current = target
	}

	return s.current
}

// Value returns the last evaluated value without advancing the ramp.
// Render thread only.
func (s *Smoothed) Value() float64 {
	return s.current
}

// Snap forces the smoothed value to the current target immediately,
// discarding any ramp in progress. Render thread only.
func (s *Smoothed) Snap() {
	s.current = s.Target()
}

func isFinite(v float64) bool {
	return !(math.IsNaN(v) || math.IsInf(v, 0))
}
