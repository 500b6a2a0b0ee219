package param

import (
	"math"
	"sync/atomic"
)

// Ramped is a float parameter that moves linearly to a new target when it
// is set. The zero value holds 0 and is ready to use.
//
// While ramping, Current is slope*remaining + offset, so it reaches the
// target exactly when remaining drops to zero.
type Ramped struct {
	ChangeDetector

	bits       atomic.Uint64
	rampFrames atomic.Int32

	// Render-side state.
	offset    float64
	slope     float64
	remaining int
}

// NewRamped returns a parameter holding value with no ramp in progress.
func NewRamped(value float64) *Ramped {
	r := &Ramped{}
	r.Reset(value)
	return r
}

// Set records value as the new target. Safe from any goroutine.
func (r *Ramped) Set(value float64) {
	r.bits.Store(math.Float64bits(value))
	r.markChanged()
}

// SetRamped records value together with the ramp length Next should use
// when the render side picks it up.
func (r *Ramped) SetRamped(value float64, frames int) {
	if frames < 0 {
		frames = 0
	}
	if frames > math.MaxInt32 {
		frames = math.MaxInt32
	}
	r.rampFrames.Store(int32(frames))
	r.Set(value)
}

// Value returns the latest target written by Set.
func (r *Ramped) Value() float64 {
	return math.Float64frombits(r.bits.Load())
}

// BlockFinalValue returns the value the parameter holds once the current
// block is done. Processors that render a block at one constant value use
// this instead of stepping the ramp per frame.
func (r *Ramped) BlockFinalValue() float64 {
	return r.Value()
}

// StartRamping consumes a pending change and starts a ramp of the given
// length from the current output toward the new target. A zero length snaps.
// It reports whether a ramp is active afterwards.
func (r *Ramped) StartRamping(frames int) bool {
	if r.WasChanged() {
		r.initRamp(frames)
	}
	return r.remaining != 0
}

func (r *Ramped) initRamp(frames int) {
	target := r.Value()
	if frames > 0 {
		r.slope = (r.Current() - target) / float64(frames)
		r.remaining = frames
	} else {
		r.slope = 0
		r.remaining = 0
	}
	r.offset = target
}

// IsRamping reports whether the ramp still has frames left.
func (r *Ramped) IsRamping() bool {
	return r.remaining != 0
}

// Current returns the output for the current frame without stepping.
func (r *Ramped) Current() float64 {
	return r.slope*float64(r.remaining) + r.offset
}

// Step advances the ramp by one frame.
func (r *Ramped) Step() {
	if r.remaining > 0 {
		r.remaining--
	}
}

// StepBy advances the ramp by n frames.
func (r *Ramped) StepBy(n int) {
	switch {
	case n >= r.remaining:
		r.remaining = 0
	case n > 0:
		r.remaining -= n
	}
}

// StepAndGet picks up a pending change as a ramp of durationHint frames,
// returns the value for the current frame and steps once.
func (r *Ramped) StepAndGet(durationHint int) float64 {
	if r.WasChanged() {
		r.initRamp(durationHint)
	}
	if r.remaining == 0 {
		return r.offset
	}
	v := r.Current()
	r.remaining--
	return v
}

// Next is StepAndGet using the length given to the last SetRamped call.
func (r *Ramped) Next() float64 {
	return r.StepAndGet(int(r.rampFrames.Load()))
}

// StopRamping jumps to the latest target and drops any pending change.
func (r *Ramped) StopRamping() {
	r.WasChanged()
	r.remaining = 0
	r.offset = r.Value()
}

// Reset stores value, cancels ramping and marks any pending change as seen.
// It must not race with Set.
func (r *Ramped) Reset(value float64) {
	r.bits.Store(math.Float64bits(value))
	r.lastSeen = r.counter.Load()
	r.slope = 0
	r.remaining = 0
	r.offset = value
}
