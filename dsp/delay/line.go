// Package delay provides the circular sample buffer behind modulated delay
// effects.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-flanger/dsp/core"
	"github.com/cwbudde/algo-flanger/dsp/interp"
)

// Line is a circular delay line whose capacity is a power of two, so the
// read and write positions wrap with a bitmask.
//
// Offsets count backwards from the most recent write: offset 1 is the last
// sample written, offset Len() (and 0) the oldest one still held.
type Line struct {
	buffer   []float64
	mask     int
	writePos int
}

// New returns a zeroed delay line holding at least size samples.
func New(size int) (*Line, error) {
	d := &Line{}
	if err := d.SetSizeInSamples(size); err != nil {
		return nil, err
	}
	return d, nil
}

// SetSizeInSamples reallocates the buffer for at least size samples and
// clears it. Not safe while another goroutine reads or writes the line.
func (d *Line) SetSizeInSamples(size int) error {
	if size <= 0 {
		return fmt.Errorf("delay size must be > 0: %d", size)
	}
	capacity := core.NextPowerOfTwo(size)
	if capacity == len(d.buffer) {
		d.Reset()
		return nil
	}
	d.buffer = make([]float64, capacity)
	d.mask = capacity - 1
	d.writePos = 0
	return nil
}

// Len returns the capacity in samples.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write stores one sample and advances the write position.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos = (d.writePos + 1) & d.mask
}

// ReadInt returns the sample written offset writes ago.
func (d *Line) ReadInt(offset int) float64 {
	return d.buffer[(d.writePos-offset)&d.mask]
}

// Read returns the sample delay writes ago, linearly interpolating between
// the two neighbouring integer offsets. delay must lie in [0, Len()-1).
func (d *Line) Read(delay float64) float64 {
	i := int(delay)
	return interp.Linear2(delay-float64(i), d.ReadInt(i), d.ReadInt(i+1))
}

// ReadHermite reads with cubic Hermite interpolation. delay must lie in
// [1, Len()-2).
func (d *Line) ReadHermite(delay float64) float64 {
	p := int(math.Floor(delay))
	t := delay - float64(p)
	return interp.Hermite4(t, d.ReadInt(p-1), d.ReadInt(p), d.ReadInt(p+1), d.ReadInt(p+2))
}

// Reset clears line state.
func (d *Line) Reset() {
	core.Zero(d.buffer)
	d.writePos = 0
}
