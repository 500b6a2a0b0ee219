package main

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-flanger/dsp/buffer"
	"github.com/cwbudde/algo-flanger/dsp/render"
	"github.com/cwbudde/algo-flanger/plugin"
)

const bytesPerSample = 4

// stream is the audio-thread actor: the device pulls interleaved float32
// little-endian bytes from Read, which renders them block by block through
// the unit. Parameter changes from the keyboard reach it only through the
// unit's lock-free setters.
type stream struct {
	unit     *plugin.Unit
	src      source
	channels int
	block    int

	input     *buffer.Planar
	output    [][]float64
	pull      render.InputPuller
	timestamp int64

	peak     atomic.Uint64
	failures atomic.Uint64
}

func newStream(unit *plugin.Unit, src source) *stream {
	s := &stream{
		unit:     unit,
		src:      src,
		channels: unit.Channels(),
		block:    unit.MaxFrames(),
	}

	s.input = buffer.New(s.channels, s.block)
	s.output = make([][]float64, s.channels)

	s.pull = func(_ int64, frames int, dst [][]float64) error {
		s.src.fill(s.input.Slices(), frames)
		s.input.Views(dst, frames)
		return nil
	}

	return s
}

// Read fills p with whole frames. Trailing bytes that do not make up a
// frame are left for the next call.
func (s *stream) Read(p []byte) (int, error) {
	frameBytes := bytesPerSample * s.channels
	remaining := len(p) / frameBytes
	n := 0

	for remaining > 0 {
		frames := min(remaining, s.block)

		for ch := range s.output {
			s.output[ch] = nil
		}
		if status := s.unit.Render(s.timestamp, frames, nil, s.pull, s.output); status != render.StatusOK {
			s.failures.Add(1)
			clear(p[n : n+frames*frameBytes])
		} else {
			s.encode(p[n:], frames)
		}

		s.timestamp += int64(frames)
		n += frames * frameBytes
		remaining -= frames
	}

	return n, nil
}

func (s *stream) encode(dst []byte, frames int) {
	peak := 0.0
	for ch := range s.output {
		peak = max(peak, vecmath.MaxAbs(s.output[ch][:frames]))
	}
	s.raisePeak(peak)

	i := 0
	for f := 0; f < frames; f++ {
		for ch := range s.output {
			binary.LittleEndian.PutUint32(dst[i:], math.Float32bits(float32(s.output[ch][f])))
			i += bytesPerSample
		}
	}
}

// raisePeak publishes v as the peak unless a higher one is already stored.
// It retries when takePeak clears the value concurrently.
func (s *stream) raisePeak(v float64) {
	for {
		old := s.peak.Load()
		if v <= math.Float64frombits(old) {
			return
		}
		if s.peak.CompareAndSwap(old, math.Float64bits(v)) {
			return
		}
	}
}

// takePeak returns the highest absolute output sample since the previous
// call and clears it.
func (s *stream) takePeak() float64 {
	return math.Float64frombits(s.peak.Swap(0))
}
