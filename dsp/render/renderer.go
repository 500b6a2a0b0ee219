package render

import (
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-flanger/dsp/buffer"
	"github.com/cwbudde/algo-flanger/dsp/core"
)

// Kernel is the audio processor driven by a Renderer.
type Kernel interface {
	// OnParameterEvent applies a parameter change before the next frame.
	OnParameterEvent(ev Event)
	// OnMIDIEvent applies a MIDI message before the next frame.
	OnMIDIEvent(ev Event)
	// RenderFrames processes frames samples of every channel. out[ch] may
	// be the same slice as in[ch].
	RenderFrames(in, out [][]float64, frames int)
}

// InputPuller supplies frameCount frames of upstream audio starting at
// timestamp. It either fills in[ch][:frameCount] or replaces in[ch] with its
// own slice of at least frameCount samples.
type InputPuller func(timestamp int64, frameCount int, in [][]float64) error

// Renderer interleaves event dispatch and kernel rendering.
type Renderer struct {
	kernel Kernel

	channels  int
	maxFrames int
	input     *buffer.Planar

	// Per-call slice headers, preallocated so Render does not allocate.
	pulled [][]float64
	ins    [][]float64
	outs   [][]float64

	bypass   atomic.Bool
	failures atomic.Uint64
	lastErr  atomic.Pointer[error]
}

// New returns an unconfigured renderer driving k.
func New(k Kernel) *Renderer {
	return &Renderer{kernel: k}
}

// Configure allocates input storage for channels channels and blocks of up
// to maxFrames frames. Prior configuration is kept on error.
func (r *Renderer) Configure(channels, maxFrames int) error {
	if channels <= 0 {
		return fmt.Errorf("render: channel count must be > 0: %d", channels)
	}
	if maxFrames <= 0 {
		return fmt.Errorf("render: max frames must be > 0: %d", maxFrames)
	}

	r.channels = channels
	r.maxFrames = maxFrames
	r.input = buffer.New(channels, maxFrames)
	r.pulled = make([][]float64, channels)
	r.ins = make([][]float64, channels)
	r.outs = make([][]float64, channels)
	return nil
}

// Channels returns the configured channel count.
func (r *Renderer) Channels() int { return r.channels }

// MaxFrames returns the largest block Render accepts.
func (r *Renderer) MaxFrames() int { return r.maxFrames }

// SetBypass switches between kernel rendering and copying input to output.
// The switch takes effect at the next segment boundary. Safe from any
// goroutine.
func (r *Renderer) SetBypass(on bool) { r.bypass.Store(on) }

// IsBypassed reports the bypass state.
func (r *Renderer) IsBypassed() bool { return r.bypass.Load() }

// Failures returns how many Render calls did not return StatusOK.
func (r *Renderer) Failures() uint64 { return r.failures.Load() }

// LastError returns the most recent input puller error, if any.
func (r *Renderer) LastError() error {
	if p := r.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Render processes frameCount frames. A nil output[ch] is replaced by the
// channel's input buffer, so the block is rendered in place and the host
// reads the result from output[ch] until the next call.
//
// Events whose Offset is at or before a frame are applied before that
// frame renders. Events with an Offset past the block are applied after
// its last frame.
func (r *Renderer) Render(timestamp int64, frameCount int, events []Event, pull InputPuller, output [][]float64) Status {
	if r.input == nil || frameCount < 0 || frameCount > r.maxFrames || len(output) != r.channels {
		return r.fail(StatusInvalidState)
	}
	for _, out := range output {
		if out != nil && len(out) < frameCount {
			return r.fail(StatusInvalidState)
		}
	}
	if pull == nil {
		return r.fail(StatusNoInput)
	}

	r.input.Views(r.pulled, frameCount)
	if err := pull(timestamp, frameCount, r.pulled); err != nil {
		return r.pullFailed(err)
	}
	for _, in := range r.pulled {
		if len(in) < frameCount {
			return r.fail(StatusInvalidState)
		}
	}
	for ch, in := range r.pulled {
		if output[ch] == nil {
			output[ch] = in[:frameCount]
		}
	}

	next := 0
	now := 0
	for now < frameCount {
		for next < len(events) && events[next].Offset <= now {
			r.dispatch(events[next])
			next++
		}

		segment := frameCount - now
		if next < len(events) {
			segment = min(events[next].Offset-now, segment)
		}

		r.renderSegment(now, segment, output)
		now += segment
	}

	for ; next < len(events); next++ {
		r.dispatch(events[next])
	}

	return StatusOK
}

func (r *Renderer) dispatch(ev Event) {
	switch ev.Kind {
	case EventParameter:
		r.kernel.OnParameterEvent(ev)
	case EventMIDI:
		r.kernel.OnMIDIEvent(ev)
	}
}

func (r *Renderer) renderSegment(offset, frames int, output [][]float64) {
	end := offset + frames
	for ch := range r.ins {
		r.ins[ch] = r.pulled[ch][offset:end]
		r.outs[ch] = output[ch][offset:end]
	}

	if r.bypass.Load() {
		for ch := range r.outs {
			core.CopyInto(r.outs[ch], r.ins[ch])
		}
		return
	}

	r.kernel.RenderFrames(r.ins, r.outs, frames)
}

// pullFailed records err for LastError. It must stay out of line: only the
// failure path may move an error to the heap.
//
//go:noinline
func (r *Renderer) pullFailed(err error) Status {
	r.lastErr.Store(&err)
	return r.fail(StatusNoInput)
}

func (r *Renderer) fail(s Status) Status {
	r.failures.Add(1)
	return s
}
