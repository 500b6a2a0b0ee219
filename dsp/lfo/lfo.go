// Package lfo provides the low-frequency oscillator that sweeps modulated
// delay effects.
package lfo

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/cwbudde/algo-flanger/dsp/core"
	"github.com/cwbudde/algo-flanger/dsp/param"
)

// Waveform selects the oscillator shape.
type Waveform int32

const (
	// Sine is a parabolic sine approximation.
	Sine Waveform = iota
	// Triangle starts at +1, falls to -1 at half period and rises again.
	Triangle
	// Sawtooth rises from -1 to +1 over one period.
	Sawtooth
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Triangle:
		return "triangle"
	case Sawtooth:
		return "sawtooth"
	default:
		return fmt.Sprintf("Waveform(%d)", int32(w))
	}
}

// ParseWaveform resolves a waveform by name. "tri" and "saw" are accepted
// as short forms.
func ParseWaveform(name string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine", "sin":
		return Sine, nil
	case "triangle", "tri":
		return Triangle, nil
	case "sawtooth", "saw":
		return Sawtooth, nil
	default:
		return Sine, fmt.Errorf("lfo: unknown waveform %q", name)
	}
}

// LFO is a phase-accumulator oscillator with a quadrature output.
//
// SetFrequency and SetWaveform may be called from any goroutine. Value,
// QuadPhaseValue and Reset belong to the render goroutine.
type LFO struct {
	sampleRate    float64
	invSampleRate float64
	frequency     param.Ramped
	waveform      atomic.Int32

	phase     float64
	quadPhase float64
}

// New creates an oscillator at phase zero.
func New(sampleRate, frequencyHz float64, waveform Waveform) (*LFO, error) {
	l := &LFO{}
	if err := l.SetSampleRate(sampleRate); err != nil {
		return nil, err
	}
	l.frequency.Reset(frequencyHz)
	l.waveform.Store(int32(waveform))
	l.Reset()
	return l, nil
}

// SetSampleRate changes the rate the phase increment is derived from. Call
// it only while rendering is stopped.
func (l *LFO) SetSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("lfo sample rate must be > 0 and finite: %f", sampleRate)
	}
	l.sampleRate = sampleRate
	l.invSampleRate = 1 / sampleRate
	return nil
}

// SampleRate returns the sample rate in Hz.
func (l *LFO) SampleRate() float64 { return l.sampleRate }

// SetFrequency sets the oscillation rate. Zero freezes the phase and
// negative rates run the phase backwards. The change glides over
// rampFrames frames.
func (l *LFO) SetFrequency(hz float64, rampFrames int) {
	l.frequency.SetRamped(hz, rampFrames)
}

// Frequency returns the latest requested rate in Hz.
func (l *LFO) Frequency() float64 { return l.frequency.Value() }

// SetWaveform selects the waveform for subsequent samples.
func (l *LFO) SetWaveform(w Waveform) {
	l.waveform.Store(int32(w))
}

// Waveform returns the selected waveform.
func (l *LFO) Waveform() Waveform { return Waveform(l.waveform.Load()) }

// Phase returns the current phase in [0, 1).
func (l *LFO) Phase() float64 { return l.phase }

// Reset returns the phase to zero and settles any frequency ramp.
func (l *LFO) Reset() {
	l.frequency.StopRamping()
	l.phase = 0
	l.quadPhase = 0.25
}

// StopRamping settles a frequency glide at its target.
func (l *LFO) StopRamping() {
	l.frequency.StopRamping()
}

// Value returns the sample at the current phase and advances by one frame.
func (l *LFO) Value() float64 {
	w := l.Waveform()
	p := l.phase
	l.quadPhase = wrap(p + 0.25)
	l.phase = wrap(p + l.frequency.Next()*l.invSampleRate)
	return evaluate(w, p)
}

// QuadPhaseValue returns the waveform a quarter period ahead of the sample
// most recently returned by Value. It does not advance the oscillator.
func (l *LFO) QuadPhaseValue() float64 {
	return evaluate(l.Waveform(), l.quadPhase)
}

func evaluate(w Waveform, phase float64) float64 {
	switch w {
	case Triangle:
		return core.UnipolarToBipolar(math.Abs(core.UnipolarToBipolar(phase)))
	case Sawtooth:
		return core.UnipolarToBipolar(phase)
	default:
		return core.ParabolicSine(math.Pi - phase*2*math.Pi)
	}
}

// wrap folds phase into [0, 1). Increments are below one cycle in practice,
// so a single add or subtract covers the hot path.
func wrap(phase float64) float64 {
	switch {
	case phase >= 1:
		phase--
	case phase < 0:
		phase++
	default:
		return phase
	}
	if phase >= 1 || phase < 0 {
		phase -= math.Floor(phase)
	}
	return phase
}
