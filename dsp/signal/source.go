package signal

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/cwbudde/algo-flanger/dsp/core"
)

// Kind selects the waveform of a Source.
type Kind int

const (
	// Sine is a pure tone.
	Sine Kind = iota
	// Sawtooth is a naive rising ramp, rich in harmonics.
	Sawtooth
	// WhiteNoise is uniform noise. Comb filtering is easiest to hear on it.
	WhiteNoise
	// Clicks is an impulse train with a period of ceil(sampleRate/freqHz)
	// samples.
	Clicks
)

func (k Kind) String() string {
	switch k {
	case Sine:
		return "sine"
	case Sawtooth:
		return "sawtooth"
	case WhiteNoise:
		return "noise"
	case Clicks:
		return "clicks"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind resolves a waveform name as printed by Kind.String.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine", "sin":
		return Sine, nil
	case "sawtooth", "saw":
		return Sawtooth, nil
	case "noise", "white":
		return WhiteNoise, nil
	case "clicks", "click", "impulses":
		return Clicks, nil
	default:
		return Sine, fmt.Errorf("signal: unknown kind %q", name)
	}
}

// Option configures a Source.
type Option func(*Source)

// WithSeed sets the deterministic noise seed.
func WithSeed(seed uint64) Option {
	return func(s *Source) {
		s.seed = seed
	}
}

// WithAmplitude sets the peak amplitude. The default is 0.5.
func WithAmplitude(amplitude float64) Option {
	return func(s *Source) {
		s.amplitude = amplitude
	}
}

// Source is a stateful test-signal generator.
type Source struct {
	kind       Kind
	sampleRate float64
	freqHz     float64
	amplitude  float64
	seed       uint64

	phase float64
	rng   *rand.Rand
}

// NewSource creates a generator of kind at freqHz. freqHz is ignored for
// noise.
func NewSource(kind Kind, freqHz, sampleRate float64, opts ...Option) (*Source, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("signal sample rate must be > 0 and finite: %f", sampleRate)
	}
	if kind < Sine || kind > Clicks {
		return nil, fmt.Errorf("signal: unknown kind %d", int(kind))
	}
	if kind != WhiteNoise && (freqHz <= 0 || freqHz >= sampleRate/2 || !core.IsFinite(freqHz)) {
		return nil, fmt.Errorf("signal frequency must be in (0, %f): %f", sampleRate/2, freqHz)
	}

	s := &Source{
		kind:       kind,
		sampleRate: sampleRate,
		freqHz:     freqHz,
		amplitude:  0.5,
		seed:       1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.amplitude < 0 || !core.IsFinite(s.amplitude) {
		return nil, fmt.Errorf("signal amplitude must be >= 0 and finite: %f", s.amplitude)
	}

	s.Reset()

	return s, nil
}

// Kind returns the waveform.
func (s *Source) Kind() Kind { return s.kind }

// Reset rewinds the phase and reseeds the noise generator.
func (s *Source) Reset() {
	s.phase = 0
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
}

// Fill overwrites dst with the next len(dst) samples.
func (s *Source) Fill(dst []float64) {
	inc := s.freqHz / s.sampleRate
	a := s.amplitude

	switch s.kind {
	case Sine:
		for i := range dst {
			dst[i] = a * math.Sin(2*math.Pi*s.phase)
			s.advance(inc)
		}
	case Sawtooth:
		for i := range dst {
			dst[i] = a * core.UnipolarToBipolar(s.phase)
			s.advance(inc)
		}
	case WhiteNoise:
		for i := range dst {
			dst[i] = a * (s.rng.Float64()*2 - 1)
		}
	case Clicks:
		for i := range dst {
			if s.phase == 0 {
				dst[i] = a
			} else {
				dst[i] = 0
			}
			s.advance(inc)
		}
	}
}

func (s *Source) advance(inc float64) {
	s.phase += inc
	if s.phase >= 1 {
		s.phase -= math.Floor(s.phase)
		if s.kind == Clicks {
			s.phase = 0
		}
	}
}
