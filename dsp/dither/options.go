package dither

import (
	"fmt"
	"math"
)

const (
	defaultType      = Triangular
	defaultAmplitude = 1.0
	minBitDepth      = 8
	maxBitDepth      = 32
)

type config struct {
	ditherType Type
	amplitude  float64
	shaping    bool
	seed       uint64
}

func defaultConfig() config {
	return config{
		ditherType: defaultType,
		amplitude:  defaultAmplitude,
		seed:       1,
	}
}

// Option configures a Quantizer.
type Option func(*config) error

// WithType sets the dither noise PDF (default Triangular).
func WithType(t Type) Option {
	return func(cfg *config) error {
		if !t.Valid() {
			return fmt.Errorf("dither: invalid type: %d", int(t))
		}
		cfg.ditherType = t
		return nil
	}
}

// WithAmplitude scales the dither noise in steps (default 1).
func WithAmplitude(amp float64) Option {
	return func(cfg *config) error {
		if amp < 0 || math.IsNaN(amp) || math.IsInf(amp, 0) {
			return fmt.Errorf("dither: amplitude must be >= 0 and finite: %f", amp)
		}
		cfg.amplitude = amp
		return nil
	}
}

// WithNoiseShaping feeds the previous quantization error back into the
// next sample, moving noise power toward high frequencies.
func WithNoiseShaping(enabled bool) Option {
	return func(cfg *config) error {
		cfg.shaping = enabled
		return nil
	}
}

// WithSeed makes the dither noise reproducible.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}
