package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Quantizer converts samples in [-1, 1) to signed integers of a fixed bit
// depth, one channel at a time. Full scale 1.0 maps to 2^(bits-1), and
// results are clipped to the representable range.
type Quantizer struct {
	bitDepth   int
	ditherType Type
	amplitude  float64
	shaping    bool
	rng        *rand.Rand

	scale   float64
	lo, hi  float64
	lastErr float64
}

// NewQuantizer creates a quantizer for bitDepth in [8, 32].
func NewQuantizer(bitDepth int, opts ...Option) (*Quantizer, error) {
	if bitDepth < minBitDepth || bitDepth > maxBitDepth {
		return nil, fmt.Errorf("dither: bit depth must be in [%d, %d]: %d", minBitDepth, maxBitDepth, bitDepth)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	scale := math.Exp2(float64(bitDepth - 1))

	return &Quantizer{
		bitDepth:   bitDepth,
		ditherType: cfg.ditherType,
		amplitude:  cfg.amplitude,
		shaping:    cfg.shaping,
		rng:        rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x5851f42d4c957f2d)),
		scale:      scale,
		lo:         -scale,
		hi:         scale - 1,
	}, nil
}

// Process quantizes one sample.
func (q *Quantizer) Process(x float64) int {
	target := x * q.scale
	if q.shaping {
		target -= q.lastErr
	}

	v := math.Round(target + q.noise())
	v = min(max(v, q.lo), q.hi)

	if q.shaping {
		q.lastErr = v - target
	}

	return int(v)
}

// ProcessInterleaved quantizes src into every stride-th element of dst
// starting at dst[0].
func (q *Quantizer) ProcessInterleaved(dst []int, src []float64, stride int) {
	for i, x := range src {
		dst[i*stride] = q.Process(x)
	}
}

func (q *Quantizer) noise() float64 {
	switch q.ditherType {
	case Rectangular:
		return q.amplitude * (q.rng.Float64() - 0.5)
	case Triangular:
		return q.amplitude * (q.rng.Float64() - q.rng.Float64())
	default:
		return 0
	}
}

// Reset clears the noise-shaping error memory.
func (q *Quantizer) Reset() {
	q.lastErr = 0
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// Type returns the dither noise type.
func (q *Quantizer) Type() Type { return q.ditherType }

// NoiseShaping reports whether error feedback is enabled.
func (q *Quantizer) NoiseShaping() bool { return q.shaping }
