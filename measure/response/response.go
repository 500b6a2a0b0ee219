package response

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-flanger/dsp/core"
	"github.com/cwbudde/algo-flanger/dsp/filter/biquad"
)

// Errors returned by response analysis functions.
var (
	ErrEmptyIR           = errors.New("response: impulse response is empty")
	ErrInvalidSampleRate = errors.New("response: sample rate must be positive")
	ErrInvalidFFTSize    = errors.New("response: fft size must be a power of two >= 2")
)

// DefaultFFTSize is used when an Analyzer has no FFT size set.
const DefaultFFTSize = 4096

// Spectrum is the one-sided magnitude response of an impulse response.
// Bin k lies at k*SampleRate/FFTSize.
type Spectrum struct {
	SampleRate float64
	FFTSize    int
	Magnitude  []float64 // linear magnitude, bins 0..FFTSize/2
	Power      []float64 // squared magnitude
}

// Bins returns the number of bins, FFTSize/2 + 1.
func (s Spectrum) Bins() int { return len(s.Magnitude) }

// BinFrequency returns the centre frequency of bin k in Hz.
func (s Spectrum) BinFrequency(k int) float64 {
	return float64(k) * s.SampleRate / float64(s.FFTSize)
}

// At returns the linear magnitude at freqHz, interpolating between bins.
func (s Spectrum) At(freqHz float64) float64 {
	if len(s.Magnitude) == 0 {
		return 0
	}

	pos := freqHz * float64(s.FFTSize) / s.SampleRate
	last := float64(len(s.Magnitude) - 1)
	pos = core.Clamp(pos, 0, last)

	k := int(pos)
	if k >= len(s.Magnitude)-1 {
		return s.Magnitude[len(s.Magnitude)-1]
	}

	frac := pos - float64(k)

	return s.Magnitude[k] + frac*(s.Magnitude[k+1]-s.Magnitude[k])
}

// MagnitudeDB returns the response in decibels.
func (s Spectrum) MagnitudeDB() []float64 {
	out := make([]float64, len(s.Power))
	for i, p := range s.Power {
		out[i] = core.LinearPowerToDB(p)
	}

	return out
}

// Peak returns the frequency and linear magnitude of the strongest bin.
func (s Spectrum) Peak() (freqHz, magnitude float64) {
	best := -1
	for k, m := range s.Magnitude {
		if best < 0 || m > s.Magnitude[best] {
			best = k
		}
	}

	if best < 0 {
		return 0, 0
	}

	return s.BinFrequency(best), s.Magnitude[best]
}

// Analyzer turns impulse responses into spectra.
type Analyzer struct {
	SampleRate float64
	FFTSize    int
}

// NewAnalyzer creates an analyzer. fftSize 0 selects DefaultFFTSize.
func NewAnalyzer(sampleRate float64, fftSize int) (*Analyzer, error) {
	a := &Analyzer{SampleRate: sampleRate, FFTSize: fftSize}
	if err := a.validate(); err != nil {
		return nil, err
	}

	return a, nil
}

func (a *Analyzer) fftSize() int {
	if a.FFTSize == 0 {
		return DefaultFFTSize
	}

	return a.FFTSize
}

func (a *Analyzer) validate() error {
	if a.SampleRate <= 0 || !core.IsFinite(a.SampleRate) {
		return ErrInvalidSampleRate
	}

	n := a.fftSize()
	if n < 2 || n&(n-1) != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFFTSize, n)
	}

	return nil
}

// Measure computes the spectrum of ir. The response is zero-padded or
// truncated to the FFT size.
func (a *Analyzer) Measure(ir []float64) (Spectrum, error) {
	if len(ir) == 0 {
		return Spectrum{}, ErrEmptyIR
	}

	if err := a.validate(); err != nil {
		return Spectrum{}, err
	}

	n := a.fftSize()

	in := make([]complex128, n)
	for i := 0; i < min(len(ir), n); i++ {
		in[i] = complex(ir[i], 0)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return Spectrum{}, fmt.Errorf("response: %w", err)
	}

	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return Spectrum{}, fmt.Errorf("response: %w", err)
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)

	for k := range bins {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	s := Spectrum{
		SampleRate: a.SampleRate,
		FFTSize:    n,
		Magnitude:  make([]float64, bins),
		Power:      make([]float64, bins),
	}
	vecmath.Magnitude(s.Magnitude, re, im)
	vecmath.Power(s.Power, re, im)

	return s, nil
}

// MeasureFilter measures a biquad design from its impulse response.
func (a *Analyzer) MeasureFilter(c biquad.Coefficients) (Spectrum, error) {
	if err := a.validate(); err != nil {
		return Spectrum{}, err
	}

	f := biquad.NewFilter(nil, c)

	return a.Measure(f.ImpulseResponse(a.fftSize()))
}

// MaxDeviationDB compares a measured spectrum with the analytic response of
// c and returns the largest difference in dB over bins up to maxFreqHz
// whose analytic level is above floorDB.
func MaxDeviationDB(s Spectrum, c biquad.Coefficients, maxFreqHz, floorDB float64) float64 {
	worst := 0.0

	for k := range s.Power {
		freq := s.BinFrequency(k)
		if freq > maxFreqHz {
			break
		}

		want := c.MagnitudeDB(freq, s.SampleRate)
		if want < floorDB {
			continue
		}

		got := core.LinearPowerToDB(s.Power[k])
		worst = math.Max(worst, math.Abs(got-want))
	}

	return worst
}
