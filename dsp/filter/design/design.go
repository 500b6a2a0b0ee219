package design

import (
	"math"

	"github.com/cwbudde/algo-flanger/dsp/filter/biquad"
)

const defaultQ = 1 / math.Sqrt2

// LowPass1 designs a one-pole low-pass with unity DC gain.
func LowPass1(freq, sampleRate float64) biquad.Coefficients {
	theta, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	gamma := math.Cos(theta) / (1 + math.Sin(theta))

	return biquad.Coefficients{
		A0: (1 - gamma) / 2,
		A1: (1 - gamma) / 2,
		B1: -gamma,
		C0: 1,
	}
}

// HighPass1 designs a one-pole high-pass with unity gain at Nyquist.
func HighPass1(freq, sampleRate float64) biquad.Coefficients {
	theta, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	gamma := math.Cos(theta) / (1 + math.Sin(theta))

	return biquad.Coefficients{
		A0: (1 + gamma) / 2,
		A1: -(1 + gamma) / 2,
		B1: -gamma,
		C0: 1,
	}
}

// LowPass2 designs a two-pole low-pass with the given resonance (Q).
func LowPass2(freq, resonance, sampleRate float64) biquad.Coefficients {
	theta, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	beta, gamma := secondOrderTerms(theta, normalizedQ(resonance))
	alpha := (0.5 + beta - gamma) / 2

	return biquad.Coefficients{
		A0: alpha,
		A1: 2 * alpha,
		A2: alpha,
		B1: -2 * gamma,
		B2: 2 * beta,
		C0: 1,
	}
}

// HighPass2 designs a two-pole high-pass with the given resonance (Q).
func HighPass2(freq, resonance, sampleRate float64) biquad.Coefficients {
	theta, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	beta, gamma := secondOrderTerms(theta, normalizedQ(resonance))
	g := 0.5 + beta + gamma

	return biquad.Coefficients{
		A0: g / 2,
		A1: -g,
		A2: g / 2,
		B1: -2 * gamma,
		B2: 2 * beta,
		C0: 1,
	}
}

// AllPass1 designs a first-order all-pass with 90 degrees of phase shift
// at freq.
func AllPass1(freq, sampleRate float64) biquad.Coefficients {
	if _, ok := normalizedW0(freq, sampleRate); !ok {
		return biquad.Coefficients{}
	}

	t := math.Tan(math.Pi * freq / sampleRate)
	alpha := (t - 1) / (t + 1)

	return biquad.Coefficients{
		A0: alpha,
		A1: 1,
		B1: alpha,
		C0: 1,
	}
}

// AllPass2 designs a second-order all-pass centred on freq with bandwidth
// freq/resonance.
func AllPass2(freq, resonance, sampleRate float64) biquad.Coefficients {
	theta, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	bandwidth := freq / normalizedQ(resonance)
	argTan := math.Min(math.Pi*bandwidth/sampleRate, 0.95*math.Pi/2)
	t := math.Tan(argTan)
	alpha := (t - 1) / (t + 1)
	beta := -math.Cos(theta)

	return biquad.Coefficients{
		A0: -alpha,
		A1: beta * (1 - alpha),
		A2: 1,
		B1: beta * (1 - alpha),
		B2: -alpha,
		C0: 1,
	}
}

func secondOrderTerms(theta, q float64) (beta, gamma float64) {
	d := 1 / q
	s := d / 2 * math.Sin(theta)
	beta = 0.5 * (1 - s) / (1 + s)
	gamma = (0.5 + beta) * math.Cos(theta)
	return beta, gamma
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}
