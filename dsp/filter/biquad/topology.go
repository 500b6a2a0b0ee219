package biquad

import "github.com/cwbudde/algo-flanger/dsp/core"

// Topology is one realization of the biquad difference equation.
type Topology interface {
	// Transform filters one sample and updates s.
	Transform(x float64, s *State, c *Coefficients) float64
	// StorageComponent returns the part of the next output already held in s.
	StorageComponent(s *State, c *Coefficients) float64
	String() string
}

// Direct is the classic direct-form realization.
type Direct struct{}

func (Direct) Transform(x float64, s *State, c *Coefficients) float64 {
	y := core.FlushDenormals(c.A0*x + c.A1*s.XZ1 + c.A2*s.XZ2 - c.B1*s.YZ1 - c.B2*s.YZ2)
	s.XZ2 = s.XZ1
	s.XZ1 = x
	s.YZ2 = s.YZ1
	s.YZ1 = y
	return y
}

func (Direct) StorageComponent(s *State, c *Coefficients) float64 {
	return c.A1*s.XZ1 + c.A2*s.XZ2 - c.B1*s.YZ1 - c.B2*s.YZ2
}

func (Direct) String() string { return "direct" }

// Canonical is the minimum-state direct form II.
type Canonical struct{}

func (Canonical) Transform(x float64, s *State, c *Coefficients) float64 {
	theta := x - c.B1*s.XZ1 - c.B2*s.XZ2
	y := core.FlushDenormals(c.A0*theta + c.A1*s.XZ1 + c.A2*s.XZ2)
	s.XZ2 = s.XZ1
	s.XZ1 = theta
	return y
}

func (Canonical) StorageComponent(*State, *Coefficients) float64 { return 0 }

func (Canonical) String() string { return "canonical" }

// DirectTranspose is the transposed direct form.
type DirectTranspose struct{}

func (DirectTranspose) Transform(x float64, s *State, c *Coefficients) float64 {
	theta := x + s.YZ1
	y := core.FlushDenormals(c.A0*theta + s.XZ1)
	s.YZ1 = s.YZ2 - c.B1*theta
	s.YZ2 = -c.B2 * theta
	s.XZ1 = s.XZ2 + c.A1*theta
	s.XZ2 = c.A2 * theta
	return y
}

func (DirectTranspose) StorageComponent(*State, *Coefficients) float64 { return 0 }

func (DirectTranspose) String() string { return "direct-transpose" }

// CanonicalTranspose is the transposed direct form II.
type CanonicalTranspose struct{}

func (CanonicalTranspose) Transform(x float64, s *State, c *Coefficients) float64 {
	y := core.FlushDenormals(c.A0*x + s.XZ1)
	s.XZ1 = c.A1*x - c.B1*y + s.XZ2
	s.XZ2 = c.A2*x - c.B2*y
	return y
}

func (CanonicalTranspose) StorageComponent(s *State, _ *Coefficients) float64 { return s.XZ1 }

func (CanonicalTranspose) String() string { return "canonical-transpose" }

// Topologies lists every realization in a stable order.
func Topologies() []Topology {
	return []Topology{Direct{}, Canonical{}, DirectTranspose{}, CanonicalTranspose{}}
}
