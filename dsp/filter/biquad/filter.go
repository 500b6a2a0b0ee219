package biquad

import (
	"sync"

	archregistry "github.com/cwbudde/algo-flanger/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

// Filter applies one topology with fixed coefficients and its own state.
type Filter struct {
	topology     Topology
	coefficients Coefficients
	state        State
}

var (
	processBlockImpl     archregistry.ProcessBlockFn
	processBlockInitOnce sync.Once
)

// NewFilter returns a filter with zero state. A nil topology selects
// CanonicalTranspose.
func NewFilter(t Topology, c Coefficients) *Filter {
	if t == nil {
		t = CanonicalTranspose{}
	}
	return &Filter{topology: t, coefficients: c}
}

// Topology returns the realization in use.
func (f *Filter) Topology() Topology { return f.topology }

// Coefficients returns the current coefficients.
func (f *Filter) Coefficients() Coefficients { return f.coefficients }

// SetCoefficients adopts c and clears the state.
func (f *Filter) SetCoefficients(c Coefficients) {
	f.coefficients = c
	f.Reset()
}

// Reset clears the state.
func (f *Filter) Reset() {
	f.state = State{}
}

// State returns a copy of the current state.
func (f *Filter) State() State { return f.state }

// Transform filters one sample.
func (f *Filter) Transform(x float64) float64 {
	return f.topology.Transform(x, &f.state, &f.coefficients)
}

// GainValue returns the A0 coefficient.
func (f *Filter) GainValue() float64 { return f.coefficients.A0 }

// StorageComponent returns the stored part of the next output.
func (f *Filter) StorageComponent() float64 {
	return f.topology.StorageComponent(&f.state, &f.coefficients)
}

// ProcessBlock filters buf in place. CanonicalTranspose filters use the
// fastest block kernel the CPU supports; other topologies run per sample.
// Both paths give identical results.
func (f *Filter) ProcessBlock(buf []float64) {
	if _, ok := f.topology.(CanonicalTranspose); !ok {
		for i, x := range buf {
			buf[i] = f.Transform(x)
		}
		return
	}

	processBlockInitOnce.Do(initProcessBlockKernel)

	c := archregistry.Coefficients{
		A0: f.coefficients.A0,
		A1: f.coefficients.A1,
		A2: f.coefficients.A2,
		B1: f.coefficients.B1,
		B2: f.coefficients.B2,
	}

	f.state.XZ1, f.state.XZ2 = processBlockImpl(c, f.state.XZ1, f.state.XZ2, buf)
}

func initProcessBlockKernel() {
	entry := archregistry.Global.Lookup(cpu.DetectFeatures())
	if entry == nil {
		panic("biquad: no ProcessBlock kernel registered (missing generic fallback?)")
	}

	if entry.ProcessBlock == nil {
		panic("biquad: selected kernel missing ProcessBlock")
	}

	processBlockImpl = entry.ProcessBlock
}

// ImpulseResponse computes n samples of the impulse response. The filter
// state is saved and restored.
func (f *Filter) ImpulseResponse(n int) []float64 {
	if n <= 0 {
		return nil
	}
	saved := f.state
	f.Reset()
	ir := make([]float64, n)
	ir[0] = 1
	f.ProcessBlock(ir)
	f.state = saved
	return ir
}
