package generic

import (
	"github.com/cwbudde/algo-flanger/dsp/core"
	"github.com/cwbudde/algo-flanger/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:         "generic",
		SIMDLevel:    cpu.SIMDNone,
		Priority:     0,
		ProcessBlock: processBlock,
	})
}

func processBlock(c registry.Coefficients, z1, z2 float64, buf []float64) (newZ1, newZ2 float64) {
	a0, a1, a2 := c.A0, c.A1, c.A2
	b1, b2 := c.B1, c.B2

	i := 0
	n := len(buf)
	for ; i+1 < n; i += 2 {
		x0 := buf[i]
		y0 := core.FlushDenormals(a0*x0 + z1)
		z1n := a1*x0 - b1*y0 + z2
		z2n := a2*x0 - b2*y0

		x1 := buf[i+1]
		y1 := core.FlushDenormals(a0*x1 + z1n)
		z1 = a1*x1 - b1*y1 + z2n
		z2 = a2*x1 - b2*y1

		buf[i] = y0
		buf[i+1] = y1
	}

	if i < n {
		x := buf[i]
		y := core.FlushDenormals(a0*x + z1)
		z1 = a1*x - b1*y + z2
		z2 = a2*x - b2*y
		buf[i] = y
	}

	return z1, z2
}
