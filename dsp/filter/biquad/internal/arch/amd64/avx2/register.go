//go:build amd64 && !purego

package avx2

import (
	"github.com/cwbudde/algo-flanger/dsp/core"
	"github.com/cwbudde/algo-flanger/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:         "avx2",
		SIMDLevel:    cpu.SIMDAVX2,
		Priority:     20,
		ProcessBlock: processBlock,
	})
}

// processBlock is a 4x-unrolled scalar kernel selected for AVX2-capable CPUs.
func processBlock(c registry.Coefficients, z1, z2 float64, buf []float64) (newZ1, newZ2 float64) {
	a0, a1, a2 := c.A0, c.A1, c.A2
	b1, b2 := c.B1, c.B2

	i := 0
	n := len(buf)
	for ; i+3 < n; i += 4 {
		x0 := buf[i]
		y0 := core.FlushDenormals(a0*x0 + z1)
		z1n0 := a1*x0 - b1*y0 + z2
		z2n0 := a2*x0 - b2*y0

		x1 := buf[i+1]
		y1 := core.FlushDenormals(a0*x1 + z1n0)
		z1n1 := a1*x1 - b1*y1 + z2n0
		z2n1 := a2*x1 - b2*y1

		x2 := buf[i+2]
		y2 := core.FlushDenormals(a0*x2 + z1n1)
		z1n2 := a1*x2 - b1*y2 + z2n1
		z2n2 := a2*x2 - b2*y2

		x3 := buf[i+3]
		y3 := core.FlushDenormals(a0*x3 + z1n2)
		z1 = a1*x3 - b1*y3 + z2n2
		z2 = a2*x3 - b2*y3

		buf[i] = y0
		buf[i+1] = y1
		buf[i+2] = y2
		buf[i+3] = y3
	}

	for ; i < n; i++ {
		x := buf[i]
		y := core.FlushDenormals(a0*x + z1)
		z1 = a1*x - b1*y + z2
		z2 = a2*x - b2*y
		buf[i] = y
	}

	return z1, z2
}
