// Package buffer provides planar multi-channel sample blocks and a pool for
// reusing them. Each channel is a plain []float64, so blocks plug directly
// into render.Kernel and render.InputPuller signatures.
package buffer
