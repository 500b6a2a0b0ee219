// Package modulation provides the flanger: a short delay line swept by an
// LFO and mixed back with the direct signal, with feedback around the delay.
//
// Flanger renders planar blocks through RenderFrames. Its Set methods are
// safe to call from a control goroutine while rendering; package plugin
// wraps it as a render kernel with a parameter table and presets.
package modulation
