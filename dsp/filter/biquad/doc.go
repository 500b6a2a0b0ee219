// Package biquad provides second-order IIR filter runtime primitives.
//
// One [Coefficients] set can drive four signal-flow realizations that share
// the same transfer function but keep different state:
//
//   - [Direct]: the plain difference equation, four history values.
//   - [Canonical]: two history values through an intermediate node.
//   - [DirectTranspose]: the transposed direct form.
//   - [CanonicalTranspose]: the transposed canonical form, the usual choice
//     for precision and denormal behaviour.
//
// Every realization snaps outputs smaller than the smallest normal float32 to
// zero. A [Filter] binds a topology to coefficients and state.
//
// Coefficient design lives in dsp/filter/design.
package biquad
