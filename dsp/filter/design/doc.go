// Package design provides first- and second-order coefficient generators
// for dsp/filter/biquad, derived from analog prototypes via the bilinear
// transform.
//
// Invalid arguments (non-positive or non-finite rates, cutoffs at or above
// Nyquist) yield the zero Coefficients, which silence the filter.
package design
