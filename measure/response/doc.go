// Package response measures magnitude responses from impulse responses
// with an FFT. It is used to check filter designs and the flanger's comb
// against their analytic curves.
package response
