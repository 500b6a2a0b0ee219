package biquad

// Coefficients holds one biquad transfer function
//
//	H(z) = (A0 + A1 z^-1 + A2 z^-2) / (1 + B1 z^-1 + B2 z^-2)
//
// C0 and D0 are the wet and dry weights some designs apply around the
// filter; the realizations here do not use them.
type Coefficients struct {
	A0, A1, A2 float64 // feedforward (numerator)
	B1, B2     float64 // feedback (denominator)
	C0, D0     float64
}

// Passthrough returns unity-gain coefficients.
func Passthrough() Coefficients {
	return Coefficients{A0: 1, C0: 1}
}

// State is the history a realization carries between samples. Canonical
// forms use only XZ1 and XZ2.
type State struct {
	XZ1, XZ2 float64
	YZ1, YZ2 float64
}
