// Package param holds parameter values shared between a control goroutine
// and a single render goroutine.
//
// Writers call Set from any goroutine without blocking. The render side
// detects the change through an atomic counter and, for Ramped values,
// glides linearly from the value it is currently producing to the new
// target over a caller-chosen number of frames. No locks are taken on
// either side.
//
// Each value supports exactly one reader. Sharing a Ramped between two
// render goroutines corrupts its ramp state.
package param
