// Package registry selects the biquad block kernel for the running CPU.
package registry

import (
	"cmp"
	"slices"
	"sync"

	"github.com/cwbudde/algo-vecmath/cpu"
)

// Coefficients are the transfer coefficients a block kernel needs. The
// denominator's leading term is 1.
type Coefficients struct {
	A0, A1, A2 float64
	B1, B2     float64
}

// ProcessBlockFn filters buf in place with the transposed canonical form,
// starting from state (z1, z2), and returns the final state. Outputs below
// the smallest normal float32 are flushed to zero.
type ProcessBlockFn func(c Coefficients, z1, z2 float64, buf []float64) (newZ1, newZ2 float64)

// OpEntry describes one block kernel and the SIMD level it needs.
type OpEntry struct {
	Name         string
	SIMDLevel    cpu.SIMDLevel
	Priority     int
	ProcessBlock ProcessBlockFn
}

// OpRegistry holds the kernels registered by the arch packages' init
// functions. Entries are kept ordered by descending priority; kernels with
// equal priority keep their registration order.
type OpRegistry struct {
	mu      sync.RWMutex
	entries []OpEntry
}

// Global is the registry the biquad package dispatches through.
var Global = &OpRegistry{}

// Register adds entry to the registry.
func (r *OpRegistry) Register(entry OpEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	slices.SortStableFunc(r.entries, func(a, b OpEntry) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
}

// Lookup returns the highest-priority kernel the features can run, or nil
// when none qualifies.
func (r *OpRegistry) Lookup(features cpu.Features) *OpEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.entries {
		if cpu.Supports(features, r.entries[i].SIMDLevel) {
			entry := r.entries[i]
			return &entry
		}
	}
	return nil
}

// Entries returns a copy of the registered kernels in lookup order.
func (r *OpRegistry) Entries() []OpEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.entries)
}

// Reset drops all entries.
func (r *OpRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
}
