package param

import "sync/atomic"

// ChangeDetector records writes through an atomic counter so that the render
// side can notice them without locking.
type ChangeDetector struct {
	counter  atomic.Int32
	lastSeen int32
}

func (d *ChangeDetector) markChanged() {
	d.counter.Add(1)
}

// WasChanged reports whether a write happened since the previous call. It
// returns true once per observed change and must only be called from the
// render goroutine.
func (d *ChangeDetector) WasChanged() bool {
	c := d.counter.Load()
	if c == d.lastSeen {
		return false
	}
	d.lastSeen = c
	return true
}

// Switch is a boolean setting with change detection.
type Switch struct {
	ChangeDetector
	on atomic.Bool
}

// Set stores v and flags a change.
func (s *Switch) Set(v bool) {
	s.on.Store(v)
	s.markChanged()
}

// Get returns the latest stored value.
func (s *Switch) Get() bool {
	return s.on.Load()
}
