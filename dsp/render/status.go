package render

import "errors"

// Status is the result of one Render call.
type Status int

const (
	// StatusOK means every frame was rendered.
	StatusOK Status = iota
	// StatusNoInput means upstream audio could not be pulled. Nothing was
	// rendered.
	StatusNoInput
	// StatusInvalidState means the call did not match the configuration
	// (not configured, block too large, channel count mismatch).
	StatusInvalidState
)

var (
	// ErrNoInput reports a missing or failing input puller.
	ErrNoInput = errors.New("render: no input available")
	// ErrInvalidState reports a render call that does not fit the configuration.
	ErrInvalidState = errors.New("render: invalid state")
)

// Err maps the status to its sentinel error, or nil for StatusOK.
func (s Status) Err() error {
	switch s {
	case StatusOK:
		return nil
	case StatusNoInput:
		return ErrNoInput
	default:
		return ErrInvalidState
	}
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoInput:
		return "no-input"
	case StatusInvalidState:
		return "invalid-state"
	default:
		return "unknown"
	}
}
