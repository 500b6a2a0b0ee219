// Package plugin is the host-facing flanger unit. It owns the event
// renderer and the flanger kernel, publishes the parameter table with
// ranges and display formatting, maps MIDI control changes onto
// parameters and carries the factory presets.
//
// Control methods (SetParameter, ApplyPreset, SetBypass) may be called from
// any goroutine while another goroutine calls Render. Configure, Reset and
// StopRamping require rendering to be stopped.
package plugin
