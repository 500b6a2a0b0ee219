// Package render splits host render calls into event-aligned segments.
//
// A host hands [Renderer.Render] a block of frames together with the
// parameter and MIDI events scheduled inside it. The renderer pulls the
// block's input, then alternates between dispatching every event due at the
// current frame and rendering the frames up to the next event, so each
// event takes effect exactly at its frame offset. The [Kernel] doing the
// audio work never sees event timing.
//
// Render runs on the host's real-time goroutine: it takes no locks and does
// not allocate once configured. Configure must only be called while no
// Render call is in flight.
package render
