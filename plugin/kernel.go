package plugin

import (
	"github.com/cwbudde/algo-flanger/dsp/core"
	"github.com/cwbudde/algo-flanger/dsp/render"
)

const (
	midiStatusMask    = 0xF0
	midiControlChange = 0xB0
	midiDataMax       = 127
)

// kernel adapts a Unit to render.Kernel. All three methods run on the
// render goroutine.
type kernel struct {
	u *Unit
}

func (k kernel) OnParameterEvent(ev render.Event) {
	addr := Address(ev.Address)
	if int(addr) >= numParameters || !core.IsFinite(ev.Value) {
		k.u.rejected.Add(1)
		return
	}
	k.u.apply(addr, ev.Value, ev.RampFrames)
	k.u.preset.Store(-1)
}

// OnMIDIEvent maps control changes through the CC map. Everything else is
// counted and dropped.
func (k kernel) OnMIDIEvent(ev render.Event) {
	if ev.MIDILength < 3 || ev.MIDI[0]&midiStatusMask != midiControlChange {
		k.u.midiIgnored.Add(1)
		return
	}

	addr, ok := k.u.ccMap[ev.MIDI[1]&midiDataMax]
	if !ok {
		k.u.midiIgnored.Add(1)
		return
	}

	pos := float64(ev.MIDI[2]&midiDataMax) / midiDataMax
	k.u.apply(addr, definitions[addr].Denormalize(pos), k.u.rampFrames)
	k.u.preset.Store(-1)
	k.u.midiApplied.Add(1)
}

func (k kernel) RenderFrames(in, out [][]float64, frames int) {
	k.u.flanger.RenderFrames(in, out, frames)
}
