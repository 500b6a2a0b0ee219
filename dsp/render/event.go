package render

import "fmt"

// EventKind distinguishes the events a host can schedule inside a block.
type EventKind uint8

const (
	// EventParameter sets a parameter at Offset, gliding over RampFrames.
	EventParameter EventKind = iota
	// EventMIDI delivers the MIDI message held in MIDI[:MIDILength].
	EventMIDI
)

func (k EventKind) String() string {
	switch k {
	case EventParameter:
		return "parameter"
	case EventMIDI:
		return "midi"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is one timed control message. Offset counts frames from the start
// of the block it is delivered with. Events handed to Render must be sorted
// by Offset.
type Event struct {
	Offset     int
	Kind       EventKind
	Address    uint64
	Value      float64
	RampFrames int
	MIDI       [3]byte
	MIDILength uint8
}

// ParameterEvent builds an EventParameter.
func ParameterEvent(offset int, address uint64, value float64, rampFrames int) Event {
	return Event{Offset: offset, Kind: EventParameter, Address: address, Value: value, RampFrames: rampFrames}
}

// MIDIEvent builds an EventMIDI from up to three message bytes.
func MIDIEvent(offset int, msg ...byte) Event {
	ev := Event{Offset: offset, Kind: EventMIDI}
	ev.MIDILength = uint8(copy(ev.MIDI[:], msg))
	return ev
}
