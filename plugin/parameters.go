package plugin

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-flanger/dsp/param"
)

var (
	// ErrUnknownParameter is returned for addresses outside the parameter table.
	ErrUnknownParameter = errors.New("plugin: unknown parameter")
	// ErrUnknownPreset is returned for preset names or indices that do not
	// exist.
	ErrUnknownPreset = errors.New("plugin: unknown preset")
)

// MaxDelayMs is the upper end of the depth and delay ranges.
const MaxDelayMs = 50.0

// Kind groups parameters by how their plain value is interpreted.
type Kind uint8

const (
	// KindMilliseconds values are delay times.
	KindMilliseconds Kind = iota
	// KindHertz values are LFO rates.
	KindHertz
	// KindPercent values run from 0 to 100.
	KindPercent
	// KindBool values are 0 (off) or 1 (on).
	KindBool
)

// Definition describes one entry of the parameter table. Plain values are
// what hosts see: milliseconds, hertz, percent or 0/1.
type Definition struct {
	Address    Address
	Identifier string
	Name       string
	Unit       string
	Kind       Kind
	Taper      param.Taper
	Default    float64
	format     string
}

// Min returns the smallest plain value.
func (d Definition) Min() float64 { return d.Taper.Min }

// Max returns the largest plain value.
func (d Definition) Max() float64 { return d.Taper.Max }

// Normalize maps a plain value to a knob position in [0, 1].
func (d Definition) Normalize(value float64) float64 { return d.Taper.Normalize(value) }

// Denormalize maps a knob position in [0, 1] to a plain value. Boolean
// parameters snap to 0 or 1.
func (d Definition) Denormalize(pos float64) float64 {
	v := d.Taper.Denormalize(pos)
	if d.Kind == KindBool {
		return boolValue(v >= 0.5)
	}
	return v
}

// Clamp limits a plain value to the parameter range.
func (d Definition) Clamp(value float64) float64 { return d.Taper.Clamp(value) }

// FormatValue renders a plain value for display, with its unit.
func (d Definition) FormatValue(value float64) string {
	switch d.Kind {
	case KindBool:
		if value >= 0.5 {
			return "on"
		}
		return "off"
	case KindPercent:
		return fmt.Sprintf(d.format, value) + "%"
	default:
		return fmt.Sprintf(d.format, value) + " " + d.Unit
	}
}

var definitions = [numParameters]Definition{
	{
		Address: Depth, Identifier: "depth", Name: "Depth", Unit: "ms", Kind: KindMilliseconds,
		Taper: param.Taper{Min: 0, Max: MaxDelayMs, Log: true}, Default: 7, format: "%.2f",
	},
	{
		Address: Rate, Identifier: "rate", Name: "Rate", Unit: "Hz", Kind: KindHertz,
		Taper: param.Taper{Min: 0.01, Max: 20, Log: true}, Default: 0.14, format: "%.2f",
	},
	{
		Address: Delay, Identifier: "delay", Name: "Delay", Unit: "ms", Kind: KindMilliseconds,
		Taper: param.Taper{Min: 0, Max: MaxDelayMs, Log: true}, Default: 0.72, format: "%.2f",
	},
	{
		Address: Feedback, Identifier: "feedback", Name: "Feedback", Unit: "%", Kind: KindPercent,
		Taper: param.Taper{Min: 0, Max: 100}, Default: 50, format: "%.2f",
	},
	{
		Address: DryMix, Identifier: "dry", Name: "Dry", Unit: "%", Kind: KindPercent,
		Taper: param.Taper{Min: 0, Max: 100}, Default: 50, format: "%.0f",
	},
	{
		Address: WetMix, Identifier: "wet", Name: "Wet", Unit: "%", Kind: KindPercent,
		Taper: param.Taper{Min: 0, Max: 100}, Default: 50, format: "%.0f",
	},
	{
		Address: NegativeFeedback, Identifier: "-feedback", Name: "-Feedback", Kind: KindBool,
		Taper: param.Taper{Min: 0, Max: 1},
	},
	{
		Address: Odd90, Identifier: "odd90", Name: "Odd 90°", Kind: KindBool,
		Taper: param.Taper{Min: 0, Max: 1},
	},
}

// Definitions returns the parameter table in address order.
func Definitions() []Definition {
	out := make([]Definition, numParameters)
	copy(out, definitions[:])
	return out
}

// Lookup returns the definition for addr.
func Lookup(addr Address) (Definition, error) {
	if int(addr) >= numParameters {
		return Definition{}, fmt.Errorf("%w: %d", ErrUnknownParameter, uint64(addr))
	}
	return definitions[addr], nil
}

func boolValue(on bool) float64 {
	if on {
		return 1
	}
	return 0
}
