package plugin

import "fmt"

// Preset is a named set of plain parameter values, indexed by Address.
type Preset struct {
	Name   string
	Values [numParameters]float64
}

// Value returns the preset's plain value for addr.
func (p Preset) Value(addr Address) float64 {
	if int(addr) >= numParameters {
		return 0
	}
	return p.Values[addr]
}

// Factory presets. Values beyond a parameter's range are clamped when
// applied, so the wide presets sweep the full depth range.
var factoryPresets = []Preset{
	{Name: "Flangie", Values: [numParameters]float64{7, 0.07, 0, 50, 50, 50, 0, 0}},
	{Name: "Sweeper", Values: [numParameters]float64{15, 0.6, 0.14, 50, 50, 50, 0, 0}},
	{Name: "Chorious", Values: [numParameters]float64{20, 0.3, 0.15, 50, 50, 50, 0, 1}},
	{Name: "Lord Tremolo", Values: [numParameters]float64{5, 8, 0, 85, 0, 100, 0, 0}},
	{Name: "Wide Flangie", Values: [numParameters]float64{100, 0.14, 0.72, 50, 50, 50, 0, 1}},
	{Name: "Wide Sweeper", Values: [numParameters]float64{100, 0.14, 1.51, 80, 50, 50, 0, 1}},
}

// Presets returns the factory presets.
func Presets() []Preset {
	out := make([]Preset, len(factoryPresets))
	copy(out, factoryPresets)
	return out
}

// PresetByName returns the factory preset called name.
func PresetByName(name string) (int, Preset, error) {
	for i, p := range factoryPresets {
		if p.Name == name {
			return i, p, nil
		}
	}
	return -1, Preset{}, fmt.Errorf("%w %q", ErrUnknownPreset, name)
}
