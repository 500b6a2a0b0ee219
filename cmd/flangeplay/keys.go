package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/cwbudde/algo-flanger/plugin"
)

// knobStep is the normalized change applied per key press.
const knobStep = 0.05

type knob struct {
	down, up byte
	addr     plugin.Address
}

var knobs = []knob{
	{'d', 'D', plugin.Depth},
	{'r', 'R', plugin.Rate},
	{'l', 'L', plugin.Delay},
	{'f', 'F', plugin.Feedback},
	{'y', 'Y', plugin.DryMix},
	{'w', 'W', plugin.WetMix},
}

var toggles = map[byte]plugin.Address{
	'n': plugin.NegativeFeedback,
	'o': plugin.Odd90,
}

const ctrlC = 3

// handleKey applies one key press to the unit and returns a line
// describing the change. quit reports whether the key ends playback.
func handleKey(u *plugin.Unit, key byte) (msg string, quit bool, err error) {
	switch {
	case key == 'q' || key == ctrlC || key == 0x1b:
		return "", true, nil
	case key == 'b':
		u.SetBypass(!u.IsBypassed())
		return fmt.Sprintf("bypass %s", onOff(u.IsBypassed())), false, nil
	case key == ' ':
		u.Reset()
		return "reset", false, nil
	case key >= '1' && key <= '9':
		i := int(key - '1')
		if i >= len(plugin.Presets()) {
			return "", false, nil
		}
		if err := u.ApplyPreset(i); err != nil {
			return "", false, err
		}
		return "preset " + plugin.Presets()[i].Name, false, nil
	}

	if addr, ok := toggles[key]; ok {
		v, err := u.Parameter(addr)
		if err != nil {
			return "", false, err
		}
		if err := u.Set(addr, 1-v); err != nil {
			return "", false, err
		}
		return describe(u, addr)
	}

	for _, k := range knobs {
		if key != k.down && key != k.up {
			continue
		}

		def, err := plugin.Lookup(k.addr)
		if err != nil {
			return "", false, err
		}
		v, err := u.Parameter(k.addr)
		if err != nil {
			return "", false, err
		}

		pos := def.Normalize(v)
		if key == k.up {
			pos += knobStep
		} else {
			pos -= knobStep
		}
		if err := u.SetNormalized(k.addr, min(max(pos, 0), 1), plugin.DefaultRampFrames); err != nil {
			return "", false, err
		}
		return describe(u, k.addr)
	}

	return "", false, nil
}

func describe(u *plugin.Unit, addr plugin.Address) (string, bool, error) {
	def, err := plugin.Lookup(addr)
	if err != nil {
		return "", false, err
	}
	s, err := u.FormatParameter(addr)
	if err != nil {
		return "", false, err
	}
	return def.Name + ": " + s, false, nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func printHelp(w io.Writer) {
	var b strings.Builder
	b.WriteString("Keys:\r\n")
	for _, k := range knobs {
		def, _ := plugin.Lookup(k.addr)
		fmt.Fprintf(&b, "  %c/%c  %s down/up\r\n", k.down, k.up, def.Name)
	}
	fmt.Fprintf(&b, "  n     toggle -Feedback\r\n")
	fmt.Fprintf(&b, "  o     toggle Odd 90°\r\n")
	for i, p := range plugin.Presets() {
		fmt.Fprintf(&b, "  %d     preset %s\r\n", i+1, p.Name)
	}
	b.WriteString("  b     bypass\r\n")
	b.WriteString("  space reset delay memory\r\n")
	b.WriteString("  q     quit\r\n")
	_, _ = io.WriteString(w, b.String())
}
