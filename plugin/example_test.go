package plugin_test

import (
	"fmt"

	"github.com/cwbudde/algo-flanger/plugin"
)

func ExampleUnit_ApplyPreset() {
	u, err := plugin.New()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if err := u.ApplyPreset(3); err != nil {
		fmt.Println("error:", err)
		return
	}

	for _, def := range plugin.Definitions() {
		s, _ := u.FormatParameter(def.Address)
		fmt.Printf("%s: %s\n", def.Name, s)
	}
	// Output:
	// Depth: 5.00 ms
	// Rate: 8.00 Hz
	// Delay: 0.00 ms
	// Feedback: 85.00%
	// Dry: 0%
	// Wet: 100%
	// -Feedback: off
	// Odd 90°: off
}
