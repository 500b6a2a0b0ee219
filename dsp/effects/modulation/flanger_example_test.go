package modulation_test

import (
	"fmt"

	"github.com/cwbudde/algo-flanger/dsp/core"
	"github.com/cwbudde/algo-flanger/dsp/effects/modulation"
)

func ExampleFlanger_ProcessInPlace() {
	flanger, err := modulation.NewFlanger(1000,
		modulation.WithFlangerProcessor(core.ProcessorConfig{Channels: 1, BlockSize: 16, MaxDelayMs: 10}),
		modulation.WithFlangerDelayMs(3),
		modulation.WithFlangerDepthMs(3),
		modulation.WithFlangerFeedback(0.5),
		modulation.WithFlangerWetMix(1),
		modulation.WithFlangerDryMix(0),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	buf := []float64{1, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	if err := flanger.ProcessInPlace(buf); err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(buf)
	// Output:
	// [0 0 0 1 0 0 0.5 0 0 0.25]
}
