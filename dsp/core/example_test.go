package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-flanger/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithBlockSize(256),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d channels=%d\n", cfg.SampleRate, cfg.BlockSize, cfg.Channels)

	// Output:
	// sampleRate=44100 blockSize=256 channels=2
}

func ExampleNextPowerOfTwo() {
	cfg := core.DefaultProcessorConfig()
	size := int(cfg.MaxDelayMs*cfg.SamplesPerMs()) + 2
	fmt.Println(size, core.NextPowerOfTwo(size))

	// Output:
	// 2402 4096
}
