package core

import (
	"fmt"
	"math"
)

// ProcessorConfig defines common DSP processing settings.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
	Channels   int
	// MaxDelayMs bounds the delay memory a processor allocates.
	MaxDelayMs float64
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns sensible defaults for offline and streaming use.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 48000,
		BlockSize:  512,
		Channels:   2,
		MaxDelayMs: 50,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the largest block a processor must render in one call.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithChannels sets the channel count.
func WithChannels(channels int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if channels > 0 {
			cfg.Channels = channels
		}
	}
}

// WithMaxDelayMs sets the maximum delay in milliseconds.
func WithMaxDelayMs(ms float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if ms > 0 {
			cfg.MaxDelayMs = ms
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports the first setting that cannot be used for processing.
func (c ProcessorConfig) Validate() error {
	if c.SampleRate <= 0 || math.IsNaN(c.SampleRate) || math.IsInf(c.SampleRate, 0) {
		return fmt.Errorf("core: sample rate must be > 0 and finite: %f", c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("core: block size must be > 0: %d", c.BlockSize)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("core: channel count must be > 0: %d", c.Channels)
	}
	if c.MaxDelayMs <= 0 || math.IsNaN(c.MaxDelayMs) || math.IsInf(c.MaxDelayMs, 0) {
		return fmt.Errorf("core: max delay must be > 0 and finite: %f", c.MaxDelayMs)
	}
	return nil
}

// SamplesPerMs returns the number of samples in one millisecond.
func (c ProcessorConfig) SamplesPerMs() float64 {
	return c.SampleRate / 1000
}
