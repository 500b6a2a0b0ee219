package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-flanger/dsp/buffer"
	"github.com/cwbudde/algo-flanger/dsp/core"
	"github.com/cwbudde/algo-flanger/dsp/dither"
	"github.com/cwbudde/algo-flanger/dsp/lfo"
	"github.com/cwbudde/algo-flanger/dsp/render"
	"github.com/cwbudde/algo-flanger/plugin"
)

const wavFormatPCM = 1

// blockPool shares input blocks between concurrent preset renders.
var blockPool = buffer.NewPool()

type job struct {
	inPath       string
	outPath      string
	preset       int
	overrides    []override
	automation   []automationPoint
	blockSize    int
	bitDepth     int
	tailSeconds  float64
	waveform     lfo.Waveform
	dampingHz    float64
	ditherType   dither.Type
	noiseShaping bool
	logger       *slog.Logger
}

type result struct {
	preset   string
	path     string
	frames   int64
	peak     float64
	failures uint64
}

func fullScale(bitDepth int) float64 {
	return float64(int64(1) << (bitDepth - 1))
}

func deinterleave(data []int, planar [][]float64, scale float64) {
	channels := len(planar)
	for i := 0; i < len(data)/channels; i++ {
		for ch := range planar {
			planar[ch][i] = float64(data[i*channels+ch]) * scale
		}
	}
}

// newQuantizers returns one quantizer per channel so noise-shaping state
// stays per channel. Dither noise is seeded per channel to decorrelate it.
func newQuantizers(j job, channels, bitDepth int) ([]*dither.Quantizer, error) {
	qs := make([]*dither.Quantizer, channels)
	for ch := range qs {
		q, err := dither.NewQuantizer(bitDepth,
			dither.WithType(j.ditherType),
			dither.WithNoiseShaping(j.noiseShaping),
			dither.WithSeed(uint64(ch)+1))
		if err != nil {
			return nil, err
		}
		qs[ch] = q
	}
	return qs, nil
}

func newUnit(j job, sampleRate, channels int) (*plugin.Unit, error) {
	unit, err := plugin.New(
		plugin.WithLogger(j.logger),
		plugin.WithWaveform(j.waveform),
		plugin.WithDamping(j.dampingHz),
		plugin.WithProcessorConfig(core.ProcessorConfig{
			SampleRate: float64(sampleRate),
			BlockSize:  j.blockSize,
			Channels:   channels,
			MaxDelayMs: plugin.MaxDelayMs,
		}),
	)
	if err != nil {
		return nil, err
	}

	if err := unit.ApplyPreset(j.preset); err != nil {
		return nil, err
	}
	for _, o := range j.overrides {
		if err := unit.SetParameter(o.addr, o.value, 0); err != nil {
			return nil, err
		}
	}
	unit.StopRamping()

	return unit, nil
}

func processWAV(ctx context.Context, j job) (res result, err error) {
	res.path = j.outPath
	if presets := plugin.Presets(); j.preset >= 0 && j.preset < len(presets) {
		res.preset = presets[j.preset].Name
	}

	in, err := os.Open(j.inPath)
	if err != nil {
		return res, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = in.Close() }()

	dec := wav.NewDecoder(in)
	if !dec.IsValidFile() {
		return res, fmt.Errorf("invalid WAV file: %s", j.inPath)
	}

	format := dec.Format()
	channels, rate := format.NumChannels, format.SampleRate
	inBits := int(dec.BitDepth)

	if dec.WavAudioFormat != wavFormatPCM {
		return res, fmt.Errorf("unsupported WAV encoding %d, only integer PCM is handled", dec.WavAudioFormat)
	}
	switch inBits {
	case 16, 24, 32:
	default:
		return res, fmt.Errorf("unsupported input bit depth: %d", inBits)
	}

	outBits := j.bitDepth
	if outBits == 0 {
		outBits = inBits
	}

	unit, err := newUnit(j, rate, channels)
	if err != nil {
		return res, err
	}

	quantizers, err := newQuantizers(j, channels, outBits)
	if err != nil {
		return res, err
	}

	j.logger.Debug("processing",
		"input", j.inPath,
		"output", j.outPath,
		"sampleRate", rate,
		"channels", channels,
		"bits", inBits,
		"preset", res.preset)

	out, err := os.Create(j.outPath)
	if err != nil {
		return res, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
	}()

	enc := wav.NewEncoder(out, rate, outBits, channels, wavFormatPCM)
	defer func() {
		if closeErr := enc.Close(); err == nil {
			err = closeErr
		}
	}()

	block := j.blockSize
	inBuf := &audio.IntBuffer{Data: make([]int, block*channels), Format: format}
	outBuf := &audio.IntBuffer{
		Data:           make([]int, block*channels),
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		SourceBitDepth: outBits,
	}

	input := blockPool.Get(channels, block)
	defer blockPool.Put(input)
	planar := input.Slices()
	output := make([][]float64, channels)

	pull := func(_ int64, frames int, dst [][]float64) error {
		input.Views(dst, frames)
		return nil
	}

	sched := newSchedule(j.automation, float64(rate))
	tailLeft := int64(math.Round(j.tailSeconds * float64(rate)))
	inScale := 1 / fullScale(inBits)
	inputDone := false

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		frames := 0
		if !inputDone {
			inBuf.Data = inBuf.Data[:cap(inBuf.Data)]
			n, err := dec.PCMBuffer(inBuf)
			if err != nil && !errors.Is(err, io.EOF) {
				return res, fmt.Errorf("failed to read audio data: %w", err)
			}
			frames = n / channels
			if frames == 0 {
				inputDone = true
			} else {
				deinterleave(inBuf.Data[:frames*channels], planar, inScale)
			}
		}

		if inputDone {
			if tailLeft == 0 {
				break
			}
			frames = int(min(int64(block), tailLeft))
			tailLeft -= int64(frames)
			input.Zero(frames)
		}

		for ch := range output {
			output[ch] = nil
		}

		status := unit.Render(res.frames, frames, sched.block(res.frames, frames), pull, output)
		if status != render.StatusOK {
			return res, fmt.Errorf("render at frame %d: %w", res.frames, status.Err())
		}

		for ch := range output {
			res.peak = max(res.peak, vecmath.MaxAbs(output[ch][:frames]))
		}

		outBuf.Data = outBuf.Data[:frames*channels]
		for ch, q := range quantizers {
			q.ProcessInterleaved(outBuf.Data[ch:], output[ch][:frames], channels)
		}
		if err := enc.Write(outBuf); err != nil {
			return res, fmt.Errorf("failed to write audio data: %w", err)
		}
		outBuf.Data = outBuf.Data[:cap(outBuf.Data)]

		res.frames += int64(frames)
	}

	res.failures = unit.Stats().Failures

	return res, nil
}

// presetOutputPath derives "take-lord-tremolo.wav" from "take.wav".
func presetOutputPath(outPath, presetName string) string {
	ext := filepath.Ext(outPath)
	stem := strings.TrimSuffix(outPath, ext)
	if ext == "" {
		ext = ".wav"
	}
	slug := strings.ToLower(strings.ReplaceAll(presetName, " ", "-"))
	return stem + "-" + slug + ext
}

// renderAllPresets renders base once per factory preset in parallel. The
// first failure cancels the remaining renders.
func renderAllPresets(ctx context.Context, base job) ([]result, error) {
	presets := plugin.Presets()
	results := make([]result, len(presets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, p := range presets {
		j := base
		j.preset = i
		j.outPath = presetOutputPath(base.outPath, p.Name)
		j.logger = base.logger.With("preset", p.Name)

		g.Go(func() error {
			res, err := processWAV(ctx, j)
			if err != nil {
				return fmt.Errorf("%s: %w", p.Name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
