// Command flangewav runs a WAV file through the flanger.
//
// Usage:
//
//	flangewav [flags] input.wav output.wav
//
// Parameters start from a factory preset and can be overridden with -set.
// -automate schedules sample-accurate parameter changes while rendering.
// With -all-presets the output name is used as a prefix and every factory
// preset is rendered concurrently.
//
// Examples:
//
//	flangewav -preset Sweeper in.wav out.wav
//	flangewav -set depth=12,feedback=70 -tail 2 in.wav out.wav
//	flangewav -automate rate=4@1.5,wet=0@3 in.wav out.wav
//	flangewav -all-presets -dither none in.wav out.wav
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/cwbudde/algo-flanger/dsp/dither"
	"github.com/cwbudde/algo-flanger/dsp/lfo"
	"github.com/cwbudde/algo-flanger/plugin"
)

const defaultBlockSize = 512

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("flangewav", flag.ContinueOnError)
	fs.SetOutput(stderr)

	presetName := fs.String("preset", "Flangie", "factory preset to start from")
	allPresets := fs.Bool("all-presets", false, "render every factory preset, using the output name as prefix")
	set := fs.String("set", "", "comma-separated parameter overrides, e.g. depth=10,odd90=1")
	automate := fs.String("automate", "", "comma-separated timed changes, e.g. rate=4@1.5 (value at seconds)")
	ramp := fs.Int("ramp", plugin.DefaultRampFrames, "glide in frames for automated changes")
	waveform := fs.String("waveform", "triangle", "LFO waveform: sine, triangle or sawtooth")
	damping := fs.Float64("damping", 0, "feedback low-pass cutoff in Hz, 0 disables")
	block := fs.Int("block", defaultBlockSize, "frames per render call")
	bits := fs.Int("bits", 0, "output bit depth (16, 24 or 32), 0 keeps the input depth")
	tail := fs.Float64("tail", 0, "seconds of silence rendered after the input to let feedback ring out")
	ditherName := fs.String("dither", "tpdf", "output dither: none, rpdf or tpdf")
	shaping := fs.Bool("noise-shaping", false, "first-order noise shaping of the output quantization")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: flangewav [flags] input.wav output.wav\n\n")
		fmt.Fprintf(stderr, "Presets:")
		for _, p := range plugin.Presets() {
			fmt.Fprintf(stderr, " %q", p.Name)
		}
		fmt.Fprintf(stderr, "\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errUsage
		}
		return err
	}

	if fs.NArg() != 2 {
		fs.Usage()
		return errUsage
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	w, err := lfo.ParseWaveform(*waveform)
	if err != nil {
		return err
	}

	ditherType, err := dither.ParseType(*ditherName)
	if err != nil {
		return err
	}

	overrides, err := parseOverrides(*set)
	if err != nil {
		return err
	}

	points, err := parseAutomation(*automate, *ramp)
	if err != nil {
		return err
	}

	if *block <= 0 {
		return fmt.Errorf("block size must be > 0: %d", *block)
	}
	if *tail < 0 {
		return fmt.Errorf("tail must be >= 0: %g", *tail)
	}
	switch *bits {
	case 0, 16, 24, 32:
	default:
		return fmt.Errorf("unsupported output bit depth: %d", *bits)
	}

	base := job{
		inPath:       fs.Arg(0),
		outPath:      fs.Arg(1),
		overrides:    overrides,
		automation:   points,
		blockSize:    *block,
		bitDepth:     *bits,
		tailSeconds:  *tail,
		waveform:     w,
		dampingHz:    *damping,
		ditherType:   ditherType,
		noiseShaping: *shaping,
		logger:       logger,
	}

	if *allPresets {
		results, err := renderAllPresets(ctx, base)
		for _, res := range results {
			logger.Info("rendered", "preset", res.preset, "output", res.path, "frames", res.frames, "peak", res.peak)
		}
		return err
	}

	index, _, err := plugin.PresetByName(*presetName)
	if err != nil {
		return err
	}
	base.preset = index

	res, err := processWAV(ctx, base)
	if err != nil {
		return err
	}

	logger.Info("rendered", "output", res.path, "frames", res.frames, "peak", res.peak, "failures", res.failures)

	return nil
}
