// Command flangeplay plays a test signal or a looped WAV file through the
// flanger on the default audio device. Parameters are changed live from the
// keyboard while the device thread keeps rendering.
//
// Usage:
//
//	flangeplay [flags] [input.wav]
//
// Examples:
//
//	flangeplay -signal noise -preset Sweeper
//	flangeplay -signal saw -freq 55 -duration 20
//	flangeplay guitar.wav
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
	"time"

	"github.com/cwbudde/algo-flanger/dsp/core"
	"github.com/cwbudde/algo-flanger/dsp/lfo"
	dspsignal "github.com/cwbudde/algo-flanger/dsp/signal"
	"github.com/cwbudde/algo-flanger/plugin"
)

var errUsage = errors.New("usage")

type config struct {
	inPath     string
	kind       dspsignal.Kind
	freqHz     float64
	amplitude  float64
	sampleRate int
	channels   int
	block      int
	buffer     time.Duration
	preset     int
	waveform   lfo.Waveform
	dampingHz  float64
	duration   time.Duration
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err == nil {
		err = run(ctx, cfg, os.Stdin, os.Stdout, os.Stderr)
	}
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func parseConfig(args []string, stderr io.Writer) (config, error) {
	fs := flag.NewFlagSet("flangeplay", flag.ContinueOnError)
	fs.SetOutput(stderr)

	kind := fs.String("signal", "noise", "test signal: sine, saw, noise or clicks")
	freq := fs.Float64("freq", 110, "test signal frequency in Hz")
	amplitude := fs.Float64("amp", 0.3, "test signal peak amplitude")
	sampleRate := fs.Int("sr", 48000, "sample rate for test signals in Hz")
	channels := fs.Int("channels", 2, "output channels")
	block := fs.Int("block", 256, "frames per render call")
	buffer := fs.Duration("buffer", 40*time.Millisecond, "device buffer length")
	presetName := fs.String("preset", "Flangie", "factory preset to start from")
	waveform := fs.String("waveform", "triangle", "LFO waveform: sine, triangle or sawtooth")
	damping := fs.Float64("damping", 0, "feedback low-pass cutoff in Hz, 0 disables")
	duration := fs.Duration("duration", 0, "stop after this long, 0 plays until q")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: flangeplay [flags] [input.wav]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return config{}, errUsage
		}
		return config{}, err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return config{}, errUsage
	}

	cfg := config{
		inPath:     fs.Arg(0),
		freqHz:     *freq,
		amplitude:  *amplitude,
		sampleRate: *sampleRate,
		channels:   *channels,
		block:      *block,
		buffer:     *buffer,
		dampingHz:  *damping,
		duration:   *duration,
		verbose:    *verbose,
	}

	var err error
	if cfg.kind, err = dspsignal.ParseKind(*kind); err != nil {
		return config{}, err
	}
	if cfg.waveform, err = lfo.ParseWaveform(*waveform); err != nil {
		return config{}, err
	}
	if cfg.preset, _, err = plugin.PresetByName(*presetName); err != nil {
		return config{}, err
	}

	switch {
	case cfg.sampleRate <= 0:
		return config{}, fmt.Errorf("sample rate must be > 0: %d", cfg.sampleRate)
	case cfg.channels < 1 || cfg.channels > 2:
		return config{}, fmt.Errorf("channels must be 1 or 2: %d", cfg.channels)
	case cfg.block <= 0:
		return config{}, fmt.Errorf("block size must be > 0: %d", cfg.block)
	case cfg.buffer <= 0:
		return config{}, fmt.Errorf("buffer must be > 0: %s", cfg.buffer)
	case cfg.duration < 0:
		return config{}, fmt.Errorf("duration must be >= 0: %s", cfg.duration)
	}

	return cfg, nil
}

// newPlayback builds the unit and its input. A WAV input overrides the
// sample rate.
func newPlayback(cfg config, logger *slog.Logger) (*plugin.Unit, source, int, error) {
	sampleRate := cfg.sampleRate

	var src source
	if cfg.inPath != "" {
		loop, rate, err := loadWAV(cfg.inPath)
		if err != nil {
			return nil, nil, 0, err
		}
		src, sampleRate = loop, rate
	} else {
		gen, err := dspsignal.NewSource(cfg.kind, cfg.freqHz, float64(sampleRate), dspsignal.WithAmplitude(cfg.amplitude))
		if err != nil {
			return nil, nil, 0, err
		}
		src = toneSource{gen: gen}
	}

	unit, err := plugin.New(
		plugin.WithLogger(logger),
		plugin.WithWaveform(cfg.waveform),
		plugin.WithDamping(cfg.dampingHz),
		plugin.WithProcessorConfig(core.ProcessorConfig{
			SampleRate: float64(sampleRate),
			BlockSize:  cfg.block,
			Channels:   cfg.channels,
			MaxDelayMs: plugin.MaxDelayMs,
		}),
	)
	if err != nil {
		return nil, nil, 0, err
	}
	if err := unit.ApplyPreset(cfg.preset); err != nil {
		return nil, nil, 0, err
	}
	unit.StopRamping()

	return unit, src, sampleRate, nil
}

func run(ctx context.Context, cfg config, stdin *os.File, stdout, stderr io.Writer) error {
	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	unit, src, sampleRate, err := newPlayback(cfg, logger)
	if err != nil {
		return err
	}

	st := newStream(unit, src)
	dev, err := openDevice(sampleRate, cfg.channels, cfg.buffer, st)
	if err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	defer func() {
		if err := dev.Close(); err != nil {
			logger.Warn("closing audio device", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.duration)
		defer cancel()
	}

	kb, err := openKeyboard(ctx, stdin)
	if err != nil {
		return err
	}
	defer kb.Close()

	printHelp(stdout)
	fmt.Fprintf(stdout, "playing at %d Hz, preset %s\r\n", sampleRate, plugin.Presets()[cfg.preset].Name)

	meter := time.NewTicker(250 * time.Millisecond)
	defer meter.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprint(stdout, "\r\n")
			return nil
		case key, ok := <-kb.keys:
			if !ok {
				// stdin closed: keep playing until the context ends.
				kb.keys = nil
				continue
			}
			msg, quit, err := handleKey(unit, key)
			if err != nil {
				return err
			}
			if quit {
				fmt.Fprint(stdout, "\r\n")
				return nil
			}
			if msg != "" {
				fmt.Fprintf(stdout, "\r\033[K%s\r\n", msg)
			}
		case <-meter.C:
			fmt.Fprintf(stdout, "\r\033[Kpeak %5.1f dBFS%s", core.LinearPowerToDB(sq(st.takePeak())), bypassMark(unit))
			if n := st.failures.Load(); n > 0 {
				logger.Debug("render failures", "count", n)
			}
		}
	}
}

func sq(x float64) float64 { return x * x }

func bypassMark(u *plugin.Unit) string {
	if u.IsBypassed() {
		return " [bypass]"
	}
	return ""
}
