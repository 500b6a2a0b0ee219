// Command biquadinfo prints the response of the biquad coefficient
// generators.
//
// Usage:
//
//	biquadinfo [flags] [design-name ...]
//
// Without arguments it prints info for all known designs.
//
// Examples:
//
//	biquadinfo lowpass2
//	biquadinfo -freq 500 -q 4 lowpass2 highpass2
//	biquadinfo -sr 44100 -measure -all
//	biquadinfo -list
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-flanger/dsp/filter/biquad"
	"github.com/cwbudde/algo-flanger/dsp/filter/design"
	"github.com/cwbudde/algo-flanger/measure/response"
)

type designEntry struct {
	name     string
	hasQ     bool
	generate func(freq, q, sampleRate float64) biquad.Coefficients
}

var registry = []designEntry{
	{"lowpass1", false, func(f, _, sr float64) biquad.Coefficients { return design.LowPass1(f, sr) }},
	{"highpass1", false, func(f, _, sr float64) biquad.Coefficients { return design.HighPass1(f, sr) }},
	{"allpass1", false, func(f, _, sr float64) biquad.Coefficients { return design.AllPass1(f, sr) }},
	{"lowpass2", true, design.LowPass2},
	{"highpass2", true, design.HighPass2},
	{"allpass2", true, design.AllPass2},
}

type settings struct {
	freq       float64
	q          float64
	sampleRate float64
	measure    bool
	fftSize    int
}

func main() {
	freq := flag.Float64("freq", 1000, "corner frequency in Hz")
	q := flag.Float64("q", 0.707, "resonance for second-order designs")
	sampleRate := flag.Float64("sr", 48000, "sample rate in Hz")
	all := flag.Bool("all", false, "show all designs")
	list := flag.Bool("list", false, "list available design names")
	measure := flag.Bool("measure", false, "also measure the impulse response with an FFT and report the deviation")
	fftSize := flag.Int("fft", 8192, "FFT size used by -measure")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: biquadinfo [flags] [design-name ...]\n\n")
		fmt.Fprintf(os.Stderr, "Prints coefficients and response of biquad designs.\n")
		fmt.Fprintf(os.Stderr, "Without arguments or with -all, prints info for all designs.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  biquadinfo lowpass2\n")
		fmt.Fprintf(os.Stderr, "  biquadinfo -freq 500 -q 4 lowpass2 highpass2\n")
		fmt.Fprintf(os.Stderr, "  biquadinfo -measure -all\n")
		fmt.Fprintf(os.Stderr, "  biquadinfo -list\n")
	}
	flag.Parse()

	if *list {
		printList(os.Stdout)
		return
	}

	names := flag.Args()
	if len(names) == 0 || *all {
		names = nil
		for _, e := range registry {
			names = append(names, e.name)
		}
	}

	entries := resolveEntries(names, os.Stderr)
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "error: no matching designs\n")
		os.Exit(1)
	}

	cfg := settings{freq: *freq, q: *q, sampleRate: *sampleRate, measure: *measure, fftSize: *fftSize}
	if err := printAnalysis(os.Stdout, entries, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printList(w io.Writer) {
	names := make([]string, len(registry))
	for i, e := range registry {
		names[i] = e.name
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
}

func resolveEntries(names []string, warn io.Writer) []designEntry {
	byName := make(map[string]designEntry, len(registry))
	for _, e := range registry {
		byName[e.name] = e
	}

	var result []designEntry
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		e, ok := byName[name]
		if !ok {
			fmt.Fprintf(warn, "warning: unknown design %q (use -list to see available)\n", name)
			continue
		}
		result = append(result, e)
	}
	return result
}

func printAnalysis(w io.Writer, entries []designEntry, cfg settings) error {
	if cfg.sampleRate <= 0 || cfg.freq <= 0 || cfg.freq >= cfg.sampleRate/2 {
		return fmt.Errorf("frequency must be in (0, %g): %g", cfg.sampleRate/2, cfg.freq)
	}

	var analyzer *response.Analyzer
	if cfg.measure {
		a, err := response.NewAnalyzer(cfg.sampleRate, cfg.fftSize)
		if err != nil {
			return err
		}
		analyzer = a
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "Design\tFreq [Hz]\tQ\tA0\tA1\tA2\tB1\tB2\tDC [dB]\tFc [dB]\tNyq/2 [dB]"
	rule := "------\t---------\t-\t--\t--\t--\t--\t--\t-------\t-------\t----------"
	if analyzer != nil {
		header += "\tMax dev [dB]"
		rule += "\t------------"
	}
	if _, err := fmt.Fprintln(tw, header); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, rule); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	for _, e := range entries {
		c := e.generate(cfg.freq, cfg.q, cfg.sampleRate)

		q := "-"
		if e.hasQ {
			q = fmt.Sprintf("%.3f", cfg.q)
		}

		row := fmt.Sprintf("%s\t%.1f\t%s\t%.6f\t%.6f\t%.6f\t%.6f\t%.6f\t%.2f\t%.2f\t%.2f",
			e.name,
			cfg.freq,
			q,
			c.A0, c.A1, c.A2, c.B1, c.B2,
			c.MagnitudeDB(0, cfg.sampleRate),
			c.MagnitudeDB(cfg.freq, cfg.sampleRate),
			c.MagnitudeDB(cfg.sampleRate/4, cfg.sampleRate),
		)

		if analyzer != nil {
			s, err := analyzer.MeasureFilter(c)
			if err != nil {
				return fmt.Errorf("%s: %w", e.name, err)
			}
			row += fmt.Sprintf("\t%.4f", response.MaxDeviationDB(s, c, cfg.sampleRate/2, -80))
		}

		if _, err := fmt.Fprintln(tw, row); err != nil {
			return fmt.Errorf("failed to write output row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}
