package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-flanger/dsp/core"
	"github.com/cwbudde/algo-flanger/dsp/delay"
	"github.com/cwbudde/algo-flanger/dsp/filter/biquad"
	"github.com/cwbudde/algo-flanger/dsp/filter/design"
	"github.com/cwbudde/algo-flanger/dsp/lfo"
	"github.com/cwbudde/algo-flanger/dsp/param"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultFlangerRateHz   = 0.14
	defaultFlangerDepthMs  = 7
	defaultFlangerDelayMs  = 0.72
	defaultFlangerFeedback = 0.5
	defaultFlangerWetMix   = 0.5
	defaultFlangerDryMix   = 0.5

	// DefaultFlangerMaxDelayMs is the delay memory allocated when no maximum
	// is configured.
	DefaultFlangerMaxDelayMs = 50.0
	// MaxFlangerRateHz is the fastest sweep accepted by SetRateHz.
	MaxFlangerRateHz = 20.0
)

// FlangerOption mutates flanger construction parameters.
type FlangerOption func(*flangerConfig) error

type flangerConfig struct {
	rateHz           float64
	depthMs          float64
	delayMs          float64
	feedback         float64
	wetMix           float64
	dryMix           float64
	negativeFeedback bool
	odd90            bool
	waveform         lfo.Waveform
	dampingHz        float64
	channels         int
	maxFrames        int
	maxDelayMs       float64
}

func defaultFlangerConfig() flangerConfig {
	proc := core.DefaultProcessorConfig()
	return flangerConfig{
		rateHz:     defaultFlangerRateHz,
		depthMs:    defaultFlangerDepthMs,
		delayMs:    defaultFlangerDelayMs,
		feedback:   defaultFlangerFeedback,
		wetMix:     defaultFlangerWetMix,
		dryMix:     defaultFlangerDryMix,
		waveform:   lfo.Triangle,
		channels:   proc.Channels,
		maxFrames:  proc.BlockSize,
		maxDelayMs: DefaultFlangerMaxDelayMs,
	}
}

// WithFlangerRateHz sets modulation speed in Hz.
func WithFlangerRateHz(rateHz float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		if err := validateRate(rateHz); err != nil {
			return err
		}

		cfg.rateHz = rateHz

		return nil
	}
}

// WithFlangerDepthMs sets the far end of the sweep in milliseconds.
func WithFlangerDepthMs(depthMs float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		if depthMs < 0 || !core.IsFinite(depthMs) {
			return fmt.Errorf("flanger depth must be >= 0 and finite: %f", depthMs)
		}

		cfg.depthMs = depthMs

		return nil
	}
}

// WithFlangerDelayMs sets the near end of the sweep in milliseconds.
func WithFlangerDelayMs(delayMs float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		if delayMs < 0 || !core.IsFinite(delayMs) {
			return fmt.Errorf("flanger delay must be >= 0 and finite: %f", delayMs)
		}

		cfg.delayMs = delayMs

		return nil
	}
}

// WithFlangerFeedback sets the feedback amount in [0, 1].
func WithFlangerFeedback(feedback float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		if err := validateUnit("feedback", feedback); err != nil {
			return err
		}

		cfg.feedback = feedback

		return nil
	}
}

// WithFlangerWetMix sets the delayed signal level in [0, 1].
func WithFlangerWetMix(mix float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		if err := validateUnit("wet mix", mix); err != nil {
			return err
		}

		cfg.wetMix = mix

		return nil
	}
}

// WithFlangerDryMix sets the direct signal level in [0, 1].
func WithFlangerDryMix(mix float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		if err := validateUnit("dry mix", mix); err != nil {
			return err
		}

		cfg.dryMix = mix

		return nil
	}
}

// WithFlangerNegativeFeedback inverts the feedback polarity.
func WithFlangerNegativeFeedback(on bool) FlangerOption {
	return func(cfg *flangerConfig) error {
		cfg.negativeFeedback = on
		return nil
	}
}

// WithFlangerOdd90 sweeps odd channels a quarter period ahead of even ones.
func WithFlangerOdd90(on bool) FlangerOption {
	return func(cfg *flangerConfig) error {
		cfg.odd90 = on
		return nil
	}
}

// WithFlangerWaveform selects the sweep shape.
func WithFlangerWaveform(w lfo.Waveform) FlangerOption {
	return func(cfg *flangerConfig) error {
		if w < lfo.Sine || w > lfo.Sawtooth {
			return fmt.Errorf("flanger waveform unknown: %d", int32(w))
		}

		cfg.waveform = w

		return nil
	}
}

// WithFlangerDamping low-passes the feedback path at cutoffHz. Zero turns
// damping off.
func WithFlangerDamping(cutoffHz float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		if cutoffHz < 0 || !core.IsFinite(cutoffHz) {
			return fmt.Errorf("flanger damping must be >= 0 and finite: %f", cutoffHz)
		}

		cfg.dampingHz = cutoffHz

		return nil
	}
}

// WithFlangerProcessor sets channel count, largest block and delay memory
// from a processor configuration.
func WithFlangerProcessor(proc core.ProcessorConfig) FlangerOption {
	return func(cfg *flangerConfig) error {
		proc.SampleRate = 1
		if err := proc.Validate(); err != nil {
			return fmt.Errorf("flanger: %w", err)
		}

		cfg.channels = proc.Channels
		cfg.maxFrames = proc.BlockSize
		cfg.maxDelayMs = proc.MaxDelayMs

		return nil
	}
}

// Flanger mixes each channel with a copy of itself read from a delay line
// whose tap an LFO sweeps between the delay and depth settings.
//
// The tap position in milliseconds is
//
//	delay + (depth - delay) * (lfo + 1) / 2
//
// clamped to the delay memory. With odd-90 enabled, odd channels read the
// LFO a quarter period ahead for a wider stereo image.
//
// Parameter setters are safe to call from any goroutine while another
// goroutine renders; changes glide over the ramp length passed with them.
// Configure, Reset and SetSampleRate require rendering to be stopped.
type Flanger struct {
	sampleRate   float64
	samplesPerMs float64
	channels     int
	maxFrames    int
	maxDelayMs   float64
	dampingHz    float64

	depth    param.Ramped
	delay    param.Ramped
	feedback param.Ramped
	wetMix   param.Ramped
	dryMix   param.Ramped

	negativeFeedback param.Switch
	odd90            param.Switch

	osc     *lfo.LFO
	lines   []*delay.Line
	damping []*biquad.Filter
	maxTap  float64

	evenTaps []float64
	oddTaps  []float64
	fbGains  []float64
	wetGains []float64
	dryGains []float64
	wetBuf   []float64

	mono   [][]float64
	single []float64
}

// NewFlanger creates a flanger with practical defaults and optional overrides.
func NewFlanger(sampleRate float64, opts ...FlangerOption) (*Flanger, error) {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return nil, fmt.Errorf("flanger sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultFlangerConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&cfg)
		if err != nil {
			return nil, err
		}
	}

	if cfg.depthMs > cfg.maxDelayMs || cfg.delayMs > cfg.maxDelayMs {
		return nil, fmt.Errorf("flanger sweep exceeds max delay %f ms: delay=%f depth=%f",
			cfg.maxDelayMs, cfg.delayMs, cfg.depthMs)
	}

	osc, err := lfo.New(sampleRate, cfg.rateHz, cfg.waveform)
	if err != nil {
		return nil, err
	}

	f := &Flanger{osc: osc, dampingHz: cfg.dampingHz}
	f.depth.Reset(cfg.depthMs)
	f.delay.Reset(cfg.delayMs)
	f.feedback.Reset(cfg.feedback)
	f.wetMix.Reset(cfg.wetMix)
	f.dryMix.Reset(cfg.dryMix)
	f.negativeFeedback.Set(cfg.negativeFeedback)
	f.odd90.Set(cfg.odd90)

	err = f.Configure(cfg.channels, sampleRate, cfg.maxFrames, cfg.maxDelayMs)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// Configure reallocates delay memory and scratch buffers for channels
// channels, blocks of up to maxFrames frames and taps up to maxDelayMs, and
// resets the sweep. On error the previous configuration stays in effect.
func (f *Flanger) Configure(channels int, sampleRate float64, maxFrames int, maxDelayMs float64) error {
	proc := core.ProcessorConfig{
		SampleRate: sampleRate,
		BlockSize:  maxFrames,
		Channels:   channels,
		MaxDelayMs: maxDelayMs,
	}
	if err := proc.Validate(); err != nil {
		return fmt.Errorf("flanger: %w", err)
	}
	if f.dampingHz > 0 && f.dampingHz >= sampleRate/2 {
		return fmt.Errorf("flanger damping must be below Nyquist (%f Hz): %f", sampleRate/2, f.dampingHz)
	}

	size := int(math.Ceil(maxDelayMs*proc.SamplesPerMs())) + 2

	lines := make([]*delay.Line, channels)
	for ch := range lines {
		line, err := delay.New(size)
		if err != nil {
			return fmt.Errorf("flanger: %w", err)
		}
		lines[ch] = line
	}

	var damping []*biquad.Filter
	if f.dampingHz > 0 {
		coeffs := design.LowPass1(f.dampingHz, sampleRate)
		damping = make([]*biquad.Filter, channels)
		for ch := range damping {
			damping[ch] = biquad.NewFilter(biquad.CanonicalTranspose{}, coeffs)
		}
	}

	if err := f.osc.SetSampleRate(sampleRate); err != nil {
		return err
	}

	f.sampleRate = sampleRate
	f.samplesPerMs = proc.SamplesPerMs()
	f.channels = channels
	f.maxFrames = maxFrames
	f.maxDelayMs = maxDelayMs
	f.lines = lines
	f.damping = damping
	f.maxTap = float64(lines[0].Len() - 2)

	f.evenTaps = make([]float64, maxFrames)
	f.oddTaps = make([]float64, maxFrames)
	f.fbGains = make([]float64, maxFrames)
	f.wetGains = make([]float64, maxFrames)
	f.dryGains = make([]float64, maxFrames)
	f.wetBuf = make([]float64, maxFrames)
	f.single = make([]float64, 1)
	f.mono = make([][]float64, 1)

	f.osc.Reset()
	f.StopRamping()

	return nil
}

// SetSampleRate reconfigures for a new sample rate, keeping the channel
// count, block size and delay memory in milliseconds.
func (f *Flanger) SetSampleRate(sampleRate float64) error {
	return f.Configure(f.channels, sampleRate, f.maxFrames, f.maxDelayMs)
}

// SetRateHz sets the sweep speed, gliding over rampFrames frames.
func (f *Flanger) SetRateHz(rateHz float64, rampFrames int) error {
	if err := validateRate(rateHz); err != nil {
		return err
	}

	f.osc.SetFrequency(rateHz, rampFrames)

	return nil
}

// SetDepthMs sets the far end of the sweep in milliseconds.
func (f *Flanger) SetDepthMs(depthMs float64, rampFrames int) error {
	if depthMs < 0 || depthMs > f.maxDelayMs || !core.IsFinite(depthMs) {
		return fmt.Errorf("flanger depth must be in [0, %f]: %f", f.maxDelayMs, depthMs)
	}

	f.depth.SetRamped(depthMs, rampFrames)

	return nil
}

// SetDelayMs sets the near end of the sweep in milliseconds.
func (f *Flanger) SetDelayMs(delayMs float64, rampFrames int) error {
	if delayMs < 0 || delayMs > f.maxDelayMs || !core.IsFinite(delayMs) {
		return fmt.Errorf("flanger delay must be in [0, %f]: %f", f.maxDelayMs, delayMs)
	}

	f.delay.SetRamped(delayMs, rampFrames)

	return nil
}

// SetFeedback sets the feedback amount in [0, 1].
func (f *Flanger) SetFeedback(feedback float64, rampFrames int) error {
	if err := validateUnit("feedback", feedback); err != nil {
		return err
	}

	f.feedback.SetRamped(feedback, rampFrames)

	return nil
}

// SetWetMix sets the delayed signal level in [0, 1].
func (f *Flanger) SetWetMix(mix float64, rampFrames int) error {
	if err := validateUnit("wet mix", mix); err != nil {
		return err
	}

	f.wetMix.SetRamped(mix, rampFrames)

	return nil
}

// SetDryMix sets the direct signal level in [0, 1].
func (f *Flanger) SetDryMix(mix float64, rampFrames int) error {
	if err := validateUnit("dry mix", mix); err != nil {
		return err
	}

	f.dryMix.SetRamped(mix, rampFrames)

	return nil
}

// SetNegativeFeedback inverts the feedback polarity.
func (f *Flanger) SetNegativeFeedback(on bool) { f.negativeFeedback.Set(on) }

// SetOdd90 toggles the quadrature sweep on odd channels.
func (f *Flanger) SetOdd90(on bool) { f.odd90.Set(on) }

// SetWaveform selects the sweep shape.
func (f *Flanger) SetWaveform(w lfo.Waveform) { f.osc.SetWaveform(w) }

// SampleRate returns sample rate in Hz.
func (f *Flanger) SampleRate() float64 { return f.sampleRate }

// Channels returns the configured channel count.
func (f *Flanger) Channels() int { return f.channels }

// MaxFrames returns the largest block RenderFrames accepts.
func (f *Flanger) MaxFrames() int { return f.maxFrames }

// MaxDelayMs returns the delay memory in milliseconds.
func (f *Flanger) MaxDelayMs() float64 { return f.maxDelayMs }

// RateHz returns LFO speed in Hz.
func (f *Flanger) RateHz() float64 { return f.osc.Frequency() }

// DepthMs returns the far end of the sweep in milliseconds.
func (f *Flanger) DepthMs() float64 { return f.depth.Value() }

// DelayMs returns the near end of the sweep in milliseconds.
func (f *Flanger) DelayMs() float64 { return f.delay.Value() }

// Feedback returns the feedback amount in [0, 1].
func (f *Flanger) Feedback() float64 { return f.feedback.Value() }

// WetMix returns the delayed signal level.
func (f *Flanger) WetMix() float64 { return f.wetMix.Value() }

// DryMix returns the direct signal level.
func (f *Flanger) DryMix() float64 { return f.dryMix.Value() }

// NegativeFeedback reports whether feedback polarity is inverted.
func (f *Flanger) NegativeFeedback() bool { return f.negativeFeedback.Get() }

// Odd90 reports whether odd channels sweep in quadrature.
func (f *Flanger) Odd90() bool { return f.odd90.Get() }

// Waveform returns the sweep shape.
func (f *Flanger) Waveform() lfo.Waveform { return f.osc.Waveform() }

// DampingHz returns the feedback low-pass cutoff, or 0 when disabled.
func (f *Flanger) DampingHz() float64 { return f.dampingHz }

// StopRamping settles every parameter at its latest target. Hosts call it
// when rendering stops.
func (f *Flanger) StopRamping() {
	f.depth.StopRamping()
	f.delay.StopRamping()
	f.feedback.StopRamping()
	f.wetMix.StopRamping()
	f.dryMix.StopRamping()
	f.osc.StopRamping()
}

// Reset clears delay, filter and LFO state.
func (f *Flanger) Reset() {
	for _, line := range f.lines {
		line.Reset()
	}

	for _, filter := range f.damping {
		filter.Reset()
	}

	f.osc.Reset()
	f.StopRamping()
}

// RenderFrames processes frames samples of every channel. in and out must
// hold Channels() slices of at least frames samples; out[ch] may alias
// in[ch]. frames must not exceed MaxFrames().
func (f *Flanger) RenderFrames(in, out [][]float64, frames int) {
	if frames <= 0 {
		return
	}

	if frames == 1 {
		f.renderFrame(in, out)
		return
	}
	f.renderBlock(in, out, frames)
}

func (f *Flanger) renderBlock(in, out [][]float64, frames int) {
	odd90 := f.odd90.Get() && f.channels > 1
	negative := f.negativeFeedback.Get()

	w0 := f.wetMix.Next()
	d0 := f.dryMix.Next()
	steady := true

	for i := 0; i < frames; i++ {
		wet, dry := w0, d0
		if i > 0 {
			wet = f.wetMix.Next()
			dry = f.dryMix.Next()
			steady = steady && wet == w0 && dry == d0
		}
		f.wetGains[i] = wet
		f.dryGains[i] = dry

		delayMs := f.delay.Next()
		span := f.depth.Next() - delayMs

		fb := f.feedback.Next()
		if negative {
			fb = -fb
		}
		f.fbGains[i] = fb

		f.evenTaps[i] = f.tapSamples(delayMs, span, f.osc.Value())
		if odd90 {
			f.oddTaps[i] = f.tapSamples(delayMs, span, f.osc.QuadPhaseValue())
		}
	}

	fbGains := f.fbGains[:frames]
	wetBuf := f.wetBuf[:frames]

	for ch := 0; ch < f.channels; ch++ {
		taps := f.evenTaps[:frames]
		if odd90 && ch&1 == 1 {
			taps = f.oddTaps[:frames]
		}

		src := in[ch][:frames]
		dst := out[ch][:frames]
		line := f.lines[ch]

		if f.damping != nil {
			damp := f.damping[ch]
			for i, x := range src {
				delayed := line.Read(taps[i])
				line.Write(x + fbGains[i]*damp.Transform(delayed))
				wetBuf[i] = delayed
			}
		} else {
			for i, x := range src {
				delayed := line.Read(taps[i])
				line.Write(x + fbGains[i]*delayed)
				wetBuf[i] = delayed
			}
		}

		if steady {
			vecmath.ScaleBlockInPlace(wetBuf, w0)
			vecmath.ScaleBlock(dst, src, d0)
			vecmath.AddBlockInPlace(dst, wetBuf)
		} else {
			vecmath.MulBlockInPlace(wetBuf, f.wetGains[:frames])
			vecmath.MulAddBlock(dst, src, f.dryGains[:frames], wetBuf)
		}
	}
}

// renderFrame handles one-frame blocks with the final parameter values
// instead of stepping ramps. Every ramp is settled there, so the next block
// continues from the values this frame used.
func (f *Flanger) renderFrame(in, out [][]float64) {
	delayMs := settle(&f.delay)
	span := settle(&f.depth) - delayMs

	fb := settle(&f.feedback)
	if f.negativeFeedback.Get() {
		fb = -fb
	}
	wet := settle(&f.wetMix)
	dry := settle(&f.dryMix)

	evenTap := f.tapSamples(delayMs, span, f.osc.Value())
	oddTap := evenTap
	if f.odd90.Get() && f.channels > 1 {
		oddTap = f.tapSamples(delayMs, span, f.osc.QuadPhaseValue())
	}

	for ch := 0; ch < f.channels; ch++ {
		tap := evenTap
		if ch&1 == 1 {
			tap = oddTap
		}

		x := in[ch][0]
		delayed := f.lines[ch].Read(tap)
		fbSig := delayed
		if f.damping != nil {
			fbSig = f.damping[ch].Transform(delayed)
		}
		f.lines[ch].Write(x + fb*fbSig)
		out[ch][0] = wet*delayed + dry*x
	}
}

// settle ends any ramp on r at its block-final value and returns it.
func settle(r *param.Ramped) float64 {
	r.StopRamping()
	return r.Current()
}

func (f *Flanger) tapSamples(delayMs, span, lfoValue float64) float64 {
	tap := (delayMs + span*core.BipolarToUnipolar(lfoValue)) * f.samplesPerMs
	return min(max(tap, 1), f.maxTap)
}

// Process processes one sample, stepping ramps by one frame. The flanger
// must be configured for one channel.
func (f *Flanger) Process(sample float64) float64 {
	f.single[0] = sample
	f.mono[0] = f.single
	f.renderBlock(f.mono, f.mono, 1)
	return f.single[0]
}

// ProcessInPlace applies flanging to buf in place. The flanger must be
// configured for one channel.
func (f *Flanger) ProcessInPlace(buf []float64) error {
	if f.channels != 1 {
		return fmt.Errorf("flanger ProcessInPlace needs 1 channel, configured for %d", f.channels)
	}

	for start := 0; start < len(buf); start += f.maxFrames {
		end := min(start+f.maxFrames, len(buf))
		f.mono[0] = buf[start:end]
		f.RenderFrames(f.mono, f.mono, end-start)
	}

	return nil
}

func validateRate(rateHz float64) error {
	if rateHz < 0 || rateHz > MaxFlangerRateHz || !core.IsFinite(rateHz) {
		return fmt.Errorf("flanger rate must be in [0, %f]: %f", MaxFlangerRateHz, rateHz)
	}

	return nil
}

func validateUnit(name string, v float64) error {
	if v < 0 || v > 1 || !core.IsFinite(v) {
		return fmt.Errorf("flanger %s must be in [0, 1]: %f", name, v)
	}

	return nil
}
