package plugin

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/cwbudde/algo-flanger/dsp/core"
	"github.com/cwbudde/algo-flanger/dsp/effects/modulation"
	"github.com/cwbudde/algo-flanger/dsp/lfo"
	"github.com/cwbudde/algo-flanger/dsp/render"
)

// DefaultRampFrames is the glide applied to parameter changes made with Set
// and by presets and MIDI control changes.
const DefaultRampFrames = 50

// Option configures a Unit at construction.
type Option func(*options) error

type options struct {
	logger     *slog.Logger
	ccMap      map[uint8]Address
	rampFrames int
	waveform   lfo.Waveform
	dampingHz  float64
	proc       core.ProcessorConfig
}

// WithLogger sets the logger used for control-side messages. Rendering
// never logs.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return fmt.Errorf("plugin: logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithCCMap replaces the MIDI control change assignments.
func WithCCMap(m map[uint8]Address) Option {
	return func(o *options) error {
		cc := make(map[uint8]Address, len(m))
		for controller, addr := range m {
			if controller > 127 {
				return fmt.Errorf("plugin: controller number must be <= 127: %d", controller)
			}
			if int(addr) >= numParameters {
				return fmt.Errorf("%w: %d", ErrUnknownParameter, uint64(addr))
			}
			cc[controller] = addr
		}
		o.ccMap = cc
		return nil
	}
}

// WithDefaultRamp sets the glide used by Set, presets and MIDI.
func WithDefaultRamp(frames int) Option {
	return func(o *options) error {
		if frames < 0 {
			return fmt.Errorf("plugin: ramp must be >= 0: %d", frames)
		}
		o.rampFrames = frames
		return nil
	}
}

// WithWaveform selects the LFO shape.
func WithWaveform(w lfo.Waveform) Option {
	return func(o *options) error {
		o.waveform = w
		return nil
	}
}

// WithDamping low-passes the feedback path at cutoffHz.
func WithDamping(cutoffHz float64) Option {
	return func(o *options) error {
		o.dampingHz = cutoffHz
		return nil
	}
}

// WithProcessorConfig sets the initial sample rate, channel count, block
// size and delay memory.
func WithProcessorConfig(proc core.ProcessorConfig) Option {
	return func(o *options) error {
		if err := proc.Validate(); err != nil {
			return fmt.Errorf("plugin: %w", err)
		}
		o.proc = proc
		return nil
	}
}

// Stats is a snapshot of render-side counters.
type Stats struct {
	Failures       uint64
	LastError      error
	Bypassed       bool
	RejectedEvents uint64
	MIDIApplied    uint64
	MIDIIgnored    uint64
}

// Unit is a configured flanger ready to be driven by a host.
type Unit struct {
	logger     *slog.Logger
	rampFrames int
	ccMap      map[uint8]Address

	flanger  *modulation.Flanger
	renderer *render.Renderer

	preset      atomic.Int32
	rejected    atomic.Uint64
	midiApplied atomic.Uint64
	midiIgnored atomic.Uint64
}

// New builds a unit with the parameter table defaults.
func New(opts ...Option) (*Unit, error) {
	o := options{
		logger:     slog.New(slog.DiscardHandler),
		ccMap:      map[uint8]Address{1: Depth},
		rampFrames: DefaultRampFrames,
		waveform:   lfo.Triangle,
		proc:       core.DefaultProcessorConfig(),
	}
	o.proc.MaxDelayMs = MaxDelayMs

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	flanger, err := modulation.NewFlanger(o.proc.SampleRate,
		modulation.WithFlangerProcessor(o.proc),
		modulation.WithFlangerWaveform(o.waveform),
		modulation.WithFlangerDamping(o.dampingHz),
	)
	if err != nil {
		return nil, fmt.Errorf("plugin: %w", err)
	}

	u := &Unit{
		logger:     o.logger,
		rampFrames: o.rampFrames,
		ccMap:      o.ccMap,
		flanger:    flanger,
	}
	u.renderer = render.New(kernel{u: u})
	u.preset.Store(-1)

	if err := u.renderer.Configure(o.proc.Channels, o.proc.BlockSize); err != nil {
		return nil, fmt.Errorf("plugin: %w", err)
	}

	for _, def := range definitions {
		u.apply(def.Address, def.Default, 0)
	}
	flanger.StopRamping()

	return u, nil
}

// Configure prepares the unit for a new stream format. It must not be
// called while Render is running.
func (u *Unit) Configure(channels int, sampleRate float64, maxFrames int, maxDelayMs float64) error {
	if err := u.flanger.Configure(channels, sampleRate, maxFrames, maxDelayMs); err != nil {
		return fmt.Errorf("plugin: %w", err)
	}
	if err := u.renderer.Configure(channels, maxFrames); err != nil {
		return fmt.Errorf("plugin: %w", err)
	}

	// Sweep bounds may have shrunk with the delay memory.
	u.apply(Depth, u.flanger.DepthMs(), 0)
	u.apply(Delay, u.flanger.DelayMs(), 0)
	u.flanger.StopRamping()

	u.logger.Info("configured",
		"channels", channels,
		"sampleRate", sampleRate,
		"maxFrames", maxFrames,
		"maxDelayMs", maxDelayMs)

	return nil
}

// Render processes one block. See render.Renderer.Render for the buffer
// and event contract.
func (u *Unit) Render(timestamp int64, frameCount int, events []render.Event, pull render.InputPuller, output [][]float64) render.Status {
	return u.renderer.Render(timestamp, frameCount, events, pull, output)
}

// Set changes a parameter using the default ramp.
func (u *Unit) Set(addr Address, value float64) error {
	return u.SetParameter(addr, value, u.rampFrames)
}

// SetParameter changes a parameter to a plain value, gliding over
// rampFrames frames. Values outside the range are clamped.
func (u *Unit) SetParameter(addr Address, value float64, rampFrames int) error {
	if int(addr) >= numParameters {
		return fmt.Errorf("%w: %d", ErrUnknownParameter, uint64(addr))
	}
	if !core.IsFinite(value) {
		return fmt.Errorf("plugin: %s value must be finite: %f", addr, value)
	}

	u.apply(addr, value, rampFrames)
	u.preset.Store(-1)

	return nil
}

// SetNormalized changes a parameter from a knob position in [0, 1].
func (u *Unit) SetNormalized(addr Address, pos float64, rampFrames int) error {
	def, err := Lookup(addr)
	if err != nil {
		return err
	}
	return u.SetParameter(addr, def.Denormalize(pos), rampFrames)
}

// Parameter returns the latest plain value set for addr.
func (u *Unit) Parameter(addr Address) (float64, error) {
	f := u.flanger

	switch addr {
	case Depth:
		return f.DepthMs(), nil
	case Rate:
		return f.RateHz(), nil
	case Delay:
		return f.DelayMs(), nil
	case Feedback:
		return f.Feedback() * 100, nil
	case DryMix:
		return f.DryMix() * 100, nil
	case WetMix:
		return f.WetMix() * 100, nil
	case NegativeFeedback:
		return boolValue(f.NegativeFeedback()), nil
	case Odd90:
		return boolValue(f.Odd90()), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownParameter, uint64(addr))
	}
}

// FormatParameter returns the display string of the current value.
func (u *Unit) FormatParameter(addr Address) (string, error) {
	v, err := u.Parameter(addr)
	if err != nil {
		return "", err
	}
	return definitions[addr].FormatValue(v), nil
}

// ApplyPreset loads factory preset i using the default ramp.
func (u *Unit) ApplyPreset(i int) error {
	if i < 0 || i >= len(factoryPresets) {
		return fmt.Errorf("%w: index %d outside [0, %d)", ErrUnknownPreset, i, len(factoryPresets))
	}

	p := factoryPresets[i]
	for _, def := range definitions {
		u.apply(def.Address, p.Values[def.Address], u.rampFrames)
	}
	u.preset.Store(int32(i))

	u.logger.Info("preset applied", "index", i, "name", p.Name)

	return nil
}

// CurrentPreset returns the index of the last applied preset, or -1 once
// any parameter has been changed since.
func (u *Unit) CurrentPreset() int { return int(u.preset.Load()) }

// SetBypass passes input to output unchanged while on.
func (u *Unit) SetBypass(on bool) {
	u.renderer.SetBypass(on)
	u.logger.Debug("bypass", "on", on)
}

// IsBypassed reports the bypass state.
func (u *Unit) IsBypassed() bool { return u.renderer.IsBypassed() }

// SampleRate returns the configured sample rate.
func (u *Unit) SampleRate() float64 { return u.flanger.SampleRate() }

// Channels returns the configured channel count.
func (u *Unit) Channels() int { return u.flanger.Channels() }

// MaxFrames returns the largest block Render accepts.
func (u *Unit) MaxFrames() int { return u.flanger.MaxFrames() }

// Reset clears delay memory and restarts the LFO.
func (u *Unit) Reset() { u.flanger.Reset() }

// StopRamping settles every parameter at its target. Call it when the host
// stops rendering.
func (u *Unit) StopRamping() { u.flanger.StopRamping() }

// Stats returns a snapshot of render-side counters.
func (u *Unit) Stats() Stats {
	return Stats{
		Failures:       u.renderer.Failures(),
		LastError:      u.renderer.LastError(),
		Bypassed:       u.renderer.IsBypassed(),
		RejectedEvents: u.rejected.Load(),
		MIDIApplied:    u.midiApplied.Load(),
		MIDIIgnored:    u.midiIgnored.Load(),
	}
}

// apply clamps value to the parameter range and forwards it to the
// flanger. It does not allocate and is used from both sides.
func (u *Unit) apply(addr Address, value float64, rampFrames int) {
	def := definitions[addr]
	value = def.Clamp(value)
	f := u.flanger

	switch addr {
	case Depth:
		_ = f.SetDepthMs(min(value, f.MaxDelayMs()), rampFrames)
	case Rate:
		_ = f.SetRateHz(value, rampFrames)
	case Delay:
		_ = f.SetDelayMs(min(value, f.MaxDelayMs()), rampFrames)
	case Feedback:
		_ = f.SetFeedback(value/100, rampFrames)
	case DryMix:
		_ = f.SetDryMix(value/100, rampFrames)
	case WetMix:
		_ = f.SetWetMix(value/100, rampFrames)
	case NegativeFeedback:
		f.SetNegativeFeedback(value >= 0.5)
	case Odd90:
		f.SetOdd90(value >= 0.5)
	}
}
