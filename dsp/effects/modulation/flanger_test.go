package modulation

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-flanger/dsp/core"
	"github.com/cwbudde/algo-flanger/internal/testutil"
)

func newMonoFlanger(t *testing.T, sampleRate float64, opts ...FlangerOption) *Flanger {
	t.Helper()

	proc := WithFlangerProcessor(core.ProcessorConfig{Channels: 1, BlockSize: 32, MaxDelayMs: DefaultFlangerMaxDelayMs})

	f, err := NewFlanger(sampleRate, append([]FlangerOption{proc}, opts...)...)
	if err != nil {
		t.Fatalf("NewFlanger() error = %v", err)
	}

	return f
}

func processAll(f *Flanger, in []float64) []float64 {
	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = f.Process(x)
	}

	return out
}

func TestFlangerDefaults(t *testing.T) {
	f, err := NewFlanger(48000)
	if err != nil {
		t.Fatalf("NewFlanger() error = %v", err)
	}

	if f.Channels() != 2 || f.MaxFrames() != 512 || f.MaxDelayMs() != DefaultFlangerMaxDelayMs {
		t.Fatalf("unexpected layout: channels=%d frames=%d maxDelay=%g", f.Channels(), f.MaxFrames(), f.MaxDelayMs())
	}

	if f.DepthMs() != defaultFlangerDepthMs || f.DelayMs() != defaultFlangerDelayMs {
		t.Fatalf("unexpected sweep: depth=%g delay=%g", f.DepthMs(), f.DelayMs())
	}

	if f.RateHz() != defaultFlangerRateHz || f.Feedback() != defaultFlangerFeedback {
		t.Fatalf("unexpected rate/feedback: %g %g", f.RateHz(), f.Feedback())
	}

	if f.NegativeFeedback() || f.Odd90() || f.DampingHz() != 0 {
		t.Fatal("switches should default to off")
	}
}

func TestFlangerProcessInPlaceMatchesProcess(t *testing.T) {
	f1 := newMonoFlanger(t, 48000, WithFlangerRateHz(3), WithFlangerDepthMs(4), WithFlangerDelayMs(0.5))
	f2 := newMonoFlanger(t, 48000, WithFlangerRateHz(3), WithFlangerDepthMs(4), WithFlangerDelayMs(0.5))

	input := make([]float64, 200)
	for i := range input {
		input[i] = math.Sin(2 * math.Pi * float64(i) / 29)
	}

	want := processAll(f1, input)

	got := make([]float64, len(input))
	copy(got, input)

	err := f2.ProcessInPlace(got)
	if err != nil {
		t.Fatalf("ProcessInPlace() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestFlangerProcessInPlaceRejectsStereo(t *testing.T) {
	f, err := NewFlanger(48000)
	if err != nil {
		t.Fatalf("NewFlanger() error = %v", err)
	}

	if err := f.ProcessInPlace(make([]float64, 8)); err == nil {
		t.Fatal("ProcessInPlace() expected error for stereo flanger")
	}
}

func TestFlangerResetRestoresState(t *testing.T) {
	f := newMonoFlanger(t, 48000)

	in := testutil.Impulse(96, 0)
	out1 := processAll(f, in)

	f.Reset()

	out2 := processAll(f, in)

	testutil.RequireSliceNearlyEqual(t, out2, out1, 1e-12)
}

func TestFlangerImpulseAtConfiguredDelayWhenSweepIsFixed(t *testing.T) {
	for _, tc := range []struct {
		name    string
		delayMs float64
		want    int
	}{
		{name: "5ms", delayMs: 5, want: 5},
		{name: "zero clamps to one sample", delayMs: 0, want: 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newMonoFlanger(t, 1000,
				WithFlangerDelayMs(tc.delayMs),
				WithFlangerDepthMs(tc.delayMs),
				WithFlangerWetMix(1),
				WithFlangerDryMix(0),
				WithFlangerFeedback(0),
			)

			buf := testutil.Impulse(16, 0)
			if err := f.ProcessInPlace(buf); err != nil {
				t.Fatalf("ProcessInPlace() error = %v", err)
			}

			testutil.RequireSliceNearlyEqual(t, buf, testutil.Impulse(16, tc.want), 1e-12)
		})
	}
}

func TestFlangerFeedbackPolarity(t *testing.T) {
	for _, tc := range []struct {
		negative bool
		want     float64
	}{
		{negative: false, want: 0.5},
		{negative: true, want: -0.5},
	} {
		f := newMonoFlanger(t, 1000,
			WithFlangerDelayMs(5),
			WithFlangerDepthMs(5),
			WithFlangerWetMix(1),
			WithFlangerDryMix(0),
			WithFlangerFeedback(0.5),
			WithFlangerNegativeFeedback(tc.negative),
		)

		out := processAll(f, testutil.Impulse(16, 0))

		if out[5] != 1 {
			t.Fatalf("negative=%v: first echo = %g, want 1", tc.negative, out[5])
		}

		if math.Abs(out[10]-tc.want) > 1e-12 {
			t.Fatalf("negative=%v: second echo = %g, want %g", tc.negative, out[10], tc.want)
		}
	}
}

func TestFlangerDampingSoftensFeedback(t *testing.T) {
	opts := []FlangerOption{
		WithFlangerDelayMs(5),
		WithFlangerDepthMs(5),
		WithFlangerWetMix(1),
		WithFlangerDryMix(0),
		WithFlangerFeedback(0.9),
	}

	plain := processAll(newMonoFlanger(t, 1000, opts...), testutil.Impulse(16, 0))
	damped := processAll(newMonoFlanger(t, 1000, append(opts, WithFlangerDamping(50))...), testutil.Impulse(16, 0))

	if math.Abs(plain[10]-0.9) > 1e-12 {
		t.Fatalf("undamped echo = %g, want 0.9", plain[10])
	}

	if damped[10] <= 0 || damped[10] >= plain[10] {
		t.Fatalf("damped echo = %g, want in (0, %g)", damped[10], plain[10])
	}
}

func TestFlangerWetMixScalesLevel(t *testing.T) {
	f := newMonoFlanger(t, 1000,
		WithFlangerDelayMs(5),
		WithFlangerDepthMs(5),
		WithFlangerWetMix(0.5),
		WithFlangerDryMix(0),
		WithFlangerFeedback(0),
	)

	in := testutil.DeterministicNoise(5, 0.5, 400)
	out := processAll(f, in)

	want := 0.5 * testutil.RMS(in[:len(in)-5])
	if got := testutil.RMS(out[5:]); math.Abs(got-want) > 1e-12 {
		t.Fatalf("wet RMS = %g, want %g", got, want)
	}
}

func TestFlangerDryOnlyIsIdentity(t *testing.T) {
	f := newMonoFlanger(t, 48000, WithFlangerWetMix(0), WithFlangerDryMix(1), WithFlangerFeedback(0.9))

	in := testutil.DeterministicNoise(7, 0.5, 300)

	got := make([]float64, len(in))
	copy(got, in)

	if err := f.ProcessInPlace(got); err != nil {
		t.Fatalf("ProcessInPlace() error = %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, got, in, 0)
}

func TestFlangerDryMixRampIsLinear(t *testing.T) {
	f := newMonoFlanger(t, 48000, WithFlangerWetMix(0), WithFlangerDryMix(1))

	if err := f.SetDryMix(0, 100); err != nil {
		t.Fatalf("SetDryMix() error = %v", err)
	}

	buf := testutil.Ones(160)
	if err := f.ProcessInPlace(buf); err != nil {
		t.Fatalf("ProcessInPlace() error = %v", err)
	}

	for i, got := range buf {
		want := 0.0
		if i < 100 {
			want = 1 - float64(i)/100
		}

		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("frame %d: got %g want %g", i, got, want)
		}
	}
}

func TestFlangerSingleFrameBlockSettlesRamps(t *testing.T) {
	f := newMonoFlanger(t, 48000, WithFlangerWetMix(0), WithFlangerDryMix(0.5))

	if err := f.SetDryMix(1, 10); err != nil {
		t.Fatalf("SetDryMix() error = %v", err)
	}

	one := [][]float64{{1}}
	f.RenderFrames(one, one, 1)
	if one[0][0] != 1 {
		t.Fatalf("single frame = %g, want 1", one[0][0])
	}

	block := [][]float64{testutil.Ones(4)}
	f.RenderFrames(block, block, 4)
	testutil.RequireSliceNearlyEqual(t, block[0], testutil.Ones(4), 0)
}

func TestFlangerProcessRampsPerSample(t *testing.T) {
	f := newMonoFlanger(t, 48000, WithFlangerWetMix(0), WithFlangerDryMix(1))

	if err := f.SetDryMix(0, 4); err != nil {
		t.Fatalf("SetDryMix() error = %v", err)
	}

	got := processAll(f, testutil.Ones(6))
	testutil.RequireSliceNearlyEqual(t, got, []float64{1, 0.75, 0.5, 0.25, 0, 0}, 1e-12)
}

func TestFlangerOdd90WidensStereo(t *testing.T) {
	render := func(odd90 bool) [][]float64 {
		f, err := NewFlanger(48000,
			WithFlangerRateHz(5),
			WithFlangerDelayMs(1),
			WithFlangerDepthMs(10),
			WithFlangerOdd90(odd90),
		)
		if err != nil {
			t.Fatalf("NewFlanger() error = %v", err)
		}

		in := testutil.Planar(testutil.DeterministicNoise(3, 0.5, 512), 2)
		out := testutil.Silence(2, 512)
		f.RenderFrames(in, out, 512)

		return out
	}

	mono := render(false)
	testutil.RequireSliceNearlyEqual(t, mono[1], mono[0], 0)

	wide := render(true)
	testutil.RequireSliceNearlyEqual(t, wide[0], mono[0], 0)

	diff, err := testutil.MaxAbsDiff(wide[0], wide[1])
	if err != nil {
		t.Fatalf("MaxAbsDiff() error = %v", err)
	}

	if diff < 1e-3 {
		t.Fatalf("odd channel should differ from even channel, max diff %g", diff)
	}
}

func TestFlangerValidation(t *testing.T) {
	cases := []struct {
		name string
		sr   float64
		opts []FlangerOption
	}{
		{name: "sample rate", sr: 0},
		{name: "nan sample rate", sr: math.NaN()},
		{name: "wet mix", sr: 48000, opts: []FlangerOption{WithFlangerWetMix(2)}},
		{name: "dry mix", sr: 48000, opts: []FlangerOption{WithFlangerDryMix(-0.1)}},
		{name: "feedback", sr: 48000, opts: []FlangerOption{WithFlangerFeedback(1.5)}},
		{name: "rate", sr: 48000, opts: []FlangerOption{WithFlangerRateHz(MaxFlangerRateHz + 1)}},
		{name: "depth beyond memory", sr: 48000, opts: []FlangerOption{WithFlangerDepthMs(60)}},
		{name: "negative delay", sr: 48000, opts: []FlangerOption{WithFlangerDelayMs(-1)}},
		{name: "damping above nyquist", sr: 48000, opts: []FlangerOption{WithFlangerDamping(30000)}},
		{name: "processor", sr: 48000, opts: []FlangerOption{WithFlangerProcessor(core.ProcessorConfig{Channels: 0, BlockSize: 8, MaxDelayMs: 1})}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewFlanger(tc.sr, tc.opts...); err == nil {
				t.Fatal("NewFlanger() expected error")
			}
		})
	}
}

func TestFlangerSettersRejectInvalidValues(t *testing.T) {
	f := newMonoFlanger(t, 48000)

	prevDepth := f.DepthMs()
	if err := f.SetDepthMs(f.MaxDelayMs()+1, 0); err == nil {
		t.Fatal("SetDepthMs() expected error beyond max delay")
	}

	if got := f.DepthMs(); got != prevDepth {
		t.Fatalf("depth changed after failed update: got=%g want=%g", got, prevDepth)
	}

	if err := f.SetRateHz(math.Inf(1), 0); err == nil {
		t.Fatal("SetRateHz() expected error for Inf")
	}

	if err := f.SetFeedback(math.NaN(), 0); err == nil {
		t.Fatal("SetFeedback() expected error for NaN")
	}

	if err := f.SetDepthMs(12, 50); err != nil {
		t.Fatalf("SetDepthMs() error = %v", err)
	}

	if got := f.DepthMs(); got != 12 {
		t.Fatalf("DepthMs() = %g, want 12", got)
	}
}

func TestFlangerConfigureKeepsStateOnError(t *testing.T) {
	f, err := NewFlanger(48000)
	if err != nil {
		t.Fatalf("NewFlanger() error = %v", err)
	}

	if err := f.Configure(0, 48000, 64, 20); err == nil {
		t.Fatal("Configure() expected error for zero channels")
	}

	if f.Channels() != 2 || f.MaxFrames() != 512 {
		t.Fatalf("layout changed after failed Configure: channels=%d frames=%d", f.Channels(), f.MaxFrames())
	}

	if err := f.Configure(4, 96000, 64, 20); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	if f.Channels() != 4 || f.SampleRate() != 96000 || f.MaxFrames() != 64 {
		t.Fatalf("unexpected layout: channels=%d sr=%g frames=%d", f.Channels(), f.SampleRate(), f.MaxFrames())
	}

	if err := f.SetSampleRate(44100); err != nil {
		t.Fatalf("SetSampleRate() error = %v", err)
	}

	if f.Channels() != 4 || f.SampleRate() != 44100 {
		t.Fatalf("SetSampleRate() changed layout: channels=%d sr=%g", f.Channels(), f.SampleRate())
	}
}

func TestFlangerOutputStaysFinite(t *testing.T) {
	f, err := NewFlanger(48000,
		WithFlangerRateHz(MaxFlangerRateHz),
		WithFlangerDepthMs(DefaultFlangerMaxDelayMs),
		WithFlangerDelayMs(0),
		WithFlangerFeedback(1),
		WithFlangerNegativeFeedback(true),
		WithFlangerOdd90(true),
	)
	if err != nil {
		t.Fatalf("NewFlanger() error = %v", err)
	}

	in := testutil.Planar(testutil.DeterministicSine(440, 48000, 0.5, 512), 2)
	out := testutil.Silence(2, 512)

	for range 8 {
		f.RenderFrames(in, out, 512)
	}

	testutil.RequireFinite(t, out[0])
	testutil.RequireFinite(t, out[1])
}

func TestFlangerRenderFramesDoesNotAllocate(t *testing.T) {
	f, err := NewFlanger(48000, WithFlangerOdd90(true), WithFlangerDamping(4000))
	if err != nil {
		t.Fatalf("NewFlanger() error = %v", err)
	}

	in := testutil.Planar(testutil.DeterministicNoise(1, 0.5, 256), 2)
	out := testutil.Silence(2, 256)

	allocs := testing.AllocsPerRun(50, func() {
		_ = f.SetWetMix(0.3, 64)
		f.RenderFrames(in, out, 256)
		f.RenderFrames(in, out, 1)
	})
	if allocs != 0 {
		t.Fatalf("RenderFrames allocated %.1f times per run", allocs)
	}
}

func BenchmarkFlangerRenderFrames(b *testing.B) {
	f, err := NewFlanger(48000, WithFlangerOdd90(true))
	if err != nil {
		b.Fatalf("NewFlanger() error = %v", err)
	}

	in := testutil.Planar(testutil.DeterministicNoise(1, 0.5, 512), 2)
	out := testutil.Silence(2, 512)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		f.RenderFrames(in, out, 512)
	}
}
