package dither

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-flanger/internal/testutil"
)

func TestNewQuantizerValidation(t *testing.T) {
	tests := []struct {
		name string
		bits int
		opts []Option
	}{
		{"too few bits", 4, nil},
		{"too many bits", 33, nil},
		{"bad type", 16, []Option{WithType(Type(9))}},
		{"negative amplitude", 16, []Option{WithAmplitude(-1)}},
		{"NaN amplitude", 16, []Option{WithAmplitude(math.NaN())}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewQuantizer(tt.bits, tt.opts...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestQuantizerDefaults(t *testing.T) {
	q, err := NewQuantizer(16, nil)
	if err != nil {
		t.Fatal(err)
	}
	if q.BitDepth() != 16 || q.Type() != Triangular || q.NoiseShaping() {
		t.Fatalf("unexpected defaults: bits=%d type=%v shaping=%v", q.BitDepth(), q.Type(), q.NoiseShaping())
	}
}

func TestParseType(t *testing.T) {
	for _, want := range []Type{None, Rectangular, Triangular} {
		got, err := ParseType(want.String())
		if err != nil || got != want {
			t.Fatalf("ParseType(%q) = %v, %v", want.String(), got, err)
		}
	}
	if _, err := ParseType("gaussian"); err == nil {
		t.Fatal("expected error")
	}
	if got := Type(7).String(); got != "Type(7)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestNoDitherIsExactOnGrid(t *testing.T) {
	q, err := NewQuantizer(16, WithType(None))
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range []int{-32768, -12345, -1, 0, 1, 8000, 32767} {
		if got := q.Process(float64(v) / 32768); got != v {
			t.Fatalf("Process(%d/32768) = %d", v, got)
		}
	}
}

func TestClipping(t *testing.T) {
	q, err := NewQuantizer(24, WithType(None))
	if err != nil {
		t.Fatal(err)
	}
	if got := q.Process(2); got != 1<<23-1 {
		t.Fatalf("Process(2) = %d", got)
	}
	if got := q.Process(-2); got != -(1 << 23) {
		t.Fatalf("Process(-2) = %d", got)
	}
}

func TestTriangularDitherIsBoundedAndUnbiased(t *testing.T) {
	q, err := NewQuantizer(16, WithSeed(7))
	if err != nil {
		t.Fatal(err)
	}

	const n = 20000
	x := 100.25 / 32768
	sum := 0.0
	for range n {
		v := q.Process(x)
		if v < 99 || v > 101 {
			t.Fatalf("dithered value %d outside +-1 step", v)
		}
		sum += float64(v)
	}

	if mean := sum / n; math.Abs(mean-100.25) > 0.05 {
		t.Fatalf("mean = %v, want about 100.25", mean)
	}
}

func TestSeedIsReproducible(t *testing.T) {
	a, _ := NewQuantizer(16, WithType(Rectangular), WithSeed(3))
	b, _ := NewQuantizer(16, WithType(Rectangular), WithSeed(3))

	src := testutil.DeterministicSine(440, 48000, 0.5, 256)
	da := make([]int, len(src))
	db := make([]int, len(src))
	a.ProcessInterleaved(da, src, 1)
	b.ProcessInterleaved(db, src, 1)

	for i := range da {
		if da[i] != db[i] {
			t.Fatalf("index %d: %d != %d", i, da[i], db[i])
		}
	}
}

func TestProcessInterleavedStride(t *testing.T) {
	q, _ := NewQuantizer(16, WithType(None))
	dst := []int{-5, -5, -5, -5, -5, -5}
	q.ProcessInterleaved(dst[1:], []float64{0.5, -0.5, 0}, 2)

	want := []int{-5, 16384, -5, -16384, -5, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestNoiseShapingKeepsAverage(t *testing.T) {
	q, err := NewQuantizer(8, WithType(None), WithNoiseShaping(true))
	if err != nil {
		t.Fatal(err)
	}

	// 0.3 steps cannot be represented; error feedback must dither it in
	// time so the long-term mean is preserved.
	x := 0.3 / 128
	sum := 0
	const n = 1000
	for range n {
		sum += q.Process(x)
	}
	if mean := float64(sum) / n; math.Abs(mean-0.3) > 0.01 {
		t.Fatalf("mean = %v, want 0.3", mean)
	}

	q.Reset()
	if got := q.Process(0); got != 0 {
		t.Fatalf("after Reset Process(0) = %d", got)
	}
}
