package testutil

import (
	"math"
	"testing"
)

func TestDeterministicSignalsRepeat(t *testing.T) {
	a := DeterministicNoise(7, 0.5, 256)
	b := DeterministicNoise(7, 0.5, 256)
	if d, _ := MaxAbsDiff(a, b); d != 0 {
		t.Fatalf("same seed differs by %g", d)
	}
	if d, _ := MaxAbsDiff(a, DeterministicNoise(8, 0.5, 256)); d == 0 {
		t.Fatal("different seeds produced identical noise")
	}
	for i, v := range a {
		if math.Abs(v) > 0.5 {
			t.Fatalf("noise[%d] = %g exceeds amplitude", i, v)
		}
	}

	sine := DeterministicSine(12000, 48000, 0.25, 5)
	want := []float64{0, 0.25, 0, -0.25, 0}
	RequireSliceNearlyEqual(t, sine, want, 1e-15)
}

func TestImpulse(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		pos      int
		wantHigh int
	}{
		{"start", 4, 0, 0},
		{"inside", 4, 2, 2},
		{"past end", 4, 4, -1},
		{"negative", 4, -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := Impulse(tt.length, tt.pos)
			for i, v := range x {
				want := 0.0
				if i == tt.wantHigh {
					want = 1
				}
				if v != want {
					t.Fatalf("x[%d] = %g, want %g", i, v, want)
				}
			}
		})
	}
}

func TestPlanarHelpers(t *testing.T) {
	src := Ones(3)
	p := Planar(src, 2)
	if len(p) != 2 || len(p[1]) != 3 {
		t.Fatalf("Planar shape = %d x %d, want 2 x 3", len(p), len(p[1]))
	}
	p[0][0] = 9
	if src[0] != 1 || p[1][0] != 1 {
		t.Fatal("channels must not share storage with each other or the source")
	}

	s := Silence(3, 4)
	if len(s) != 3 {
		t.Fatalf("Silence channels = %d, want 3", len(s))
	}
	for ch := range s {
		RequireSliceNearlyEqual(t, s[ch], DC(0, 4), 0)
	}
}
