package core

import "testing"

func TestEnsureLenReuse(t *testing.T) {
	buf := make([]float64, 4, 8)

	out := EnsureLen(buf, 6)
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}

	if cap(out) != cap(buf) {
		t.Fatalf("cap = %d, want %d", cap(out), cap(buf))
	}
}

func TestCopyInto(t *testing.T) {
	dst := make([]float64, 2)

	n := CopyInto(dst, []float64{1, 2, 3})
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}

	if dst[0] != 1 || dst[1] != 2 {
		t.Fatalf("unexpected dst: %#v", dst)
	}
}

func TestZero(t *testing.T) {
	buf := []float64{1, 2, 3}
	Zero(buf)

	for i, v := range buf {
		if v != 0 {
			t.Fatalf("buf[%d] = %v, want 0", i, v)
		}
	}
}

func TestSameStorage(t *testing.T) {
	buf := []float64{1, 2, 3}

	if !SameStorage(buf, buf[:1]) {
		t.Fatal("expected slices sharing the first element to alias")
	}
	if SameStorage(buf, buf[1:]) {
		t.Fatal("offset slices must not be reported as aliasing")
	}
	if SameStorage(nil, buf) {
		t.Fatal("empty slice must not alias")
	}
}

func TestCopyIntoSameStorageIsNoop(t *testing.T) {
	buf := []float64{1, 2, 3}

	if n := CopyInto(buf, buf); n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
	if buf[0] != 1 || buf[2] != 3 {
		t.Fatalf("unexpected buf: %#v", buf)
	}
}
