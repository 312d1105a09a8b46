package spectrum

import (
	"errors"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-fidelity/internal/testutil"
)

func complexInput(n int) []complex128 {
	re := testutil.DeterministicNoise(int64(n), 1, n)
	out := make([]complex128, n)
	for i, v := range re {
		out[i] = complex(v, 0)
	}
	return out
}

func TestBackendsMatchDFT(t *testing.T) {
	sizes := []int{4, 12, 16, 30, 64, 97}

	for _, name := range []string{BackendAuto, BackendGonum, BackendGoDSP} {
		tr, err := NewTransformer(name)
		if err != nil {
			t.Fatalf("NewTransformer(%q) error = %v", name, err)
		}

		for _, n := range sizes {
			src := complexInput(n)
			want := make([]complex128, n)
			if err := (DFT{}).Forward(want, src); err != nil {
				t.Fatalf("DFT error = %v", err)
			}

			got := make([]complex128, n)
			if err := tr.Forward(got, src); err != nil {
				t.Fatalf("%s n=%d: Forward error = %v", name, n, err)
			}
			for k := range want {
				if cmplx.Abs(got[k]-want[k]) > 1e-9 {
					t.Fatalf("%s n=%d bin %d: got %v want %v", name, n, k, got[k], want[k])
				}
			}
		}
	}
}

func TestAlgoFFTPowerOfTwo(t *testing.T) {
	for _, n := range []int{8, 64, 1024} {
		src := complexInput(n)
		want := make([]complex128, n)
		if err := (GoDSP{}).Forward(want, src); err != nil {
			t.Fatalf("GoDSP error = %v", err)
		}
		got := make([]complex128, n)
		if err := (AlgoFFT{}).Forward(got, src); err != nil {
			t.Fatalf("AlgoFFT n=%d error = %v", n, err)
		}
		for k := range want {
			if cmplx.Abs(got[k]-want[k]) > 1e-8 {
				t.Fatalf("n=%d bin %d: got %v want %v", n, k, got[k], want[k])
			}
		}
	}
}

func TestForwardLeavesSourceIntact(t *testing.T) {
	for _, name := range Backends() {
		tr, err := NewTransformer(name)
		if err != nil {
			t.Fatalf("NewTransformer(%q) error = %v", name, err)
		}
		src := complexInput(32)
		orig := append([]complex128(nil), src...)
		dst := make([]complex128, len(src))
		if err := tr.Forward(dst, src); err != nil {
			t.Fatalf("%s: Forward error = %v", name, err)
		}
		for i := range src {
			if src[i] != orig[i] {
				t.Fatalf("%s modified src[%d]", name, i)
			}
		}
	}
}

func TestNewTransformer(t *testing.T) {
	tr, err := NewTransformer("")
	if err != nil || tr.Name() != BackendAuto {
		t.Fatalf("NewTransformer(\"\") = %v, %v; want auto", tr, err)
	}
	tr, err = NewTransformer(" GoNum ")
	if err != nil || tr.Name() != BackendGonum {
		t.Fatalf("NewTransformer(\" GoNum \") = %v, %v; want gonum", tr, err)
	}
	if _, err := NewTransformer("fftw"); !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("err = %v, want ErrUnknownBackend", err)
	}
}

func TestForwardLengthMismatch(t *testing.T) {
	for _, name := range Backends() {
		tr, _ := NewTransformer(name)
		err := tr.Forward(make([]complex128, 4), make([]complex128, 8))
		if !errors.Is(err, ErrLengthMismatch) {
			t.Fatalf("%s: err = %v, want ErrLengthMismatch", name, err)
		}
	}
}
