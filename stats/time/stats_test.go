package time

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fidelity/internal/testutil"
)

const tolerance = 1e-10

func almostEqual(a, b, tol float64) bool {
	if math.IsInf(a, -1) && math.IsInf(b, -1) {
		return true
	}
	return math.Abs(a-b) <= tol
}

func TestCalculateDC(t *testing.T) {
	s := Calculate(testutil.DC(-0.25, 1000))

	if s.Length != 1000 {
		t.Errorf("Length: got %d, want 1000", s.Length)
	}
	if !almostEqual(s.DC, -0.25, tolerance) {
		t.Errorf("DC: got %g", s.DC)
	}
	if !almostEqual(s.RMS, 0.25, tolerance) {
		t.Errorf("RMS: got %g, want 0.25", s.RMS)
	}
	if !almostEqual(s.CrestFactor, 1, tolerance) || !almostEqual(s.CrestFactor_dB, 0, tolerance) {
		t.Errorf("crest: got %g / %g dB", s.CrestFactor, s.CrestFactor_dB)
	}
	if s.ZeroCrossings != 0 {
		t.Errorf("ZeroCrossings: got %d", s.ZeroCrossings)
	}
}

func TestCalculateSine(t *testing.T) {
	// 100 full periods of 480 Hz at 48 kHz.
	s := Calculate(testutil.DeterministicSine(480, 48000, 0.5, 10000))

	if !almostEqual(s.RMS, 0.5/math.Sqrt2, 1e-9) {
		t.Errorf("RMS: got %g, want %g", s.RMS, 0.5/math.Sqrt2)
	}
	if !almostEqual(s.Peak, 0.5, 1e-9) {
		t.Errorf("Peak: got %g", s.Peak)
	}
	if !almostEqual(s.CrestFactor, math.Sqrt2, 1e-6) {
		t.Errorf("CrestFactor: got %g", s.CrestFactor)
	}
	if s.ZeroCrossings < 198 || s.ZeroCrossings > 200 {
		t.Errorf("ZeroCrossings: got %d, want about 199", s.ZeroCrossings)
	}
}

func TestCalculateEmpty(t *testing.T) {
	s := Calculate(nil)
	if s.Length != 0 || s.RMS != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if !math.IsInf(s.RMS_dB, -1) || !math.IsInf(s.Peak_dB, -1) {
		t.Fatalf("dB fields should be -Inf, got %+v", s)
	}
}

func TestZeroCountsAsPositive(t *testing.T) {
	tests := []struct {
		in   []float64
		want int
	}{
		{[]float64{-1, 0, 1}, 1},
		{[]float64{0, -1, 0}, 2},
		{[]float64{0, 0, 0}, 0},
		{[]float64{1}, 0},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := ZeroCrossings(tt.in); got != tt.want {
			t.Errorf("ZeroCrossings(%v) = %d, want %d", tt.in, got, tt.want)
		}
		if got := Calculate(tt.in).ZeroCrossings; got != tt.want {
			t.Errorf("Calculate(%v).ZeroCrossings = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRMSNonNegative(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		x := testutil.DeterministicNoise(seed, 2, 257)
		if r := RMS(x); r < 0 || math.IsNaN(r) {
			t.Fatalf("seed %d: RMS = %g", seed, r)
		}
	}
	if RMS(nil) != 0 {
		t.Fatal("RMS(nil) != 0")
	}
}

func TestPeak(t *testing.T) {
	if got := Peak([]float64{0.2, -0.9, 0.5}); got != 0.9 {
		t.Fatalf("Peak = %g, want 0.9", got)
	}
}

func TestStreamingMatchesCalculate(t *testing.T) {
	x := testutil.DeterministicNoise(42, 1, 1000)
	want := Calculate(x)

	s := NewStreamingStats()
	for i := 0; i < len(x); i += 97 {
		s.Update(x[i:min(i+97, len(x))])
	}
	got := s.Result()

	if got.Length != want.Length || got.ZeroCrossings != want.ZeroCrossings ||
		got.Max != want.Max || got.Min != want.Min {
		t.Fatalf("streaming %+v, batch %+v", got, want)
	}
	if !almostEqual(got.RMS, want.RMS, tolerance) || !almostEqual(got.DC, want.DC, tolerance) {
		t.Fatalf("streaming RMS/DC %g/%g, batch %g/%g", got.RMS, got.DC, want.RMS, want.DC)
	}

	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("Len after Reset = %d", s.Len())
	}
}
