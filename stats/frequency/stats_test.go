package frequency

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fidelity/dsp/spectrum"
	"github.com/cwbudde/algo-fidelity/internal/testutil"
)

const tolerance = 1e-9

func singleBin(n, bin int, amplitude float64) []float64 {
	mag := make([]float64, n)
	mag[bin] = amplitude
	return mag
}

func TestCalculateEmpty(t *testing.T) {
	s := Calculate(nil, 10)
	if s.BinCount != 0 || s.Energy != 0 || s.Centroid != 0 {
		t.Fatalf("empty stats = %+v", s)
	}
	if !math.IsInf(s.Flatness_dB, -1) {
		t.Fatalf("Flatness_dB = %v, want -Inf", s.Flatness_dB)
	}
}

func TestCalculateSingleBin(t *testing.T) {
	s := Calculate(singleBin(64, 10, 2), 5)

	if s.MaxBin != 10 || s.Max != 2 {
		t.Fatalf("max = %v at %d", s.Max, s.MaxBin)
	}
	if math.Abs(s.Energy-4) > tolerance {
		t.Fatalf("energy = %v, want 4", s.Energy)
	}
	if math.Abs(s.Centroid-50) > tolerance {
		t.Fatalf("centroid = %v, want 50", s.Centroid)
	}
	if s.Spread > tolerance {
		t.Fatalf("spread = %v, want 0", s.Spread)
	}
	if s.Flatness != 0 {
		t.Fatalf("flatness = %v, want 0 for a sparse spectrum", s.Flatness)
	}
	if math.Abs(s.Rolloff-50) > tolerance {
		t.Fatalf("rolloff = %v, want 50", s.Rolloff)
	}
	// Zero neighbours put each -3 dB crossing 1-1/sqrt2 of a bin from the peak.
	want := 2 * (1 - 1/math.Sqrt2) * 5
	if math.Abs(s.Bandwidth-want) > 1e-9 {
		t.Fatalf("bandwidth = %v, want %v", s.Bandwidth, want)
	}
}

func TestFlatness(t *testing.T) {
	tests := []struct {
		name string
		mag  []float64
		want float64
	}{
		{"flat", []float64{9, 1, 1, 1, 1}, 1},
		{"dc only ignored", []float64{0, 2, 2}, 1},
		{"zero bin", []float64{1, 1, 0, 1}, 0},
		{"too short", []float64{1}, 0},
		{"two levels", []float64{0, 1, 4}, 2.0 / 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Flatness(tt.mag); math.Abs(got-tt.want) > tolerance {
				t.Fatalf("Flatness = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRolloff(t *testing.T) {
	mag := []float64{1, 1, 1, 1}
	if got := Rolloff(mag, 10, 0.5); got != 10 {
		t.Fatalf("Rolloff(0.5) = %v, want 10", got)
	}
	if got := Rolloff(mag, 10, 1); got != 30 {
		t.Fatalf("Rolloff(1) = %v, want 30", got)
	}
	if got := Rolloff(make([]float64, 4), 10, 0.85); got != 0 {
		t.Fatalf("Rolloff(silence) = %v, want 0", got)
	}
}

func TestCentroidSymmetric(t *testing.T) {
	if got := Centroid([]float64{0, 1, 0, 1, 0}, 100); math.Abs(got-200) > tolerance {
		t.Fatalf("Centroid = %v, want 200", got)
	}
}

func TestFromSpectrumTone(t *testing.T) {
	const n = 4800
	x := testutil.DeterministicSine(1000, 48000, 1, n)
	in := make([]complex128, n)
	for i, v := range x {
		in[i] = complex(v, 0)
	}
	bins := make([]complex128, n)
	if err := (spectrum.GoDSP{}).Forward(bins, in); err != nil {
		t.Fatal(err)
	}

	s := FromSpectrum(spectrum.Spectrum{Bins: bins, BinWidth: 10})
	if s.BinCount != n/4 {
		t.Fatalf("bin count = %d, want %d", s.BinCount, n/4)
	}
	if s.MaxBin != 100 {
		t.Fatalf("max bin = %d, want 100", s.MaxBin)
	}
	if math.Abs(s.Centroid-1000) > 1 {
		t.Fatalf("centroid = %v, want about 1000", s.Centroid)
	}
	if math.Abs(s.Rolloff-1000) > tolerance {
		t.Fatalf("rolloff = %v, want 1000", s.Rolloff)
	}
}

func TestNoiseIsFlatterThanTone(t *testing.T) {
	noise := make([]float64, 512)
	for i, v := range testutil.DeterministicNoise(5, 1, 512) {
		noise[i] = math.Abs(v) + 0.1
	}
	tone := singleBin(512, 40, 1)
	for i := range tone {
		tone[i] += 1e-6
	}

	if Flatness(noise) <= Flatness(tone) {
		t.Fatalf("noise flatness %v <= tone flatness %v", Flatness(noise), Flatness(tone))
	}
}
