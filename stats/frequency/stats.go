// Package frequency summarizes the shape of a magnitude spectrum. The
// fidelity report uses it to describe where the energy of an analysis
// window sits besides the tone.
package frequency

import (
	"math"

	"github.com/cwbudde/algo-fidelity/dsp/spectrum"
)

// RolloffFraction is the energy fraction used for Stats.Rolloff.
const RolloffFraction = 0.85

// Stats holds spectral shape descriptors. Frequencies are in Hz.
//
//nolint:revive
type Stats struct {
	BinCount    int     `json:"bin_count" yaml:"bin_count"`
	MaxBin      int     `json:"max_bin" yaml:"max_bin"`
	Max         float64 `json:"max" yaml:"max"`
	Energy      float64 `json:"energy" yaml:"energy"` // sum of squared magnitudes
	Centroid    float64 `json:"centroid" yaml:"centroid"`
	Spread      float64 `json:"spread" yaml:"spread"`
	Flatness    float64 `json:"flatness" yaml:"flatness"` // Wiener entropy, 0..1
	Flatness_dB float64 `json:"flatness_db" yaml:"flatness_db"`
	Rolloff     float64 `json:"rolloff" yaml:"rolloff"`     // RolloffFraction of the energy lies below
	Bandwidth   float64 `json:"bandwidth" yaml:"bandwidth"` // -3 dB width around the maximum
}

// Calculate computes all descriptors of a linear magnitude spectrum whose
// bin i sits at i*binWidth Hz.
func Calculate(magnitude []float64, binWidth float64) Stats {
	s := Stats{BinCount: len(magnitude), Flatness_dB: math.Inf(-1)}
	if len(magnitude) == 0 {
		return s
	}

	var sum float64
	for i, v := range magnitude {
		sum += v
		s.Energy += v * v
		if v > s.Max {
			s.Max, s.MaxBin = v, i
		}
	}

	s.Centroid = centroid(magnitude, binWidth, sum)
	s.Spread = spread(magnitude, binWidth, s.Centroid, sum)
	s.Flatness = Flatness(magnitude)
	if s.Flatness > 0 {
		s.Flatness_dB = 10 * math.Log10(s.Flatness)
	}
	s.Rolloff = rolloff(magnitude, binWidth, RolloffFraction, s.Energy)
	s.Bandwidth = bandwidth(magnitude, binWidth, s.MaxBin)
	return s
}

// FromSpectrum describes the search band of spec.
func FromSpectrum(spec spectrum.Spectrum) Stats {
	return Calculate(spectrum.Magnitude(spec.SearchBand()), spec.BinWidth)
}

// Centroid returns the magnitude-weighted mean frequency.
func Centroid(magnitude []float64, binWidth float64) float64 {
	var sum float64
	for _, v := range magnitude {
		sum += v
	}
	return centroid(magnitude, binWidth, sum)
}

func centroid(magnitude []float64, binWidth, sum float64) float64 {
	if sum == 0 {
		return 0
	}
	var weighted float64
	for i, v := range magnitude {
		weighted += float64(i) * binWidth * v
	}
	return weighted / sum
}

func spread(magnitude []float64, binWidth, cent, sum float64) float64 {
	if sum == 0 {
		return 0
	}
	var acc float64
	for i, v := range magnitude {
		d := float64(i)*binWidth - cent
		acc += d * d * v
	}
	return math.Sqrt(acc / sum)
}

// Flatness returns geometric over arithmetic mean of the bins above DC.
// Any zero bin makes it 0.
func Flatness(magnitude []float64) float64 {
	if len(magnitude) < 2 {
		return 0
	}

	var sumLin, sumLog float64
	for _, v := range magnitude[1:] {
		if v <= 0 {
			return 0
		}
		sumLin += v
		sumLog += math.Log(v)
	}

	n := float64(len(magnitude) - 1)
	return math.Exp(sumLog/n) / (sumLin / n)
}

// Rolloff returns the frequency below which fraction of the energy lies.
func Rolloff(magnitude []float64, binWidth, fraction float64) float64 {
	var energy float64
	for _, v := range magnitude {
		energy += v * v
	}
	return rolloff(magnitude, binWidth, fraction, energy)
}

func rolloff(magnitude []float64, binWidth, fraction, energy float64) float64 {
	if energy == 0 {
		return 0
	}
	threshold := fraction * energy
	var cum float64
	for i, v := range magnitude {
		cum += v * v
		if cum >= threshold {
			return float64(i) * binWidth
		}
	}
	return float64(len(magnitude)-1) * binWidth
}

// bandwidth measures between the -3 dB crossings on both sides of peak,
// interpolating linearly between bins.
func bandwidth(magnitude []float64, binWidth float64, peak int) float64 {
	if len(magnitude) < 2 || magnitude[peak] == 0 {
		return 0
	}
	threshold := magnitude[peak] / math.Sqrt2

	lower := 0.0
	for i := peak; i >= 1; i-- {
		if magnitude[i-1] <= threshold {
			lower = crossing(i-1, magnitude[i-1], magnitude[i], threshold)
			break
		}
	}

	upper := float64(len(magnitude) - 1)
	for i := peak; i < len(magnitude)-1; i++ {
		if magnitude[i+1] <= threshold {
			upper = crossing(i, magnitude[i], magnitude[i+1], threshold)
			break
		}
	}

	return (upper - lower) * binWidth
}

// crossing returns the fractional bin between lo and lo+1 where the
// magnitude passes threshold.
func crossing(lo int, a, b, threshold float64) float64 {
	if a == b {
		return float64(lo) + 0.5
	}
	return float64(lo) + (threshold-a)/(b-a)
}
