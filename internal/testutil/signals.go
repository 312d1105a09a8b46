// Package testutil provides deterministic test signals.
package testutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-fidelity/dsp/signal"
)

// DeterministicSine generates a sine wave starting at phase zero.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Mono wraps samples in a single channel signal and fails t on error.
func Mono(t testing.TB, samples []float64, sampleRate int) signal.Signal {
	t.Helper()
	s, err := signal.FromFloat64(samples, sampleRate, 1)
	if err != nil {
		t.Fatalf("FromFloat64: %v", err)
	}
	return s
}

// Tone returns seconds of a mono sine at freqHz.
func Tone(t testing.TB, freqHz, amplitude float64, sampleRate int, seconds float64) signal.Signal {
	t.Helper()
	n := int(math.Round(seconds * float64(sampleRate)))
	return Mono(t, DeterministicSine(freqHz, float64(sampleRate), amplitude, n), sampleRate)
}
