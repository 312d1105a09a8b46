package signal

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-fidelity/dsp/core"
)

// Generator creates deterministic test signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return &Generator{
		cfg:  core.ApplyProcessorOptions(opts...),
		seed: 1,
	}
}

// NewGeneratorWithOptions creates a configured signal generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Seed returns the noise seed.
func (g *Generator) Seed() int64 { return g.seed }

// SetSeed replaces the noise seed.
func (g *Generator) SetSeed(seed int64) { g.seed = seed }

// Sine generates frames of a sine wave and duplicates each value across all
// configured channels.
func (g *Generator) Sine(freqHz, amplitude float64, frames int) (Signal, error) {
	if frames <= 0 {
		return Signal{}, fmt.Errorf("sine frames must be > 0: %d", frames)
	}
	if g.cfg.SampleRate <= 0 {
		return Signal{}, fmt.Errorf("sine sample rate must be > 0: %f", g.cfg.SampleRate)
	}

	osc := NewOscillator(freqHz, g.cfg.SampleRate)
	mono := make([]float64, frames)
	osc.Fill(mono, amplitude)

	return FromFloat64(interleave(mono, g.cfg.Channels), int(g.cfg.SampleRate), g.cfg.Channels)
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude],
// independent per channel.
func (g *Generator) WhiteNoise(amplitude float64, frames int) (Signal, error) {
	if frames <= 0 {
		return Signal{}, fmt.Errorf("noise frames must be > 0: %d", frames)
	}
	if amplitude < 0 {
		return Signal{}, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}

	out := make([]float64, frames*g.cfg.Channels)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return FromFloat64(out, int(g.cfg.SampleRate), g.cfg.Channels)
}

func interleave(mono []float64, channels int) []float64 {
	if channels <= 1 {
		return mono
	}
	out := make([]float64, len(mono)*channels)
	for i, v := range mono {
		for c := range channels {
			out[i*channels+c] = v
		}
	}
	return out
}

// Oscillator is a block-oriented sine source. Its sample clock wraps once
// per second so that phase stays precise over long captures; the wrap is
// phase-continuous for integer frequencies.
type Oscillator struct {
	freqHz     float64
	sampleRate float64
	clock      float64
}

// NewOscillator returns an oscillator at freqHz.
func NewOscillator(freqHz, sampleRate float64) *Oscillator {
	return &Oscillator{freqHz: freqHz, sampleRate: sampleRate}
}

// SetFrequency changes the frequency without resetting the clock.
func (o *Oscillator) SetFrequency(freqHz float64) { o.freqHz = freqHz }

// Next returns the next sample of a unit-amplitude sine.
func (o *Oscillator) Next() float64 {
	v := math.Sin(2 * math.Pi * o.freqHz * o.clock / o.sampleRate)
	o.clock++
	if o.clock >= o.sampleRate {
		o.clock -= o.sampleRate
	}
	return v
}

// Fill writes len(dst) consecutive samples scaled by amplitude.
func (o *Oscillator) Fill(dst []float64, amplitude float64) {
	for i := range dst {
		dst[i] = amplitude * o.Next()
	}
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	maxAbs := 0.0
	for _, v := range data {
		av := math.Abs(v)
		if av > maxAbs {
			maxAbs = av
		}
	}

	out := make([]float64, len(data))
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}
	return out, nil
}
