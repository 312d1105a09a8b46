package device

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fidelity/dsp/core"
)

// ChannelModel describes what happens to the signal between the output and
// the input of the loop.
type ChannelModel struct {
	GainDB float64 `mapstructure:"gain_db" yaml:"gain_db"`
	// Harmonic2 and Harmonic3 are the coefficients of x² and x³ added to
	// the scaled signal.
	Harmonic2 float64 `mapstructure:"harmonic2" yaml:"harmonic2"`
	Harmonic3 float64 `mapstructure:"harmonic3" yaml:"harmonic3"`
	// NoiseAmplitude is the peak of uniform white noise added last.
	NoiseAmplitude float64 `mapstructure:"noise_amplitude" yaml:"noise_amplitude"`
	NoiseSeed      int64   `mapstructure:"noise_seed" yaml:"noise_seed"`
	// LatencyFrames delays the recording relative to playback.
	LatencyFrames int `mapstructure:"latency_frames" yaml:"latency_frames"`
}

// Validate reports unusable settings.
func (m ChannelModel) Validate() error {
	if m.NoiseAmplitude < 0 {
		return fmt.Errorf("%w: noise amplitude %g", ErrInvalidConfig, m.NoiseAmplitude)
	}
	if m.LatencyFrames < 0 {
		return fmt.Errorf("%w: latency %d frames", ErrInvalidConfig, m.LatencyFrames)
	}
	return nil
}

// channel is the running state of a ChannelModel.
type channel struct {
	model   ChannelModel
	gain    float64
	rng     *rand.Rand
	pending []float64
	noise   []float64
}

func newChannel(m ChannelModel, channels int) *channel {
	return &channel{
		model:   m,
		gain:    core.DBToLinear(m.GainDB),
		rng:     rand.New(rand.NewSource(m.NoiseSeed)),
		pending: make([]float64, m.LatencyFrames*channels),
	}
}

// process returns the block as heard at the input. The output has the same
// length as in; latency is carried over to later blocks.
func (c *channel) process(in []float64) []float64 {
	out := make([]float64, len(in))
	vecmath.ScaleBlock(out, in, c.gain)

	if h2, h3 := c.model.Harmonic2, c.model.Harmonic3; h2 != 0 || h3 != 0 {
		for i, x := range out {
			out[i] = x + h2*x*x + h3*x*x*x
		}
	}

	if c.model.NoiseAmplitude > 0 {
		if cap(c.noise) < len(out) {
			c.noise = make([]float64, len(out))
		}
		noise := c.noise[:len(out)]
		for i := range noise {
			noise[i] = (c.rng.Float64()*2 - 1) * c.model.NoiseAmplitude
		}
		vecmath.AddBlockInPlace(out, noise)
	}

	if len(c.pending) == 0 {
		return out
	}

	c.pending = append(c.pending, out...)
	copy(out, c.pending[:len(out)])
	c.pending = append(c.pending[:0], c.pending[len(out):]...)
	return out
}
