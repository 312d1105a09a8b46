package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Quantizer converts samples in [-1, 1] to signed integers of a fixed bit
// depth. It is not safe for concurrent use.
type Quantizer struct {
	bitDepth  int
	typ       Type
	amplitude float64
	rng       *rand.Rand

	full   float64 // 2^(bits-1), magnitude of the most negative code
	maxVal float64 // largest positive code
}

// NewQuantizer returns a quantizer for bitDepth (8, 16, 24 or 32).
func NewQuantizer(bitDepth int, opts ...Option) (*Quantizer, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: bit depth %d", ErrInvalidOption, bitDepth)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	full := math.Ldexp(1, bitDepth-1)
	return &Quantizer{
		bitDepth:  bitDepth,
		typ:       cfg.typ,
		amplitude: cfg.amplitude,
		rng:       rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15)),
		full:      full,
		maxVal:    full - 1,
	}, nil
}

// BitDepth returns the output depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// Type returns the dither distribution.
func (q *Quantizer) Type() Type { return q.typ }

// Quantize converts one sample, clipping to the code range.
func (q *Quantizer) Quantize(x float64) int {
	v := math.Round(x*q.maxVal + q.noise())
	if v > q.maxVal {
		v = q.maxVal
	} else if v < -q.full {
		v = -q.full
	}
	return int(v)
}

// QuantizeBlock converts every sample of src.
func (q *Quantizer) QuantizeBlock(src []float64) []int {
	out := make([]int, len(src))
	for i, x := range src {
		out[i] = q.Quantize(x)
	}
	return out
}

// noise returns one dither draw in LSB.
func (q *Quantizer) noise() float64 {
	switch q.typ {
	case TypeRectangular:
		return q.amplitude * (q.rng.Float64()*2 - 1)
	case TypeTriangular:
		return q.amplitude * (q.rng.Float64() - q.rng.Float64())
	case TypeGaussian:
		return q.amplitude * 0.5 * q.rng.NormFloat64()
	default:
		return 0
	}
}
