package dither

import (
	"fmt"
	"math"
)

type config struct {
	typ       Type
	amplitude float64
	seed      uint64
}

func defaultConfig() config {
	return config{typ: TypeTriangular, amplitude: 1}
}

// Option configures a Quantizer.
type Option func(*config) error

// WithType selects the dither distribution. Default TypeTriangular.
func WithType(t Type) Option {
	return func(c *config) error {
		if !t.Valid() {
			return fmt.Errorf("%w: dither type %d", ErrInvalidOption, int(t))
		}
		c.typ = t
		return nil
	}
}

// WithAmplitude sets the dither amplitude in LSB. Default 1.
func WithAmplitude(lsb float64) Option {
	return func(c *config) error {
		if lsb < 0 || math.IsNaN(lsb) || math.IsInf(lsb, 0) {
			return fmt.Errorf("%w: amplitude %g", ErrInvalidOption, lsb)
		}
		c.amplitude = lsb
		return nil
	}
}

// WithSeed makes the noise sequence reproducible.
func WithSeed(seed uint64) Option {
	return func(c *config) error {
		c.seed = seed
		return nil
	}
}
