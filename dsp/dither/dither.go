// Package dither quantizes float samples to integer PCM the way a converter
// does, optionally adding dither noise before rounding.
//
// With TypeNone the result equals signal.Quantize. Dither amplitude is given
// in LSB: rectangular dither spans ±amplitude, triangular dither is the sum
// of two such draws, Gaussian dither has standard deviation amplitude/2.
package dither

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOption is returned for unusable quantizer settings.
var ErrInvalidOption = errors.New("dither: invalid option")

// Type selects the probability distribution of the dither noise.
type Type int

const (
	// TypeNone rounds without dither.
	TypeNone Type = iota
	// TypeRectangular adds uniform noise (RPDF).
	TypeRectangular
	// TypeTriangular adds triangular noise (TPDF), the usual converter choice.
	TypeTriangular
	// TypeGaussian adds normally distributed noise.
	TypeGaussian

	typeCount
)

var typeNames = [typeCount]string{"none", "rpdf", "tpdf", "gaussian"}

func (t Type) String() string {
	if t >= 0 && t < typeCount {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is a known dither type.
func (t Type) Valid() bool { return t >= 0 && t < typeCount }

// ParseType accepts the String forms plus "rectangular" and "triangular".
// The empty string selects TypeNone.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return TypeNone, nil
	case "rpdf", "rectangular":
		return TypeRectangular, nil
	case "tpdf", "triangular":
		return TypeTriangular, nil
	case "gaussian":
		return TypeGaussian, nil
	default:
		return TypeNone, fmt.Errorf("%w: dither type %q", ErrInvalidOption, s)
	}
}
