package signal

import (
	"errors"
	"fmt"
	"math"
)

// Errors returned by Signal constructors.
var (
	ErrInvalidSampleRate = errors.New("signal: sample rate must be positive")
	ErrInvalidChannels   = errors.New("signal: channel count must be positive")
	ErrInvalidBitDepth   = errors.New("signal: unsupported bit depth")
)

// Format identifies how samples were stored before conversion.
type Format int

const (
	// FormatFloat marks IEEE float samples, nominally in [-1, 1].
	FormatFloat Format = iota
	// FormatInt marks signed integer PCM samples kept at their raw scale.
	FormatInt
)

func (f Format) String() string {
	switch f {
	case FormatFloat:
		return "float"
	case FormatInt:
		return "int"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Signal is a decoded waveform. Samples hold real values in the real part
// of each complex128 so they can be handed to an FFT without copying.
// Multi-channel data stays interleaved.
//
// A Signal is treated as immutable: methods never modify Samples in place.
type Signal struct {
	Samples    []complex128
	SampleRate int
	Channels   int
	Format     Format
	BitDepth   int
}

// FromFloat64 wraps real-valued samples.
func FromFloat64(samples []float64, sampleRate, channels int) (Signal, error) {
	if err := validate(sampleRate, channels); err != nil {
		return Signal{}, err
	}

	out := make([]complex128, len(samples))
	for i, v := range samples {
		out[i] = complex(v, 0)
	}

	return Signal{Samples: out, SampleRate: sampleRate, Channels: channels, Format: FormatFloat, BitDepth: 64}, nil
}

// FromFloat32 wraps 32-bit float samples.
func FromFloat32(samples []float32, sampleRate, channels int) (Signal, error) {
	if err := validate(sampleRate, channels); err != nil {
		return Signal{}, err
	}

	out := make([]complex128, len(samples))
	for i, v := range samples {
		out[i] = complex(float64(v), 0)
	}

	return Signal{Samples: out, SampleRate: sampleRate, Channels: channels, Format: FormatFloat, BitDepth: 32}, nil
}

// FromInt wraps signed integer PCM samples of the given bit depth. Values
// keep their integer scale; gain and THD+N are ratios and do not depend on
// it. Use Normalized to map them into [-1, 1).
func FromInt(samples []int, bitDepth, sampleRate, channels int) (Signal, error) {
	if err := validate(sampleRate, channels); err != nil {
		return Signal{}, err
	}

	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return Signal{}, fmt.Errorf("%w: %d", ErrInvalidBitDepth, bitDepth)
	}

	out := make([]complex128, len(samples))
	for i, v := range samples {
		out[i] = complex(float64(v), 0)
	}

	return Signal{Samples: out, SampleRate: sampleRate, Channels: channels, Format: FormatInt, BitDepth: bitDepth}, nil
}

// FromInt16 wraps 16-bit PCM samples.
func FromInt16(samples []int16, sampleRate, channels int) (Signal, error) {
	ints := make([]int, len(samples))
	for i, v := range samples {
		ints[i] = int(v)
	}

	return FromInt(ints, 16, sampleRate, channels)
}

func validate(sampleRate, channels int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if channels <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}
	return nil
}

// Len returns the number of samples across all channels.
func (s Signal) Len() int { return len(s.Samples) }

// Duration returns the signal length in seconds.
func (s Signal) Duration() float64 {
	if s.SampleRate <= 0 || s.Channels <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate*s.Channels)
}

// Real returns a copy of the real parts.
func (s Signal) Real() []float64 {
	out := make([]float64, len(s.Samples))
	for i, v := range s.Samples {
		out[i] = real(v)
	}
	return out
}

// Slice returns the sub-signal [start, end). The sample data is shared with
// s, which is safe because neither value is ever written.
func (s Signal) Slice(start, end int) Signal {
	out := s
	out.Samples = s.Samples[start:end:end]
	return out
}

// Normalized returns a float copy of s with integer samples scaled into
// [-1, 1). Float signals are returned unchanged.
func (s Signal) Normalized() Signal {
	if s.Format != FormatInt {
		return s
	}

	scale := 1 / math.Ldexp(1, s.BitDepth-1)
	out := make([]complex128, len(s.Samples))
	for i, v := range s.Samples {
		out[i] = complex(real(v)*scale, 0)
	}

	n := s
	n.Samples = out
	n.Format = FormatFloat
	n.BitDepth = 64
	return n
}

// Quantize converts float samples in [-1, 1] to signed integers of the given
// bit depth, clipping out-of-range values.
func Quantize(samples []float64, bitDepth int) ([]int, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidBitDepth, bitDepth)
	}

	full := math.Ldexp(1, bitDepth-1)
	maxVal := full - 1
	out := make([]int, len(samples))
	for i, v := range samples {
		q := math.Round(v * maxVal)
		if q > maxVal {
			q = maxVal
		} else if q < -full {
			q = -full
		}
		out[i] = int(q)
	}
	return out, nil
}
