// Package wavio decodes and encodes WAV files as signal.Signal values.
package wavio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-fidelity/dsp/signal"
)

const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE
)

// Errors returned by the codec.
var (
	ErrInvalidFile       = errors.New("wavio: not a valid WAV file")
	ErrUnsupportedFormat = errors.New("wavio: unsupported sample format")
)

// SampleFormat selects how samples are stored on disk.
type SampleFormat int

const (
	PCM16 SampleFormat = iota
	PCM24
	PCM32
	Float32
)

func (f SampleFormat) String() string {
	switch f {
	case PCM16:
		return "i16"
	case PCM24:
		return "i24"
	case PCM32:
		return "i32"
	case Float32:
		return "f32"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
}

// ParseSampleFormat maps i16, i24, i32 or f32 to a SampleFormat.
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "i16", "s16":
		return PCM16, nil
	case "i24", "s24":
		return PCM24, nil
	case "i32", "s32":
		return PCM32, nil
	case "f32", "float":
		return Float32, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

func (f SampleFormat) bitDepth() int {
	switch f {
	case PCM24:
		return 24
	case PCM32, Float32:
		return 32
	default:
		return 16
	}
}

// Decode reads a whole WAV stream. Integer PCM keeps its raw scale; IEEE
// float data becomes a float signal.
func Decode(r io.ReadSeeker) (signal.Signal, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return signal.Signal{}, ErrInvalidFile
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return signal.Signal{}, fmt.Errorf("read PCM data: %w", err)
	}
	if buf.Format == nil {
		return signal.Signal{}, ErrInvalidFile
	}

	rate, chans := buf.Format.SampleRate, buf.Format.NumChannels
	depth := int(dec.BitDepth)

	switch dec.WavAudioFormat {
	case wavFormatIEEEFloat:
		if depth != 32 {
			return signal.Signal{}, fmt.Errorf("%w: %d-bit float", ErrUnsupportedFormat, depth)
		}
		samples := make([]float32, len(buf.Data))
		for i, v := range buf.Data {
			samples[i] = math.Float32frombits(uint32(int32(v)))
		}
		return signal.FromFloat32(samples, rate, chans)

	case wavFormatPCM, wavFormatExtensible:
		if depth != 16 && depth != 24 && depth != 32 {
			return signal.Signal{}, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedFormat, depth)
		}
		return signal.FromInt(buf.Data, depth, rate, chans)

	default:
		return signal.Signal{}, fmt.Errorf("%w: WAV format tag %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (signal.Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return signal.Signal{}, err
	}
	defer f.Close()

	sig, err := Decode(f)
	if err != nil {
		return signal.Signal{}, fmt.Errorf("%s: %w", path, err)
	}
	return sig, nil
}

// Encode writes sig as a WAV stream in the given format. Integer signals
// already at the target depth are written unchanged; anything else is
// normalized and requantized.
func Encode(w io.WriteSeeker, sig signal.Signal, format SampleFormat) error {
	data, audioFormat, err := samplesFor(sig, format)
	if err != nil {
		return err
	}

	depth := format.bitDepth()
	enc := wav.NewEncoder(w, sig.SampleRate, depth, sig.Channels, audioFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: sig.Channels, SampleRate: sig.SampleRate},
		Data:           data,
		SourceBitDepth: depth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	return enc.Close()
}

func samplesFor(sig signal.Signal, format SampleFormat) ([]int, int, error) {
	switch format {
	case Float32:
		vals := sig.Normalized().Real()
		out := make([]int, len(vals))
		for i, v := range vals {
			out[i] = int(int32(math.Float32bits(float32(v))))
		}
		return out, wavFormatIEEEFloat, nil

	case PCM16, PCM24, PCM32:
		depth := format.bitDepth()
		if sig.Format == signal.FormatInt && sig.BitDepth == depth {
			vals := sig.Real()
			out := make([]int, len(vals))
			for i, v := range vals {
				out[i] = int(v)
			}
			return out, wavFormatPCM, nil
		}

		out, err := signal.Quantize(sig.Normalized().Real(), depth)
		return out, wavFormatPCM, err

	default:
		return nil, 0, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
}

// WriteFile encodes sig to path, creating parent directories.
func WriteFile(path string, sig signal.Signal, format SampleFormat) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Encode(f, sig, format); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Source loads named signals from WAV files. Names listed in Files map to
// explicit paths; any other name resolves to <Dir>/<name>.wav.
type Source struct {
	Dir   string
	Files map[string]string
}

// Path returns the file a name resolves to.
func (s Source) Path(name string) string {
	if p, ok := s.Files[name]; ok {
		return p
	}
	return filepath.Join(s.Dir, name+".wav")
}

// Load implements roundtrip.Source.
func (s Source) Load(ctx context.Context, name string) (signal.Signal, error) {
	if err := ctx.Err(); err != nil {
		return signal.Signal{}, err
	}
	return ReadFile(s.Path(name))
}
