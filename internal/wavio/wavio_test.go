package wavio

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-fidelity/dsp/core"
	"github.com/cwbudde/algo-fidelity/dsp/signal"
	"github.com/cwbudde/algo-fidelity/measure/roundtrip"
)

var _ roundtrip.Source = Source{}

func TestInt16RoundTrip(t *testing.T) {
	in, err := signal.FromInt16([]int16{0, 1, -1, 32767, -32768, 1234, -4321, 7}, 48000, 2)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "x.wav")
	require.NoError(t, WriteFile(path, in, PCM16))

	out, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 48000, out.SampleRate)
	assert.Equal(t, 2, out.Channels)
	assert.Equal(t, signal.FormatInt, out.Format)
	assert.Equal(t, 16, out.BitDepth)
	assert.Equal(t, in.Real(), out.Real())
}

func TestFloat32RoundTrip(t *testing.T) {
	g := signal.NewGenerator(core.WithSampleRate(44100))
	in, err := g.Sine(997, 0.7, 2048)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "f.wav")
	require.NoError(t, WriteFile(path, in, Float32))

	out, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, signal.FormatFloat, out.Format)
	assert.Equal(t, 44100, out.SampleRate)
	require.Equal(t, in.Len(), out.Len())

	want, got := in.Real(), out.Real()
	for i := range want {
		require.InDelta(t, want[i], got[i], 1e-7, "sample %d", i)
	}
}

func TestFloatQuantizedToPCM(t *testing.T) {
	in, err := signal.FromFloat64([]float64{0, 0.5, -0.5, 1, -1, 2}, 8000, 1)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "q.wav")
	require.NoError(t, WriteFile(path, in, PCM16))

	out, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 16384, -16384, 32767, -32767, 32767}, out.Real())
}

func TestPCM24RoundTrip(t *testing.T) {
	in, err := signal.FromInt([]int{0, 8388607, -8388608, 42}, 24, 96000, 1)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "p24.wav")
	require.NoError(t, WriteFile(path, in, PCM24))

	out, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 24, out.BitDepth)
	assert.Equal(t, in.Real(), out.Real())
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not a riff file")))
	require.ErrorIs(t, err, ErrInvalidFile)

	path := filepath.Join(t.TempDir(), "bad.wav")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))
	_, err = ReadFile(path)
	require.ErrorIs(t, err, ErrInvalidFile)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.wav"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseSampleFormat(t *testing.T) {
	for in, want := range map[string]SampleFormat{"": PCM16, "i16": PCM16, "I24": PCM24, "s32": PCM32, "f32": Float32} {
		got, err := ParseSampleFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSampleFormat("u8")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, "f32", Float32.String())
}

func TestSource(t *testing.T) {
	dir := t.TempDir()
	sig, err := signal.FromInt16([]int16{1, 2, 3, 4}, 48000, 1)
	require.NoError(t, err)

	require.NoError(t, WriteFile(filepath.Join(dir, "generated.wav"), sig, PCM16))
	other := filepath.Join(dir, "elsewhere", "take2.wav")
	require.NoError(t, WriteFile(other, sig, PCM16))

	src := Source{Dir: dir, Files: map[string]string{roundtrip.NameRecorded: other}}
	assert.Equal(t, other, src.Path(roundtrip.NameRecorded))

	for _, name := range []string{roundtrip.NameGenerated, roundtrip.NameRecorded} {
		got, err := src.Load(context.Background(), name)
		require.NoError(t, err, name)
		assert.Equal(t, sig.Real(), got.Real(), name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Load(ctx, roundtrip.NameGenerated)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFloatValueSurvivesBitCast(t *testing.T) {
	v := float32(-0.123456)
	raw := int(int32(math.Float32bits(v)))
	assert.Equal(t, v, math.Float32frombits(uint32(int32(raw))))
}
