package device

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-fidelity/dsp/dither"
	"github.com/cwbudde/algo-fidelity/dsp/signal"
	"github.com/cwbudde/algo-fidelity/internal/logging"
	timestats "github.com/cwbudde/algo-fidelity/stats/time"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Duration = 500 * time.Millisecond
	cfg.BlockSize = 480
	return cfg
}

func TestLoopbackUnityChannel(t *testing.T) {
	lb, err := NewLoopback(testConfig(), logging.NewNop())
	require.NoError(t, err)

	capt, err := lb.Run(context.Background(), 1000, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 24000, capt.Generated.Len())
	assert.Equal(t, 24000, capt.Recorded.Len())
	assert.Equal(t, signal.FormatInt, capt.Recorded.Format)
	assert.Equal(t, 16, capt.Recorded.BitDepth)
	assert.Equal(t, 50, capt.Blocks)
	assert.Zero(t, capt.Dropped)
	assert.Equal(t, capt.Generated.Real(), capt.Recorded.Real())
}

func TestLoopbackGain(t *testing.T) {
	cfg := testConfig()
	cfg.Channel.GainDB = -6.0206

	lb, err := NewLoopback(cfg, nil)
	require.NoError(t, err)

	capt, err := lb.Run(context.Background(), 1000, 0.8)
	require.NoError(t, err)

	ratio := timestats.RMS(capt.Recorded.Real()) / timestats.RMS(capt.Generated.Real())
	assert.InDelta(t, 0.5, ratio, 1e-3)
	assert.InDelta(t, 20*math.Log10(0.5*0.8/math.Sqrt2), capt.Level.RMS_dB, 0.01)
}

func TestLoopbackLatency(t *testing.T) {
	cfg := testConfig()
	cfg.Channels = 2
	cfg.Channel.LatencyFrames = 100

	lb, err := NewLoopback(cfg, nil)
	require.NoError(t, err)

	capt, err := lb.Run(context.Background(), 440, 0.5)
	require.NoError(t, err)

	gen, rec := capt.Generated.Real(), capt.Recorded.Real()
	require.Equal(t, len(gen), len(rec))
	for i := range 200 {
		require.Zero(t, rec[i], "sample %d", i)
	}
	assert.Equal(t, gen[:len(gen)-200], rec[200:])
}

func TestLoopbackNoiseDeterministic(t *testing.T) {
	cfg := testConfig()
	cfg.Channel.NoiseAmplitude = 0.01
	cfg.Channel.NoiseSeed = 9

	run := func() []float64 {
		lb, err := NewLoopback(cfg, nil)
		require.NoError(t, err)
		capt, err := lb.Run(context.Background(), 1000, 0.5)
		require.NoError(t, err)
		return capt.Recorded.Real()
	}

	a, b := run(), run()
	assert.Equal(t, a, b)

	lb, _ := NewLoopback(testConfig(), nil)
	clean, err := lb.Run(context.Background(), 1000, 0.5)
	require.NoError(t, err)
	assert.NotEqual(t, clean.Recorded.Real(), a)
}

func TestLoopbackCanceled(t *testing.T) {
	lb, err := NewLoopback(testConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = lb.Run(ctx, 1000, 0.5)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoopbackRealtimeStops(t *testing.T) {
	cfg := testConfig()
	cfg.Duration = 50 * time.Millisecond
	cfg.Realtime = true
	cfg.MeterInterval = 5 * time.Millisecond
	var ticks atomic.Int32
	cfg.OnLevel = func(timestats.Stats) { ticks.Add(1) }

	lb, err := NewLoopback(cfg, nil)
	require.NoError(t, err)

	start := time.Now()
	capt, err := lb.Run(context.Background(), 1000, 0.5)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.LessOrEqual(t, capt.Recorded.Len(), cfg.Frames())
	// 2400 frames split evenly into 480-frame blocks.
	assert.Equal(t, capt.Generated.Len()/cfg.BlockSize, capt.Blocks+capt.Dropped)
	assert.Positive(t, ticks.Load(), "meter should report while capturing")
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := []func(*Config){
		func(c *Config) { c.SampleRate = 0 },
		func(c *Config) { c.Channels = 0 },
		func(c *Config) { c.BlockSize = 0 },
		func(c *Config) { c.Duration = 0 },
		func(c *Config) { c.BitDepth = 12 },
		func(c *Config) { c.MeterInterval = -time.Second },
		func(c *Config) { c.Channel.NoiseAmplitude = -1 },
		func(c *Config) { c.Channel.LatencyFrames = -1 },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		_, err := NewLoopback(cfg, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig, "case %d", i)
	}
}

func TestRecorderTryWriteDropsUnderContention(t *testing.T) {
	r := NewRecorder(8)

	require.True(t, r.TryWrite([]float64{1, -1}))

	r.mu.Lock()
	ok := r.TryWrite([]float64{2, -2})
	r.mu.Unlock()

	assert.False(t, ok)
	assert.Equal(t, 1, r.Dropped())
	assert.Equal(t, 1, r.Blocks())
	assert.Equal(t, []float64{1, -1}, r.Samples())

	r.Write([]float64{0.5})
	lvl := r.Level()
	assert.Equal(t, 3, lvl.Length)
	assert.Equal(t, 1.0, lvl.Peak)
}

func TestChannelDistortionAddsHarmonics(t *testing.T) {
	ch := newChannel(ChannelModel{Harmonic2: 0.1, Harmonic3: 0.05}, 1)
	out := ch.process([]float64{0, 0.5, -0.5, 1})

	assert.InDelta(t, 0.0, out[0], 1e-15)
	assert.InDelta(t, 0.5+0.1*0.25+0.05*0.125, out[1], 1e-12)
	assert.InDelta(t, -0.5+0.1*0.25-0.05*0.125, out[2], 1e-12)
	assert.InDelta(t, 1.15, out[3], 1e-12)
}

func TestLoopbackDitheredRecording(t *testing.T) {
	cfg := testConfig()
	cfg.Dither = dither.TypeTriangular

	lb, err := NewLoopback(cfg, nil)
	require.NoError(t, err)

	capt, err := lb.Run(context.Background(), 1000, 0.5)
	require.NoError(t, err)

	gen, rec := capt.Generated.Real(), capt.Recorded.Real()
	require.Len(t, rec, len(gen))

	differ := 0
	for i := range gen {
		d := math.Abs(gen[i] - rec[i])
		require.LessOrEqual(t, d, 1.0, "sample %d", i)
		if d > 0 {
			differ++
		}
	}
	assert.Positive(t, differ, "dither should perturb the recording")

	cfg.Dither = dither.Type(99)
	_, err = NewLoopback(cfg, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}
