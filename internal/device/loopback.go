package device

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-fidelity/dsp/dither"
	"github.com/cwbudde/algo-fidelity/dsp/signal"
	"github.com/cwbudde/algo-fidelity/internal/logging"
	timestats "github.com/cwbudde/algo-fidelity/stats/time"
)

// ErrInvalidConfig is returned for unusable loopback settings.
var ErrInvalidConfig = errors.New("device: invalid configuration")

// Config describes a loopback session.
type Config struct {
	SampleRate int
	Channels   int
	BlockSize  int // frames per block
	BitDepth   int // integer depth of the produced signals
	Duration   time.Duration
	// Dither is applied when the recorded side is quantized to BitDepth.
	// The generated side is always rounded plainly.
	Dither dither.Type
	// Realtime paces the player at the sample rate instead of rendering as
	// fast as possible.
	Realtime bool
	// MeterInterval enables a level meter that reads the recorder at this
	// period while capturing. Zero disables it.
	MeterInterval time.Duration
	// OnLevel receives the recorder level at every meter tick. It runs on
	// the meter goroutine.
	OnLevel func(timestats.Stats)
	Channel ChannelModel
}

// DefaultConfig returns a five second mono 48 kHz session at 16 bits.
func DefaultConfig() Config {
	return Config{
		SampleRate: 48000,
		Channels:   1,
		BlockSize:  1024,
		BitDepth:   16,
		Duration:   5 * time.Second,
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	case c.Channels <= 0:
		return fmt.Errorf("%w: %d channels", ErrInvalidConfig, c.Channels)
	case c.BlockSize <= 0:
		return fmt.Errorf("%w: block size %d", ErrInvalidConfig, c.BlockSize)
	case c.Duration <= 0:
		return fmt.Errorf("%w: duration %s", ErrInvalidConfig, c.Duration)
	case c.MeterInterval < 0:
		return fmt.Errorf("%w: meter interval %s", ErrInvalidConfig, c.MeterInterval)
	case !c.Dither.Valid():
		return fmt.Errorf("%w: dither %s", ErrInvalidConfig, c.Dither)
	}
	switch c.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: bit depth %d", ErrInvalidConfig, c.BitDepth)
	}
	return c.Channel.Validate()
}

// Frames returns the number of frames in a session.
func (c Config) Frames() int {
	return int(math.Round(c.Duration.Seconds() * float64(c.SampleRate)))
}

// Capture is the outcome of a loopback session.
type Capture struct {
	Generated signal.Signal
	Recorded  signal.Signal
	Blocks    int
	Dropped   int
	Level     timestats.Stats
}

// Loopback plays a tone into a ChannelModel and records the result.
type Loopback struct {
	cfg Config
	log logging.Logger
}

// NewLoopback validates cfg and returns a loopback device.
func NewLoopback(cfg Config, log logging.Logger) (*Loopback, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Loopback{cfg: cfg, log: log.WithFields(logging.Fields{"component": "device"})}, nil
}

// Config returns the session configuration.
func (l *Loopback) Config() Config { return l.cfg }

// Run plays a sine at freqHz with the given peak amplitude for the
// configured duration and returns both ends of the loop.
//
// The player stops once it has rendered every frame, when stop is
// requested by a realtime timer, or when ctx is done. Closing its block
// channel then lets the capture worker drain and exit.
func (l *Loopback) Run(ctx context.Context, freqHz, amplitude float64) (Capture, error) {
	cfg := l.cfg
	total := cfg.Frames() * cfg.Channels

	played := NewRecorder(total)
	recorded := NewRecorder(total)

	stop := make(chan struct{})
	var stopOnce sync.Once
	requestStop := func() { stopOnce.Do(func() { close(stop) }) }
	defer requestStop()

	if cfg.Realtime {
		timer := time.AfterFunc(cfg.Duration, requestStop)
		defer timer.Stop()
	}

	blocks := make(chan []float64, 8)
	captureDone := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(blocks)
		return l.play(gctx, stop, blocks, played, freqHz, amplitude)
	})

	g.Go(func() error {
		defer close(captureDone)
		ch := newChannel(cfg.Channel, cfg.Channels)
		for block := range blocks {
			recorded.TryWrite(ch.process(block))
		}
		return nil
	})

	if cfg.MeterInterval > 0 {
		g.Go(func() error {
			l.meter(gctx, captureDone, recorded)
			return nil
		})
	}

	l.log.Debug("loopback started", logging.Fields{
		"freq_hz":  freqHz,
		"frames":   cfg.Frames(),
		"realtime": cfg.Realtime,
	})

	if err := g.Wait(); err != nil {
		return Capture{}, err
	}
	if err := ctx.Err(); err != nil {
		return Capture{}, err
	}

	gen, err := l.toSignal(played.Samples(), dither.TypeNone)
	if err != nil {
		return Capture{}, fmt.Errorf("generated: %w", err)
	}
	rec, err := l.toSignal(recorded.Samples(), cfg.Dither)
	if err != nil {
		return Capture{}, fmt.Errorf("recorded: %w", err)
	}

	capt := Capture{
		Generated: gen,
		Recorded:  rec,
		Blocks:    recorded.Blocks(),
		Dropped:   recorded.Dropped(),
		Level:     recorded.Level(),
	}
	if capt.Dropped > 0 {
		l.log.Warn("capture dropped blocks", logging.Fields{"dropped": capt.Dropped, "blocks": capt.Blocks})
	}
	l.log.Debug("loopback finished", logging.Fields{
		"blocks":  capt.Blocks,
		"rms_db":  capt.Level.RMS_dB,
		"peak_db": capt.Level.Peak_dB,
	})

	return capt, nil
}

func (l *Loopback) play(ctx context.Context, stop <-chan struct{}, out chan<- []float64,
	played *Recorder, freqHz, amplitude float64,
) error {
	cfg := l.cfg
	osc := signal.NewOscillator(freqHz, float64(cfg.SampleRate))

	var tick <-chan time.Time
	if cfg.Realtime {
		period := time.Duration(float64(cfg.BlockSize) / float64(cfg.SampleRate) * float64(time.Second))
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		tick = ticker.C
	}

	for remaining := cfg.Frames(); remaining > 0; {
		frames := min(cfg.BlockSize, remaining)
		block := make([]float64, frames*cfg.Channels)
		for f := range frames {
			v := amplitude * osc.Next()
			for c := range cfg.Channels {
				block[f*cfg.Channels+c] = v
			}
		}
		remaining -= frames

		select {
		case out <- block:
			played.Write(block)
		case <-stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}

		if tick != nil {
			select {
			case <-tick:
			case <-stop:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

func (l *Loopback) meter(ctx context.Context, done <-chan struct{}, rec *Recorder) {
	ticker := time.NewTicker(l.cfg.MeterInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lvl := rec.Level()
			l.log.Debug("input level", logging.Fields{"rms_db": lvl.RMS_dB, "peak_db": lvl.Peak_dB})
			if l.cfg.OnLevel != nil {
				l.cfg.OnLevel(lvl)
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (l *Loopback) toSignal(samples []float64, typ dither.Type) (signal.Signal, error) {
	q, err := dither.NewQuantizer(l.cfg.BitDepth,
		dither.WithType(typ), dither.WithSeed(uint64(l.cfg.Channel.NoiseSeed)))
	if err != nil {
		return signal.Signal{}, err
	}
	return signal.FromInt(q.QuantizeBlock(samples), l.cfg.BitDepth, l.cfg.SampleRate, l.cfg.Channels)
}
