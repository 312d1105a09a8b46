package roundtrip

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-fidelity/dsp/signal"
	"github.com/cwbudde/algo-fidelity/dsp/spectrum"
	"github.com/cwbudde/algo-fidelity/internal/logging"
	"github.com/cwbudde/algo-fidelity/measure/gain"
	"github.com/cwbudde/algo-fidelity/measure/thd"
	"github.com/cwbudde/algo-fidelity/measure/zerocross"
	"github.com/cwbudde/algo-fidelity/stats/frequency"
	timestats "github.com/cwbudde/algo-fidelity/stats/time"
)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSink publishes results to s as each computation completes.
func WithSink(s Sink) Option {
	return func(a *Analyzer) {
		if s != nil {
			a.sink = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.log = l
		}
	}
}

// Analyzer runs round-trip analyses with a fixed configuration. It holds no
// per-run state and is safe for concurrent use.
type Analyzer struct {
	cfg  Config
	calc *thd.Calculator
	tr   spectrum.Transformer
	sink Sink
	log  logging.Logger
}

// NewAnalyzer validates cfg and returns an analyzer.
func NewAnalyzer(cfg Config, opts ...Option) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	calc, err := thd.NewCalculator(thd.Config{
		TargetFrequency: cfg.TargetFrequency,
		Policy:          cfg.BandPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	a := &Analyzer{
		cfg:  cfg,
		calc: calc,
		tr:   cfg.transformer(),
		sink: nopSink{},
		log:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithFields(logging.Fields{"component": "roundtrip"})

	return a, nil
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// RunSource loads both signals from src and runs the analysis.
func (a *Analyzer) RunSource(ctx context.Context, src Source) (Report, error) {
	generated, err := src.Load(ctx, NameGenerated)
	if err != nil {
		return Report{}, fmt.Errorf("load %s: %w", NameGenerated, err)
	}

	recorded, err := src.Load(ctx, NameRecorded)
	if err != nil {
		return Report{}, fmt.Errorf("load %s: %w", NameRecorded, err)
	}

	return a.Run(ctx, generated, recorded)
}

// Run analyzes both signals. The two spectral paths run concurrently and
// each publishes to the sink when it finishes; gain is computed on the
// calling goroutine.
//
// Window errors are returned. A window too short to hold a peak marks that
// signal Skipped. Undefined ratios are reported as NaN or -Inf values, not
// as errors.
//
// A failing path does not stop the other one. When Run returns an error the
// sink still holds whatever gain and path results succeeded.
func (a *Analyzer) Run(ctx context.Context, generated, recorded signal.Signal) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	rep := Report{
		TargetFrequency: a.cfg.TargetFrequency,
		Backend:         a.tr.Name(),
		BandPolicy:      a.cfg.BandPolicy.String(),
	}

	var g errgroup.Group
	g.Go(func() error {
		r, err := a.analyzePath(ctx, NameGenerated, generated, a.sink.SetGenerated)
		rep.Generated = r
		return err
	})
	g.Go(func() error {
		r, err := a.analyzePath(ctx, NameRecorded, recorded, a.sink.SetRecorded)
		rep.Recorded = r
		return err
	})

	gainRes, gainErr := gain.Compare(generated, recorded)
	switch {
	case gainErr == nil:
		a.sink.SetGain(gainRes.DB)
	case errors.Is(gainErr, gain.ErrDegenerateRatio):
		a.log.Warn("gain undefined", logging.Fields{"error": gainErr.Error(), "db": gainRes.DB})
		a.sink.SetGain(gainRes.DB)
	default:
		_ = g.Wait()
		return Report{}, fmt.Errorf("gain: %w", gainErr)
	}
	rep.Gain = gainRes

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return rep, nil
}

func (a *Analyzer) analyzePath(ctx context.Context, name string, sig signal.Signal,
	publish func(float64, float32),
) (SignalReport, error) {
	if err := ctx.Err(); err != nil {
		return SignalReport{}, err
	}

	r, err := a.AnalyzeSignal(name, sig)
	if err != nil {
		return r, err
	}
	if r.Skipped {
		return r, nil
	}

	publish(r.THD.THDN, float32(r.THD.PeakFrequency))
	return r, nil
}

// AnalyzeSignal cuts the analysis window from sig and measures it. It does
// not touch the sink.
func (a *Analyzer) AnalyzeSignal(name string, sig signal.Signal) (SignalReport, error) {
	log := a.log.WithFields(logging.Fields{"signal": name})

	rep := SignalReport{
		Name:       name,
		SampleRate: sig.SampleRate,
		Channels:   sig.Channels,
		Stats:      timestats.Calculate(sig.Real()),
	}

	offset, err := zerocross.SettleOffset(sig.SampleRate, a.cfg.SettleSeconds)
	if err != nil {
		return rep, fmt.Errorf("%s: %w", name, err)
	}
	length, err := zerocross.NominalLength(sig.SampleRate, a.cfg.CaptureSeconds, a.cfg.MarginSeconds)
	if err != nil {
		return rep, fmt.Errorf("%s: %w", name, err)
	}

	win, err := zerocross.Extract(sig, offset, length)
	if err != nil {
		return rep, fmt.Errorf("%s: %w", name, err)
	}
	rep.WindowStart, rep.WindowEnd = win.Start, win.End
	log.Debug("window extracted", logging.Fields{"start": win.Start, "end": win.End, "len": win.Len()})

	res, spec, err := a.calc.AnalyzeSignal(a.tr, win.Signal)
	rep.Spectrum = spec
	switch {
	case errors.Is(err, spectrum.ErrNoPeak):
		log.Warn("analysis skipped", logging.Fields{"reason": err.Error()})
		rep.Skipped = true
		return rep, nil
	case errors.Is(err, thd.ErrDegenerateRatio):
		log.Warn("THD+N undefined", logging.Fields{"reason": err.Error()})
	case err != nil:
		return rep, fmt.Errorf("%s: %w", name, err)
	}

	rep.THD = res
	rep.Spectral = frequency.FromSpectrum(spec)
	log.Debug("analysis complete", logging.Fields{
		"peak_hz":  res.PeakFrequency,
		"thdn":     res.THDN,
		"centroid": rep.Spectral.Centroid,
		"backend":  a.tr.Name(),
	})

	return rep, nil
}
