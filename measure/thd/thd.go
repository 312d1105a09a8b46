package thd

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-fidelity/dsp/core"
	"github.com/cwbudde/algo-fidelity/dsp/signal"
	"github.com/cwbudde/algo-fidelity/dsp/spectrum"
)

const (
	baseBandSize      = 100
	bandSizeDivisorHz = 200
)

// Errors returned by THD+N estimation.
var (
	ErrDegenerateRatio = errors.New("thd: total band energy is zero")
	ErrInvalidConfig   = errors.New("thd: invalid configuration")
	ErrPeakOutOfBand   = errors.New("thd: peak outside search band")
)

// Policy selects how the upper edge of the tone band is bounded.
type Policy int

const (
	// PolicyClamped stops the tone band at the end of the search band, so
	// tone energy never exceeds total energy.
	PolicyClamped Policy = iota
	// PolicyLegacy lets the tone band run past the search band, bounded
	// only by the spectrum length. Small windows with wide bands can then
	// report negative THD+N.
	PolicyLegacy
)

func (p Policy) String() string {
	switch p {
	case PolicyClamped:
		return "clamped"
	case PolicyLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy maps a config string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "clamped":
		return PolicyClamped, nil
	case "legacy":
		return PolicyLegacy, nil
	default:
		return 0, fmt.Errorf("%w: unknown band policy %q", ErrInvalidConfig, s)
	}
}

// Config holds THD+N estimation parameters.
type Config struct {
	// TargetFrequency is the generated tone frequency in Hz. It only sizes
	// the tone band; the fundamental is always the measured peak.
	TargetFrequency int
	// BandSize overrides the derived tone band width in bins when > 0.
	BandSize int
	Policy   Policy
}

// Result holds a THD+N measurement.
type Result struct {
	PeakBin       int
	PeakFrequency float64 // Hz
	THDN          float64 // percent; NaN when undefined
	ToneEnergy    float64
	TotalEnergy   float64
	BandLow       int // first tone band bin
	BandHigh      int // one past the last tone band bin
}

// BandSize returns the tone band width in bins for a target frequency.
func BandSize(targetHz int) int {
	return baseBandSize + targetHz/bandSizeDivisorHz
}

// Calculator estimates THD+N with a fixed configuration.
type Calculator struct {
	cfg Config
}

// NewCalculator validates cfg and returns a calculator.
func NewCalculator(cfg Config) (*Calculator, error) {
	if cfg.TargetFrequency < 0 {
		return nil, fmt.Errorf("%w: target frequency %d Hz", ErrInvalidConfig, cfg.TargetFrequency)
	}
	if cfg.BandSize < 0 {
		return nil, fmt.Errorf("%w: band size %d", ErrInvalidConfig, cfg.BandSize)
	}
	if cfg.Policy != PolicyClamped && cfg.Policy != PolicyLegacy {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, cfg.Policy)
	}
	if cfg.BandSize == 0 {
		cfg.BandSize = BandSize(cfg.TargetFrequency)
	}
	return &Calculator{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (c *Calculator) Config() Config { return c.cfg }

// Band returns the tone band [low, high) around peakBin for a spectrum of
// n bins.
func (c *Calculator) Band(peakBin, n int) (low, high int) {
	half := c.cfg.BandSize / 2
	low = max(peakBin-half, 0)
	high = low + c.cfg.BandSize

	limit := n
	if c.cfg.Policy == PolicyClamped {
		limit = n / 4
	}
	high = core.ClampIndex(high, low, limit)
	return low, high
}

// Calculate computes THD+N around peak. When the total band holds no
// energy the result carries THDN = NaN together with ErrDegenerateRatio.
func (c *Calculator) Calculate(spec spectrum.Spectrum, peak spectrum.Peak) (Result, error) {
	searchLen := spec.SearchLen()
	if peak.Bin < 0 || peak.Bin >= searchLen {
		return Result{}, fmt.Errorf("%w: bin %d, band [0,%d)", ErrPeakOutOfBand, peak.Bin, searchLen)
	}

	low, high := c.Band(peak.Bin, spec.Len())
	res := Result{
		PeakBin:       peak.Bin,
		PeakFrequency: spec.Frequency(peak.Bin),
		ToneEnergy:    spectrum.Energy(spec.Bins[low:high]),
		TotalEnergy:   spectrum.Energy(spec.SearchBand()),
		BandLow:       low,
		BandHigh:      high,
	}

	if res.TotalEnergy == 0 {
		res.THDN = math.NaN()
		return res, ErrDegenerateRatio
	}

	total := math.Sqrt(res.TotalEnergy)
	tone := math.Sqrt(res.ToneEnergy)
	res.THDN = 100 * (total - tone) / total
	return res, nil
}

// AnalyzeSignal transforms a window with t, finds its peak and estimates
// THD+N. spectrum.ErrNoPeak is returned unchanged for windows that are too
// short.
func (c *Calculator) AnalyzeSignal(t spectrum.Transformer, window signal.Signal) (Result, spectrum.Spectrum, error) {
	spec, peak, err := spectrum.Analyze(t, window)
	if err != nil {
		return Result{}, spec, err
	}

	res, err := c.Calculate(spec, peak)
	return res, spec, err
}

// Estimate is a one-shot Calculate.
func Estimate(spec spectrum.Spectrum, peak spectrum.Peak, cfg Config) (Result, error) {
	c, err := NewCalculator(cfg)
	if err != nil {
		return Result{}, err
	}
	return c.Calculate(spec, peak)
}
