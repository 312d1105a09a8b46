package roundtrip

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-fidelity/dsp/spectrum"
	"github.com/cwbudde/algo-fidelity/measure/thd"
)

// Default analysis parameters.
const (
	DefaultCaptureSeconds  = 5.0
	DefaultSettleSeconds   = 0.5
	DefaultMarginSeconds   = 1.5
	DefaultTargetFrequency = 1000
)

// ErrInvalidConfig is returned for configurations that cannot produce a
// window.
var ErrInvalidConfig = errors.New("roundtrip: invalid configuration")

// Config drives one analysis run.
type Config struct {
	// CaptureSeconds is the nominal duration of each signal.
	CaptureSeconds float64
	// SettleSeconds is skipped at the start of each signal before the
	// window search begins.
	SettleSeconds float64
	// MarginSeconds is subtracted from CaptureSeconds to get the nominal
	// window length. It covers the settle time and the tail.
	MarginSeconds float64
	// TargetFrequency is the generated tone in Hz. It sizes the THD+N tone
	// band.
	TargetFrequency int
	BandPolicy      thd.Policy
	// Transformer computes spectra; nil selects spectrum.Auto.
	Transformer spectrum.Transformer
}

// DefaultConfig returns the standard five second capture configuration.
func DefaultConfig() Config {
	return Config{
		CaptureSeconds:  DefaultCaptureSeconds,
		SettleSeconds:   DefaultSettleSeconds,
		MarginSeconds:   DefaultMarginSeconds,
		TargetFrequency: DefaultTargetFrequency,
		BandPolicy:      thd.PolicyClamped,
		Transformer:     spectrum.Auto{},
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	switch {
	case c.CaptureSeconds <= 0:
		return fmt.Errorf("%w: capture seconds %.3f", ErrInvalidConfig, c.CaptureSeconds)
	case c.SettleSeconds < 0:
		return fmt.Errorf("%w: settle seconds %.3f", ErrInvalidConfig, c.SettleSeconds)
	case c.MarginSeconds < 0 || c.MarginSeconds >= c.CaptureSeconds:
		return fmt.Errorf("%w: margin %.3f s leaves no window in %.3f s",
			ErrInvalidConfig, c.MarginSeconds, c.CaptureSeconds)
	case c.SettleSeconds >= c.CaptureSeconds:
		return fmt.Errorf("%w: settle %.3f s exceeds capture %.3f s",
			ErrInvalidConfig, c.SettleSeconds, c.CaptureSeconds)
	case c.TargetFrequency < 0:
		return fmt.Errorf("%w: target frequency %d Hz", ErrInvalidConfig, c.TargetFrequency)
	}
	return nil
}

func (c Config) transformer() spectrum.Transformer {
	if c.Transformer == nil {
		return spectrum.Auto{}
	}
	return c.Transformer
}
