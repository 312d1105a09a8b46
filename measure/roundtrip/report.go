package roundtrip

import (
	"math"

	"github.com/cwbudde/algo-fidelity/dsp/spectrum"
	"github.com/cwbudde/algo-fidelity/measure/gain"
	"github.com/cwbudde/algo-fidelity/measure/thd"
	"github.com/cwbudde/algo-fidelity/stats/frequency"
	timestats "github.com/cwbudde/algo-fidelity/stats/time"
)

// SignalReport is the analysis of one signal.
type SignalReport struct {
	Name        string          `json:"name" yaml:"name"`
	SampleRate  int             `json:"sample_rate" yaml:"sample_rate"`
	Channels    int             `json:"channels" yaml:"channels"`
	WindowStart int             `json:"window_start" yaml:"window_start"`
	WindowEnd   int             `json:"window_end" yaml:"window_end"`
	THD         thd.Result      `json:"thd" yaml:"thd"`
	Stats       timestats.Stats `json:"stats" yaml:"stats"`
	// Spectral describes the search band; zero when Skipped.
	Spectral frequency.Stats `json:"spectral" yaml:"spectral"`
	// Skipped is set when the window was too short to hold a peak. THD is
	// then zero-valued and the sink was not updated.
	Skipped bool `json:"skipped" yaml:"skipped"`
	// Spectrum is kept for export and not serialized.
	Spectrum spectrum.Spectrum `json:"-" yaml:"-"`
}

// Defined reports whether THD+N holds a usable number.
func (r SignalReport) Defined() bool {
	return !r.Skipped && !math.IsNaN(r.THD.THDN)
}

// Report is the result of a full round-trip analysis.
type Report struct {
	TargetFrequency int          `json:"target_frequency" yaml:"target_frequency"`
	Backend         string       `json:"backend" yaml:"backend"`
	BandPolicy      string       `json:"band_policy" yaml:"band_policy"`
	Gain            gain.Result  `json:"gain" yaml:"gain"`
	Generated       SignalReport `json:"generated" yaml:"generated"`
	Recorded        SignalReport `json:"recorded" yaml:"recorded"`
}

// GainDefined reports whether the gain is a finite number.
func (r Report) GainDefined() bool {
	return !math.IsNaN(r.Gain.DB) && !math.IsInf(r.Gain.DB, 0)
}
