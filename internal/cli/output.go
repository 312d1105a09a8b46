package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-fidelity/measure/roundtrip"
)

// Output formats accepted by Render.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var printer = message.NewPrinter(language.English)

// reportView is the serialized form of a roundtrip.Report. Values that are
// NaN or infinite are null, with the reason in the matching state field.
type reportView struct {
	TargetFrequency int        `json:"target_frequency" yaml:"target_frequency"`
	Backend         string     `json:"backend" yaml:"backend"`
	BandPolicy      string     `json:"band_policy" yaml:"band_policy"`
	Gain            gainView   `json:"gain" yaml:"gain"`
	Generated       signalView `json:"generated" yaml:"generated"`
	Recorded        signalView `json:"recorded" yaml:"recorded"`
}

type gainView struct {
	DB           *float64 `json:"db" yaml:"db"`
	State        string   `json:"state" yaml:"state"`
	ReferenceRMS float64  `json:"reference_rms" yaml:"reference_rms"`
	MeasuredRMS  float64  `json:"measured_rms" yaml:"measured_rms"`
}

type signalView struct {
	Name          string   `json:"name" yaml:"name"`
	SampleRate    int      `json:"sample_rate" yaml:"sample_rate"`
	Channels      int      `json:"channels" yaml:"channels"`
	Window        [2]int   `json:"window" yaml:"window,flow"`
	Skipped       bool     `json:"skipped" yaml:"skipped"`
	THDN          *float64 `json:"thdn_percent" yaml:"thdn_percent"`
	State         string   `json:"state" yaml:"state"`
	PeakBin       int      `json:"peak_bin" yaml:"peak_bin"`
	PeakFrequency float64  `json:"peak_frequency" yaml:"peak_frequency"`
	ToneBand      [2]int   `json:"tone_band" yaml:"tone_band,flow"`
	RMS           float64  `json:"rms" yaml:"rms"`
	RMSdB         *float64 `json:"rms_db" yaml:"rms_db"`
	Peak          float64  `json:"peak" yaml:"peak"`
	ZeroCrossings int      `json:"zero_crossings" yaml:"zero_crossings"`
	Centroid      float64  `json:"spectral_centroid" yaml:"spectral_centroid"`
	Flatness      float64  `json:"spectral_flatness" yaml:"spectral_flatness"`
	Rolloff       float64  `json:"spectral_rolloff" yaml:"spectral_rolloff"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func state(v float64) string {
	switch {
	case math.IsNaN(v):
		return "undefined"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsInf(v, 1):
		return "+inf"
	default:
		return "ok"
	}
}

func newSignalView(r roundtrip.SignalReport) signalView {
	v := signalView{
		Name:          r.Name,
		SampleRate:    r.SampleRate,
		Channels:      r.Channels,
		Window:        [2]int{r.WindowStart, r.WindowEnd},
		Skipped:       r.Skipped,
		THDN:          finite(r.THD.THDN),
		State:         state(r.THD.THDN),
		PeakBin:       r.THD.PeakBin,
		PeakFrequency: r.THD.PeakFrequency,
		ToneBand:      [2]int{r.THD.BandLow, r.THD.BandHigh},
		RMS:           r.Stats.RMS,
		RMSdB:         finite(r.Stats.RMS_dB),
		Peak:          r.Stats.Peak,
		ZeroCrossings: r.Stats.ZeroCrossings,
		Centroid:      r.Spectral.Centroid,
		Flatness:      r.Spectral.Flatness,
		Rolloff:       r.Spectral.Rolloff,
	}
	if r.Skipped {
		v.THDN = nil
		v.State = "skipped"
	}
	return v
}

func newReportView(rep roundtrip.Report) reportView {
	return reportView{
		TargetFrequency: rep.TargetFrequency,
		Backend:         rep.Backend,
		BandPolicy:      rep.BandPolicy,
		Gain: gainView{
			DB:           finite(rep.Gain.DB),
			State:        state(rep.Gain.DB),
			ReferenceRMS: rep.Gain.ReferenceRMS,
			MeasuredRMS:  rep.Gain.MeasuredRMS,
		},
		Generated: newSignalView(rep.Generated),
		Recorded:  newSignalView(rep.Recorded),
	}
}

// Render writes rep in the given format.
func Render(w io.Writer, format string, rep roundtrip.Report) error {
	switch format {
	case FormatTable, "":
		return writeTable(w, rep)
	default:
		return encode(w, format, newReportView(rep))
	}
}

// RenderVersion writes info in the given format.
func RenderVersion(w io.Writer, format string, info VersionInfo) error {
	if format != FormatTable && format != "" {
		return encode(w, format, info)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "version\t%s\n", info.Version)
	fmt.Fprintf(tw, "go\t%s\n", info.GoVersion)
	fmt.Fprintf(tw, "platform\t%s\n", info.Platform)
	fmt.Fprintf(tw, "cpu\t%s\n", info.CPU)
	fmt.Fprintf(tw, "simd\t%s\n", info.SIMD)
	fmt.Fprintf(tw, "fft backends\t%s\n", strings.Join(info.Backends, ", "))
	return tw.Flush()
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func formatDB(db float64) string {
	if s := state(db); s != "ok" {
		return s + " dB"
	}
	return printer.Sprintf("%.2f dB", db)
}

func formatTHD(r roundtrip.SignalReport) string {
	if r.Skipped {
		return "skipped (no peak in window)"
	}
	if s := state(r.THD.THDN); s != "ok" {
		return s
	}
	return printer.Sprintf("%.4f %%", r.THD.THDN)
}

func formatPeak(r roundtrip.SignalReport) string {
	if r.Skipped {
		return "-"
	}
	return printer.Sprintf("%.0f Hz", r.THD.PeakFrequency)
}

func writeTable(w io.Writer, rep roundtrip.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Gain\t%s\n", formatDB(rep.Gain.DB))
	fmt.Fprintf(tw, "Generated THD+N\t%s\n", formatTHD(rep.Generated))
	fmt.Fprintf(tw, "Generated peak\t%s\n", formatPeak(rep.Generated))
	fmt.Fprintf(tw, "Recorded THD+N\t%s\n", formatTHD(rep.Recorded))
	fmt.Fprintf(tw, "Recorded peak\t%s\n", formatPeak(rep.Recorded))
	return tw.Flush()
}
