package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cwbudde/algo-fidelity/internal/config"
	"github.com/cwbudde/algo-fidelity/internal/device"
	"github.com/cwbudde/algo-fidelity/internal/export"
	"github.com/cwbudde/algo-fidelity/internal/logging"
	"github.com/cwbudde/algo-fidelity/internal/wavio"
	"github.com/cwbudde/algo-fidelity/measure/roundtrip"
	timestats "github.com/cwbudde/algo-fidelity/stats/time"
)

func newRunCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play a tone through the simulated loopback, record it and analyze both ends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context())
		},
	}

	d := config.Default()
	f := cmd.Flags()
	addAnalysisFlags(f, d)
	f.Int("sample-rate", d.Device.SampleRate, "device sample rate in Hz")
	f.String("format", d.Device.SampleFormat, "sample format of the written files (i16, i24, i32, f32)")
	f.String("dither", d.Device.Dither, "dither applied when quantizing the recording (none, rpdf, tpdf, gaussian)")
	f.Float64("amplitude", d.Device.Amplitude, "peak amplitude of the played tone")
	f.Bool("realtime", d.Device.Realtime, "pace playback at the sample rate")
	f.Float64("gain-db", d.Device.Channel.GainDB, "loop gain in dB")
	f.Float64("noise", d.Device.Channel.NoiseAmplitude, "peak amplitude of noise added in the loop")
	f.Float64("h2", d.Device.Channel.Harmonic2, "second order distortion coefficient")
	f.Float64("h3", d.Device.Channel.Harmonic3, "third order distortion coefficient")
	f.Int("latency", d.Device.Channel.LatencyFrames, "loop latency in frames")
	f.Int("meter", d.Device.MeterIntervalMS, "show the input level every N ms on a terminal (0 disables)")
	return cmd
}

func (a *app) run(ctx context.Context) error {
	dc, err := a.cfg.Loopback()
	if err != nil {
		return err
	}
	format, err := a.cfg.SampleFormat()
	if err != nil {
		return err
	}

	if dc.MeterInterval > 0 && isTerminal(a.errOut) {
		dc.OnLevel = func(lvl timestats.Stats) {
			fmt.Fprintf(a.errOut, "\rinput %7.1f dBFS rms %7.1f dBFS peak", lvl.RMS_dB, lvl.Peak_dB)
		}
	}

	lb, err := device.NewLoopback(dc, a.log)
	if err != nil {
		return err
	}

	capture, err := lb.Run(ctx, float64(a.cfg.Analysis.TargetFrequency), a.cfg.Device.Amplitude)
	if dc.OnLevel != nil {
		fmt.Fprintln(a.errOut)
	}
	if err != nil {
		return fmt.Errorf("loopback: %w", err)
	}
	if capture.Dropped > 0 {
		a.log.Warn("recorder dropped blocks", logging.Fields{"dropped": capture.Dropped, "blocks": capture.Blocks})
	}

	src := a.cfg.Source()
	if err := wavio.WriteFile(src.Path(roundtrip.NameGenerated), capture.Generated, format); err != nil {
		return err
	}
	if err := wavio.WriteFile(src.Path(roundtrip.NameRecorded), capture.Recorded, format); err != nil {
		return err
	}
	a.log.Info("capture written", logging.Fields{
		"generated": src.Path(roundtrip.NameGenerated),
		"recorded":  src.Path(roundtrip.NameRecorded),
		"format":    format.String(),
	})

	return a.analyze(ctx, src)
}

// analyze runs the round-trip analysis on src, exports spectra when
// configured and renders the report.
func (a *app) analyze(ctx context.Context, src roundtrip.Source) error {
	rc, err := a.cfg.Roundtrip()
	if err != nil {
		return err
	}

	// The configured frequency becomes the sink's input for this run.
	a.sink.SetFrequency(rc.TargetFrequency)
	rep, err := a.sink.Process(ctx, src, rc, roundtrip.WithLogger(a.log))
	if err != nil {
		return err
	}

	if dir := a.cfg.Files.ExportDir; dir != "" {
		if err := a.export(dir, rep); err != nil {
			return err
		}
	}

	return Render(a.out, a.cfg.Output, rep)
}

func (a *app) export(dir string, rep roundtrip.Report) error {
	for _, r := range []roundtrip.SignalReport{rep.Generated, rep.Recorded} {
		if r.Skipped {
			continue
		}
		files, err := export.WriteSpectrum(dir, r.Name, r.Spectrum)
		if err != nil {
			return fmt.Errorf("export %s: %w", r.Name, err)
		}
		a.log.Info("spectrum exported", logging.Fields{"signal": r.Name, "csv": files.CSV, "svg": files.LogSVG})
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
