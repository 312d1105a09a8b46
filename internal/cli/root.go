// Package cli implements the fidelity command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-fidelity/bindings"
	"github.com/cwbudde/algo-fidelity/internal/config"
	"github.com/cwbudde/algo-fidelity/internal/logging"
)

// Version is set at link time with -ldflags "-X ...cli.Version=v1.2.3".
var Version = "dev"

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":   "log_level",
	"output":      "output",
	"frequency":   "analysis.target_frequency",
	"capture":     "analysis.capture_seconds",
	"policy":      "analysis.band_policy",
	"backend":     "analysis.backend",
	"dir":         "files.dir",
	"export-dir":  "files.export_dir",
	"sample-rate": "device.sample_rate",
	"format":      "device.sample_format",
	"dither":      "device.dither",
	"amplitude":   "device.amplitude",
	"realtime":    "device.realtime",
	"gain-db":     "device.channel.gain_db",
	"noise":       "device.channel.noise_amplitude",
	"h2":          "device.channel.harmonic2",
	"h3":          "device.channel.harmonic3",
	"latency":     "device.channel.latency_frames",
	"meter":       "device.meter_interval_ms",
}

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     logging.Logger
	sink    *bindings.Sink
	out     io.Writer
	errOut  io.Writer
}

// NewRootCommand builds the command tree. Reports go to out, logs to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		log:    logging.NewNop(),
		sink:   bindings.Default(),
		out:    out,
		errOut: errOut,
	}
	d := config.Default()

	root := &cobra.Command{
		Use:   "fidelity",
		Short: "Measure gain and THD+N of an audio round trip",
		Long: `fidelity plays a sine tone through an audio loop, records it and compares
the generated and recorded signals: RMS gain in dB, and THD+N and peak
frequency of each signal.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.load(cmd) },
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./fidelity.yaml or $HOME/.config/fidelity/fidelity.yaml)")
	pf.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	pf.StringP("output", "o", d.Output, "output format (table, json, yaml)")

	root.AddCommand(
		newRunCommand(a),
		newAnalyzeCommand(a),
		newConfigCommand(a),
		newVersionCommand(a),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string, out, errOut io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(out, errOut)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 1
	}
	return 0
}

// load binds the command's flags and reads the configuration.
func (a *app) load(cmd *cobra.Command) error {
	if err := bindFlags(cmd, a.v); err != nil {
		return err
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(a.errOut, cfg.Level())
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug("configuration loaded", logging.Fields{"file": used})
	}
	return nil
}

// bindFlags binds every known flag of cmd to its configuration key. Only
// flags set on the command line take precedence over file and environment.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}
	})
	return lastErr
}

func addAnalysisFlags(f *pflag.FlagSet, d *config.Config) {
	f.Int("frequency", d.Analysis.TargetFrequency, "target tone frequency in Hz")
	f.Float64("capture", d.Analysis.CaptureSeconds, "capture length in seconds")
	f.String("policy", d.Analysis.BandPolicy, "tone band bound policy (clamped, legacy)")
	f.String("backend", d.Analysis.Backend, "FFT backend (auto, algo-fft, gonum, go-dsp, dft)")
	f.String("dir", d.Files.Dir, "directory holding generated.wav and recorded.wav")
	f.String("export-dir", d.Files.ExportDir, "write spectrum CSV and SVG plots to this directory")
}
