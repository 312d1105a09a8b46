package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-fidelity/dsp/spectrum"
	"github.com/cwbudde/algo-fidelity/internal/cpu"
)

// VersionInfo describes the build and host.
type VersionInfo struct {
	Version   string       `json:"version" yaml:"version"`
	GoVersion string       `json:"go_version" yaml:"go_version"`
	Platform  string       `json:"platform" yaml:"platform"`
	SIMD      string       `json:"simd" yaml:"simd"`
	CPU       cpu.Features `json:"cpu" yaml:"cpu"`
	Backends  []string     `json:"fft_backends" yaml:"fft_backends"`
}

func versionInfo() VersionInfo {
	v := Version
	if v == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v = bi.Main.Version
		}
	}

	f := cpu.Detect()
	return VersionInfo{
		Version:   v,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		SIMD:      f.Level().String(),
		CPU:       f,
		Backends:  spectrum.Backends(),
	}
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version, FFT backends and CPU features",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return RenderVersion(a.out, a.cfg.Output, versionInfo())
		},
	}
}
