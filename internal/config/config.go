// Package config loads fidelity settings from defaults, an optional YAML
// file, FIDELITY_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cwbudde/algo-fidelity/dsp/dither"
	"github.com/cwbudde/algo-fidelity/dsp/spectrum"
	"github.com/cwbudde/algo-fidelity/internal/device"
	"github.com/cwbudde/algo-fidelity/internal/logging"
	"github.com/cwbudde/algo-fidelity/internal/wavio"
	"github.com/cwbudde/algo-fidelity/measure/roundtrip"
	"github.com/cwbudde/algo-fidelity/measure/thd"
)

// EnvPrefix prefixes environment overrides, e.g.
// FIDELITY_ANALYSIS_TARGET_FREQUENCY.
const EnvPrefix = "FIDELITY"

// ErrInvalid wraps validation failures.
var ErrInvalid = errors.New("config: invalid")

// Config is the complete application configuration.
type Config struct {
	LogLevel string         `mapstructure:"log_level" yaml:"log_level"`
	Output   string         `mapstructure:"output" yaml:"output"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Device   DeviceConfig   `mapstructure:"device" yaml:"device"`
	Files    FilesConfig    `mapstructure:"files" yaml:"files"`
}

// AnalysisConfig holds the round-trip analysis parameters.
type AnalysisConfig struct {
	CaptureSeconds  float64 `mapstructure:"capture_seconds" yaml:"capture_seconds"`
	SettleSeconds   float64 `mapstructure:"settle_seconds" yaml:"settle_seconds"`
	MarginSeconds   float64 `mapstructure:"margin_seconds" yaml:"margin_seconds"`
	TargetFrequency int     `mapstructure:"target_frequency" yaml:"target_frequency"`
	BandPolicy      string  `mapstructure:"band_policy" yaml:"band_policy"`
	Backend         string  `mapstructure:"backend" yaml:"backend"`
}

// DeviceConfig holds the loopback device settings. The capture length is
// analysis.capture_seconds.
type DeviceConfig struct {
	SampleRate      int                 `mapstructure:"sample_rate" yaml:"sample_rate"`
	Channels        int                 `mapstructure:"channels" yaml:"channels"`
	BlockSize       int                 `mapstructure:"block_size" yaml:"block_size"`
	SampleFormat    string              `mapstructure:"sample_format" yaml:"sample_format"`
	Dither          string              `mapstructure:"dither" yaml:"dither"`
	Amplitude       float64             `mapstructure:"amplitude" yaml:"amplitude"`
	Realtime        bool                `mapstructure:"realtime" yaml:"realtime"`
	MeterIntervalMS int                 `mapstructure:"meter_interval_ms" yaml:"meter_interval_ms"`
	Channel         device.ChannelModel `mapstructure:"channel" yaml:"channel"`
}

// FilesConfig names where signals and exports live.
type FilesConfig struct {
	Dir       string `mapstructure:"dir" yaml:"dir"`
	Generated string `mapstructure:"generated" yaml:"generated"`
	Recorded  string `mapstructure:"recorded" yaml:"recorded"`
	ExportDir string `mapstructure:"export_dir" yaml:"export_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Output:   "table",
		Analysis: AnalysisConfig{
			CaptureSeconds:  roundtrip.DefaultCaptureSeconds,
			SettleSeconds:   roundtrip.DefaultSettleSeconds,
			MarginSeconds:   roundtrip.DefaultMarginSeconds,
			TargetFrequency: roundtrip.DefaultTargetFrequency,
			BandPolicy:      thd.PolicyClamped.String(),
			Backend:         spectrum.BackendAuto,
		},
		Device: DeviceConfig{
			SampleRate:   48000,
			Channels:     1,
			BlockSize:    1024,
			SampleFormat: wavio.PCM16.String(),
			Dither:       dither.TypeTriangular.String(),
			Amplitude:    1,
			Channel: device.ChannelModel{
				GainDB:         -1,
				Harmonic3:      0.001,
				NoiseAmplitude: 1e-4,
				NoiseSeed:      1,
				LatencyFrames:  240,
			},
		},
		Files: FilesConfig{Dir: "."},
	}
}

// SetDefaults registers every key with its default so environment
// variables can override keys that no file sets.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("output", d.Output)

	v.SetDefault("analysis.capture_seconds", d.Analysis.CaptureSeconds)
	v.SetDefault("analysis.settle_seconds", d.Analysis.SettleSeconds)
	v.SetDefault("analysis.margin_seconds", d.Analysis.MarginSeconds)
	v.SetDefault("analysis.target_frequency", d.Analysis.TargetFrequency)
	v.SetDefault("analysis.band_policy", d.Analysis.BandPolicy)
	v.SetDefault("analysis.backend", d.Analysis.Backend)

	v.SetDefault("device.sample_rate", d.Device.SampleRate)
	v.SetDefault("device.channels", d.Device.Channels)
	v.SetDefault("device.block_size", d.Device.BlockSize)
	v.SetDefault("device.sample_format", d.Device.SampleFormat)
	v.SetDefault("device.dither", d.Device.Dither)
	v.SetDefault("device.amplitude", d.Device.Amplitude)
	v.SetDefault("device.realtime", d.Device.Realtime)
	v.SetDefault("device.meter_interval_ms", d.Device.MeterIntervalMS)
	v.SetDefault("device.channel.gain_db", d.Device.Channel.GainDB)
	v.SetDefault("device.channel.harmonic2", d.Device.Channel.Harmonic2)
	v.SetDefault("device.channel.harmonic3", d.Device.Channel.Harmonic3)
	v.SetDefault("device.channel.noise_amplitude", d.Device.Channel.NoiseAmplitude)
	v.SetDefault("device.channel.noise_seed", d.Device.Channel.NoiseSeed)
	v.SetDefault("device.channel.latency_frames", d.Device.Channel.LatencyFrames)

	v.SetDefault("files.dir", d.Files.Dir)
	v.SetDefault("files.generated", d.Files.Generated)
	v.SetDefault("files.recorded", d.Files.Recorded)
	v.SetDefault("files.export_dir", d.Files.ExportDir)
}

// Load reads configuration into v and decodes it. With an empty path the
// file fidelity.yaml is searched in the working directory and
// $HOME/.config/fidelity; a missing file is not an error then.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fidelity")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "fidelity"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	switch c.Output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("%w: output format %q (want table, json or yaml)", ErrInvalid, c.Output)
	}

	if _, err := c.Roundtrip(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.Loopback(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Device.Amplitude <= 0 || c.Device.Amplitude > 1 {
		return fmt.Errorf("%w: amplitude %g outside (0, 1]", ErrInvalid, c.Device.Amplitude)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() logging.Level {
	l, _ := logging.ParseLevel(c.LogLevel)
	return l
}

// Roundtrip converts the analysis section.
func (c *Config) Roundtrip() (roundtrip.Config, error) {
	policy, err := thd.ParsePolicy(c.Analysis.BandPolicy)
	if err != nil {
		return roundtrip.Config{}, err
	}

	tr, err := spectrum.NewTransformer(c.Analysis.Backend)
	if err != nil {
		return roundtrip.Config{}, err
	}

	rc := roundtrip.Config{
		CaptureSeconds:  c.Analysis.CaptureSeconds,
		SettleSeconds:   c.Analysis.SettleSeconds,
		MarginSeconds:   c.Analysis.MarginSeconds,
		TargetFrequency: c.Analysis.TargetFrequency,
		BandPolicy:      policy,
		Transformer:     tr,
	}
	return rc, rc.Validate()
}

// SampleFormat returns the on-disk sample format for written signals.
func (c *Config) SampleFormat() (wavio.SampleFormat, error) {
	return wavio.ParseSampleFormat(c.Device.SampleFormat)
}

// Loopback converts the device section.
func (c *Config) Loopback() (device.Config, error) {
	format, err := c.SampleFormat()
	if err != nil {
		return device.Config{}, err
	}

	dt, err := dither.ParseType(c.Device.Dither)
	if err != nil {
		return device.Config{}, err
	}

	// Float files are rendered from a 32-bit converter.
	depth := 16
	switch format {
	case wavio.PCM24:
		depth = 24
	case wavio.PCM32, wavio.Float32:
		depth = 32
	}

	dc := device.Config{
		SampleRate:    c.Device.SampleRate,
		Channels:      c.Device.Channels,
		BlockSize:     c.Device.BlockSize,
		BitDepth:      depth,
		Dither:        dt,
		Duration:      time.Duration(c.Analysis.CaptureSeconds * float64(time.Second)),
		Realtime:      c.Device.Realtime,
		MeterInterval: time.Duration(c.Device.MeterIntervalMS) * time.Millisecond,
		Channel:       c.Device.Channel,
	}
	return dc, dc.Validate()
}

// Source returns the WAV source described by the files section.
func (c *Config) Source() wavio.Source {
	src := wavio.Source{Dir: c.Files.Dir, Files: map[string]string{}}
	if c.Files.Generated != "" {
		src.Files[roundtrip.NameGenerated] = c.Files.Generated
	}
	if c.Files.Recorded != "" {
		src.Files[roundtrip.NameRecorded] = c.Files.Recorded
	}
	return src
}
