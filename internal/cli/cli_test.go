package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-fidelity/bindings"
	"github.com/cwbudde/algo-fidelity/dsp/core"
	"github.com/cwbudde/algo-fidelity/dsp/signal"
	"github.com/cwbudde/algo-fidelity/internal/wavio"
	"github.com/cwbudde/algo-fidelity/measure/roundtrip"
	"github.com/cwbudde/algo-fidelity/measure/thd"
)

// isolate runs the test in an empty directory with no user config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand(&out, &errOut)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeTone(t *testing.T, path string, amplitude float64) {
	t.Helper()
	gen := signal.NewGenerator(core.WithSampleRate(48000))
	sig, err := gen.Sine(1000, amplitude, 3*48000)
	require.NoError(t, err)
	require.NoError(t, wavio.WriteFile(path, sig, wavio.PCM16))
}

func TestRunWritesCaptureAndReports(t *testing.T) {
	dir := isolate(t)
	plots := filepath.Join(dir, "plots")

	out, err := execute(t, "run", "--capture", "3", "--dir", dir, "--export-dir", plots, "-o", "json")
	require.NoError(t, err)

	var rep reportView
	require.NoError(t, json.Unmarshal([]byte(out), &rep))

	assert.Equal(t, 1000, rep.TargetFrequency)
	require.NotNil(t, rep.Gain.DB)
	assert.InDelta(t, -1, *rep.Gain.DB, 0.1)

	for _, s := range []signalView{rep.Generated, rep.Recorded} {
		assert.False(t, s.Skipped, s.Name)
		require.NotNil(t, s.THDN, s.Name)
		assert.Less(t, *s.THDN, 1.0, s.Name)
		assert.InDelta(t, 1000, s.PeakFrequency, 1, s.Name)
	}

	for _, name := range []string{
		"generated.wav", "recorded.wav",
		filepath.Join("plots", "generated.csv"),
		filepath.Join("plots", "recorded_log.svg"),
		filepath.Join("plots", "recorded_linear.svg"),
	} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	snap := bindings.Default().Snapshot()
	assert.Equal(t, 1000, snap.Frequency)
	assert.InDelta(t, *rep.Gain.DB, snap.RMSGain, 1e-12)
	assert.InDelta(t, *rep.Recorded.THDN, snap.RecordedTHD, 1e-12)
}

func TestAnalyzeFilesTable(t *testing.T) {
	dir := isolate(t)
	gen := filepath.Join(dir, "a.wav")
	rec := filepath.Join(dir, "b.wav")
	writeTone(t, gen, 0.8)
	writeTone(t, rec, 0.4)

	out, err := execute(t, "analyze", gen, rec, "--capture", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "-6.02 dB")
	assert.Regexp(t, regexp.MustCompile(`Generated THD\+N\s+0\.\d{4} %`), out)
	assert.Regexp(t, regexp.MustCompile(`Recorded peak\s+1,?000 Hz`), out)
}

func TestAnalyzeDirYAML(t *testing.T) {
	dir := isolate(t)
	writeTone(t, filepath.Join(dir, "generated.wav"), 0.5)
	writeTone(t, filepath.Join(dir, "recorded.wav"), 0.5)

	out, err := execute(t, "analyze", "--capture", "3", "--backend", "gonum", "--policy", "legacy", "-o", "yaml")
	require.NoError(t, err)

	var rep reportView
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "gonum", rep.Backend)
	assert.Equal(t, "legacy", rep.BandPolicy)
	require.NotNil(t, rep.Gain.DB)
	assert.InDelta(t, 0, *rep.Gain.DB, 1e-9)
}

func TestAnalyzeErrors(t *testing.T) {
	isolate(t)

	_, err := execute(t, "analyze", "only-one.wav")
	require.Error(t, err)

	_, err = execute(t, "analyze", "missing-a.wav", "missing-b.wav")
	require.Error(t, err)

	_, err = execute(t, "analyze", "--policy", "wide")
	require.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "conf.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	_, err = execute(t, "config", "init", path)
	require.Error(t, err)
	_, err = execute(t, "config", "init", "--force", path)
	require.NoError(t, err)

	t.Setenv("FIDELITY_ANALYSIS_TARGET_FREQUENCY", "440")
	out, err = execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "target_frequency: 440")
}

func TestConfigInitDefaultPath(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, "config", "init")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "fidelity.yaml"))
	require.NoError(t, err)
}

func TestVersion(t *testing.T) {
	isolate(t)

	out, err := execute(t, "version", "-o", "json")
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info.Platform, runtime.GOARCH)
	assert.Equal(t, runtime.GOARCH, info.CPU.Architecture)
	assert.Contains(t, info.Backends, "algo-fft")

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fft backends")

	_, err = execute(t, "version", "-o", "xml")
	require.Error(t, err)
}

func TestRenderUndefinedValues(t *testing.T) {
	rep := roundtrip.Report{
		TargetFrequency: 1000,
		Backend:         "auto",
		BandPolicy:      thd.PolicyClamped.String(),
	}
	rep.Gain.DB = math.Inf(-1)
	rep.Generated.Name = roundtrip.NameGenerated
	rep.Generated.THD.THDN = math.NaN()
	rep.Recorded.Name = roundtrip.NameRecorded
	rep.Recorded.Skipped = true

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, rep))

	var view reportView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &view))
	assert.Nil(t, view.Gain.DB)
	assert.Equal(t, "-inf", view.Gain.State)
	assert.Nil(t, view.Generated.THDN)
	assert.Equal(t, "undefined", view.Generated.State)
	assert.Equal(t, "skipped", view.Recorded.State)

	buf.Reset()
	require.NoError(t, Render(&buf, FormatTable, rep))
	assert.Contains(t, buf.String(), "-inf dB")
	assert.Contains(t, buf.String(), "undefined")
	assert.Contains(t, buf.String(), "skipped")

	require.Error(t, Render(&buf, "xml", rep))
}
