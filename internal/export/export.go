// Package export writes spectra for offline inspection: a CSV table and
// two SVG plots (dB relative to the peak, and linear magnitude).
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cwbudde/algo-fidelity/dsp/spectrum"
)

// ErrEmptySpectrum is returned when there is nothing in the search band to
// export.
var ErrEmptySpectrum = errors.New("export: empty spectrum")

// Files lists the paths written by WriteSpectrum.
type Files struct {
	CSV       string
	LogSVG    string
	LinearSVG string
}

// point is one plotted bin.
type point struct {
	Freq, Value float64
}

// bins returns (frequency, magnitude) for the search band [0, n/4).
func bins(spec spectrum.Spectrum) []point {
	band := spec.SearchBand()
	mags := spectrum.Magnitude(band)
	out := make([]point, len(mags))
	for i, m := range mags {
		out[i] = point{Freq: spec.Frequency(i), Value: m}
	}
	return out
}

// WriteCSV writes one "frequency_hz,magnitude" row per search band bin.
func WriteCSV(w io.Writer, spec spectrum.Spectrum) error {
	pts := bins(spec)
	if len(pts) == 0 {
		return ErrEmptySpectrum
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"frequency_hz", "magnitude"}); err != nil {
		return err
	}
	for _, p := range pts {
		rec := []string{
			strconv.FormatFloat(p.Freq, 'g', -1, 64),
			strconv.FormatFloat(p.Value, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSpectrum writes <name>.csv, <name>_log.svg and <name>_linear.svg
// into dir, creating it if needed.
func WriteSpectrum(dir, name string, spec spectrum.Spectrum) (Files, error) {
	if spec.SearchLen() == 0 {
		return Files{}, ErrEmptySpectrum
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, err
	}

	files := Files{
		CSV:       filepath.Join(dir, name+".csv"),
		LogSVG:    filepath.Join(dir, name+"_log.svg"),
		LinearSVG: filepath.Join(dir, name+"_linear.svg"),
	}

	writers := []struct {
		path  string
		write func(io.Writer) error
	}{
		{files.CSV, func(w io.Writer) error { return WriteCSV(w, spec) }},
		{files.LogSVG, func(w io.Writer) error { return WriteSVG(w, spec, ScaleLog, name) }},
		{files.LinearSVG, func(w io.Writer) error { return WriteSVG(w, spec, ScaleLinear, name) }},
	}

	for _, wr := range writers {
		if err := writeFile(wr.path, wr.write); err != nil {
			return files, fmt.Errorf("%s: %w", wr.path, err)
		}
	}
	return files, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// dbFloor bounds the log plot where bins are exactly zero.
const dbFloor = -200.0

func toDB(mag, ref float64) float64 {
	if mag <= 0 || ref <= 0 {
		return dbFloor
	}
	return math.Max(20*mathLog10(mag/ref), dbFloor)
}
