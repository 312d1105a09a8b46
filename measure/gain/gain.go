// Package gain measures the RMS voltage gain between a reference signal and
// its recorded counterpart.
//
// RMS is taken over the whole, unwindowed signal. Gain is expressed in dB
// as 20*log10(measured/reference).
package gain

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-fidelity/dsp/core"
	"github.com/cwbudde/algo-fidelity/dsp/signal"
	timestats "github.com/cwbudde/algo-fidelity/stats/time"
)

// Errors returned by gain measurement.
var (
	ErrEmptySignal     = errors.New("gain: empty signal")
	ErrDegenerateRatio = errors.New("gain: degenerate RMS ratio")
)

// Result holds a gain measurement.
type Result struct {
	ReferenceRMS float64
	MeasuredRMS  float64
	DB           float64
}

// RMS returns the root-mean-square of the real part of sig.
func RMS(sig signal.Signal) (float64, error) {
	if sig.Len() == 0 {
		return 0, ErrEmptySignal
	}

	return timestats.RMS(sig.Real()), nil
}

// DB converts an RMS pair to a gain in dB.
//
// A zero reference yields NaN and a silent measurement yields -Inf; both are
// returned together with ErrDegenerateRatio so callers can report the value
// as undefined instead of as a number.
func DB(ref, measured float64) (float64, error) {
	switch {
	case ref < 0 || measured < 0 || math.IsNaN(ref) || math.IsNaN(measured):
		return math.NaN(), fmt.Errorf("%w: ref=%g measured=%g", ErrDegenerateRatio, ref, measured)
	case ref == 0:
		return math.NaN(), fmt.Errorf("%w: zero reference RMS", ErrDegenerateRatio)
	case measured == 0:
		return math.Inf(-1), fmt.Errorf("%w: silent measurement", ErrDegenerateRatio)
	}

	return core.RatioToDB(measured / ref), nil
}

// Compare measures both signals and their gain. Signals stored at
// different scales are normalized first so the ratio stays meaningful. When
// the ratio is degenerate the populated Result is returned alongside the
// error.
func Compare(ref, measured signal.Signal) (Result, error) {
	if ref.Format != measured.Format || ref.BitDepth != measured.BitDepth {
		ref, measured = ref.Normalized(), measured.Normalized()
	}

	refRMS, err := RMS(ref)
	if err != nil {
		return Result{}, fmt.Errorf("reference: %w", err)
	}

	measRMS, err := RMS(measured)
	if err != nil {
		return Result{}, fmt.Errorf("measured: %w", err)
	}

	db, err := DB(refRMS, measRMS)
	return Result{ReferenceRMS: refRMS, MeasuredRMS: measRMS, DB: db}, err
}
