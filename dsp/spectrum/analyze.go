package spectrum

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-fidelity/dsp/signal"
)

// ErrNoPeak reports that the search band is empty, which happens for
// windows shorter than four samples. Callers treat it as "analysis skipped".
var ErrNoPeak = errors.New("spectrum: no peak in search band")

// Spectrum is the full-length DFT of an analysis window.
type Spectrum struct {
	Bins     []complex128
	BinWidth float64 // Hz per bin
}

// Len returns the number of bins, equal to the window length.
func (s Spectrum) Len() int { return len(s.Bins) }

// SearchLen returns the size of the low-frequency band [0, Len/4) used for
// peak search and total energy.
func (s Spectrum) SearchLen() int { return len(s.Bins) / 4 }

// Frequency returns the centre frequency of bin in Hz.
func (s Spectrum) Frequency(bin int) float64 {
	return float64(bin) * s.BinWidth
}

// SearchBand returns the bins of the search band.
func (s Spectrum) SearchBand() []complex128 {
	return s.Bins[:s.SearchLen()]
}

// Peak is the dominant bin within the search band.
type Peak struct {
	Bin       int
	Magnitude float64
}

// Frequency converts the peak bin to Hz.
func (p Peak) Frequency(binWidth float64) float64 {
	return float64(p.Bin) * binWidth
}

// BinWidth returns the Hz spacing of an n-point spectrum of interleaved
// data. All channels count towards the rate because they are transformed as
// one stream.
func BinWidth(sampleRate, channels, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sampleRate) * float64(channels) / float64(n)
}

// Analyze transforms the window with t and returns its spectrum and the
// dominant bin. No window function is applied. ErrNoPeak is returned before
// any transform when the search band would be empty.
func Analyze(t Transformer, sig signal.Signal) (Spectrum, Peak, error) {
	n := sig.Len()
	if n/4 == 0 {
		return Spectrum{}, Peak{}, fmt.Errorf("%w: window of %d samples", ErrNoPeak, n)
	}

	bins := make([]complex128, n)
	if err := t.Forward(bins, sig.Samples); err != nil {
		return Spectrum{}, Peak{}, fmt.Errorf("%s transform: %w", t.Name(), err)
	}

	spec := Spectrum{
		Bins:     bins,
		BinWidth: BinWidth(sig.SampleRate, sig.Channels, n),
	}

	peak, err := FindPeak(bins)
	if err != nil {
		return spec, Peak{}, err
	}

	return spec, peak, nil
}

// FindPeak returns the bin of largest magnitude in [0, len(bins)/4).
// Ties resolve to the lowest bin.
func FindPeak(bins []complex128) (Peak, error) {
	limit := len(bins) / 4
	if limit == 0 {
		return Peak{}, ErrNoPeak
	}

	mags := Magnitude(bins[:limit])
	best := Peak{Bin: 0, Magnitude: mags[0]}
	for i := 1; i < limit; i++ {
		if mags[i] > best.Magnitude {
			best = Peak{Bin: i, Magnitude: mags[i]}
		}
	}

	return best, nil
}
