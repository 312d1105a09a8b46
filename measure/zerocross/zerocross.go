package zerocross

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-fidelity/dsp/signal"
)

// Errors returned by window extraction.
var (
	ErrOutOfRange       = errors.New("zerocross: window offsets exceed signal length")
	ErrDegenerateWindow = errors.New("zerocross: window start is past window end")
	ErrInvalidDuration  = errors.New("zerocross: duration must be positive")
)

// Window is a contiguous run of a signal bounded by two sign changes.
type Window struct {
	Start  int
	End    int
	Signal signal.Signal
}

// Len returns the number of samples in the window.
func (w Window) Len() int { return w.End - w.Start }

// Extract returns the window starting at the first sign change at or after
// offset and ending at the first sign change at or after offset+length.
//
// A sample counts as positive when its real part is >= 0. Each scan compares
// against the sign at its own starting index and runs to the end of the
// signal when no change is found.
func Extract(sig signal.Signal, offset, length int) (Window, error) {
	n := sig.Len()
	if offset < 0 || length < 0 || offset >= n || offset+length >= n {
		return Window{}, fmt.Errorf("%w: offset %d, length %d, signal %d samples",
			ErrOutOfRange, offset, length, n)
	}

	start := nextCrossing(sig.Samples, offset)
	end := nextCrossing(sig.Samples, offset+length)
	if start > end {
		return Window{}, fmt.Errorf("%w: start %d, end %d", ErrDegenerateWindow, start, end)
	}

	return Window{Start: start, End: end, Signal: sig.Slice(start, end)}, nil
}

// nextCrossing returns the first index i >= from whose sign differs from
// samples[from], or len(samples) if there is none.
func nextCrossing(samples []complex128, from int) int {
	positive := real(samples[from]) >= 0
	i := from
	for i < len(samples) && (real(samples[i]) >= 0) == positive {
		i++
	}
	return i
}

// SettleOffset converts the settle time skipped at the start of a capture
// into a sample offset.
func SettleOffset(sampleRate int, seconds float64) (int, error) {
	if sampleRate <= 0 || seconds < 0 {
		return 0, fmt.Errorf("%w: %d Hz, %.3f s", ErrInvalidDuration, sampleRate, seconds)
	}
	return int(math.Floor(seconds * float64(sampleRate))), nil
}

// NominalLength returns the nominal analysis length in samples: the capture
// duration minus the settle and tail margin.
func NominalLength(sampleRate int, captureSeconds, marginSeconds float64) (int, error) {
	usable := captureSeconds - marginSeconds
	if sampleRate <= 0 || usable <= 0 {
		return 0, fmt.Errorf("%w: capture %.3f s minus margin %.3f s at %d Hz",
			ErrInvalidDuration, captureSeconds, marginSeconds, sampleRate)
	}
	return int(math.Floor(usable * float64(sampleRate))), nil
}
