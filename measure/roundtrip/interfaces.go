package roundtrip

import (
	"context"

	"github.com/cwbudde/algo-fidelity/dsp/signal"
)

// Signal names used with a Source.
const (
	NameGenerated = "generated"
	NameRecorded  = "recorded"
)

// Source supplies decoded signals by name.
type Source interface {
	Load(ctx context.Context, name string) (signal.Signal, error)
}

// Sink receives results as soon as each computation finishes. Each method
// has a single writer per run; implementations only need torn-write-free
// stores.
type Sink interface {
	SetGenerated(thdPercent float64, peakHz float32)
	SetRecorded(thdPercent float64, peakHz float32)
	SetGain(db float64)
}

type nopSink struct{}

func (nopSink) SetGenerated(float64, float32) {}
func (nopSink) SetRecorded(float64, float32)  {}
func (nopSink) SetGain(float64)               {}
