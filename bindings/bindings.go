// Package bindings exposes round-trip results as process-wide scalars for
// callers that poll values instead of consuming a report, such as a
// foreign-function wrapper or a UI loop.
//
// Every scalar is stored atomically. A reader sees either the previous or
// the new value, never a torn one. THD+N and peak frequency of a path are
// published together. Values are written once per finished computation.
//
// The target frequency is an input: Process reads it to size the THD+N
// tone band.
package bindings

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-fidelity/measure/roundtrip"
)

// DefaultFrequency is the target tone frequency in Hz before SetFrequency
// is called.
const DefaultFrequency = 1000

// pathResult is one spectral path's published pair. It is replaced as a
// whole so THD+N and peak frequency always belong to the same run.
type pathResult struct {
	thd  float64
	peak float32
}

var zeroPath = &pathResult{}

// Sink holds the published scalars. The zero value is not ready for use;
// call NewSink.
type Sink struct {
	frequency atomic.Int64
	rmsGain   atomic.Uint64 // float64 bits
	generated atomic.Pointer[pathResult]
	recorded  atomic.Pointer[pathResult]
}

// NewSink returns a sink with zeroed results and the default frequency.
func NewSink() *Sink {
	s := &Sink{}
	s.Reset()
	return s
}

// Reset zeroes all results and restores the default frequency.
func (s *Sink) Reset() {
	s.frequency.Store(DefaultFrequency)
	s.rmsGain.Store(math.Float64bits(0))
	s.generated.Store(zeroPath)
	s.recorded.Store(zeroPath)
}

// SetFrequency sets the target tone frequency in Hz.
func (s *Sink) SetFrequency(hz int) { s.frequency.Store(int64(hz)) }

// Frequency returns the target tone frequency in Hz.
func (s *Sink) Frequency() int { return int(s.frequency.Load()) }

// SetGenerated stores the generated signal's THD+N and peak frequency as
// one pair.
func (s *Sink) SetGenerated(thdPercent float64, peakHz float32) {
	s.generated.Store(&pathResult{thd: thdPercent, peak: peakHz})
}

// SetRecorded stores the recorded signal's THD+N and peak frequency as one
// pair.
func (s *Sink) SetRecorded(thdPercent float64, peakHz float32) {
	s.recorded.Store(&pathResult{thd: thdPercent, peak: peakHz})
}

// SetGain stores the RMS gain in dB. NaN and -Inf are stored as is.
func (s *Sink) SetGain(db float64) { s.rmsGain.Store(math.Float64bits(db)) }

// RMSGain returns the last published gain in dB.
func (s *Sink) RMSGain() float64 { return math.Float64frombits(s.rmsGain.Load()) }

// Generated returns the generated signal's THD+N and peak frequency from
// the same publication.
func (s *Sink) Generated() (thdPercent float64, peakHz float32) {
	p := s.generated.Load()
	return p.thd, p.peak
}

// Recorded returns the recorded signal's THD+N and peak frequency from the
// same publication.
func (s *Sink) Recorded() (thdPercent float64, peakHz float32) {
	p := s.recorded.Load()
	return p.thd, p.peak
}

// GeneratedTHD returns the generated signal's THD+N in percent.
func (s *Sink) GeneratedTHD() float64 { return s.generated.Load().thd }

// GeneratedPeakFrequency returns the generated signal's peak in Hz.
func (s *Sink) GeneratedPeakFrequency() float32 { return s.generated.Load().peak }

// RecordedTHD returns the recorded signal's THD+N in percent.
func (s *Sink) RecordedTHD() float64 { return s.recorded.Load().thd }

// RecordedPeakFrequency returns the recorded signal's peak in Hz.
func (s *Sink) RecordedPeakFrequency() float32 { return s.recorded.Load().peak }

// Process runs a round-trip analysis of src with the target frequency taken
// from the sink and publishes the results to it. cfg supplies the remaining
// parameters; its TargetFrequency is ignored.
func (s *Sink) Process(ctx context.Context, src roundtrip.Source, cfg roundtrip.Config,
	opts ...roundtrip.Option,
) (roundtrip.Report, error) {
	cfg.TargetFrequency = s.Frequency()
	opts = append(opts[:len(opts):len(opts)], roundtrip.WithSink(s))
	an, err := roundtrip.NewAnalyzer(cfg, opts...)
	if err != nil {
		return roundtrip.Report{}, err
	}
	return an.RunSource(ctx, src)
}

// Snapshot is a point-in-time copy of all scalars. Each THD+N and peak pair
// comes from one publication; the set as a whole may straddle an update.
type Snapshot struct {
	Frequency              int     `json:"frequency" yaml:"frequency"`
	RMSGain                float64 `json:"rms_gain" yaml:"rms_gain"`
	GeneratedTHD           float64 `json:"generated_thd" yaml:"generated_thd"`
	GeneratedPeakFrequency float32 `json:"generated_peak_frequency" yaml:"generated_peak_frequency"`
	RecordedTHD            float64 `json:"recorded_thd" yaml:"recorded_thd"`
	RecordedPeakFrequency  float32 `json:"recorded_peak_frequency" yaml:"recorded_peak_frequency"`
}

// Snapshot reads all scalars.
func (s *Sink) Snapshot() Snapshot {
	snap := Snapshot{
		Frequency: s.Frequency(),
		RMSGain:   s.RMSGain(),
	}
	snap.GeneratedTHD, snap.GeneratedPeakFrequency = s.Generated()
	snap.RecordedTHD, snap.RecordedPeakFrequency = s.Recorded()
	return snap
}

var global = NewSink()

// Default returns the process-wide sink used by the package functions.
func Default() *Sink { return global }

// SetFrequency sets the target frequency of the default sink.
func SetFrequency(hz int) { global.SetFrequency(hz) }

// Frequency returns the target frequency of the default sink.
func Frequency() int { return global.Frequency() }

// RMSGain returns the default sink's gain in dB.
func RMSGain() float64 { return global.RMSGain() }

// GeneratedTHD returns the default sink's generated THD+N in percent.
func GeneratedTHD() float64 { return global.GeneratedTHD() }

// GeneratedPeakFrequency returns the default sink's generated peak in Hz.
func GeneratedPeakFrequency() float32 { return global.GeneratedPeakFrequency() }

// RecordedTHD returns the default sink's recorded THD+N in percent.
func RecordedTHD() float64 { return global.RecordedTHD() }

// RecordedPeakFrequency returns the default sink's recorded peak in Hz.
func RecordedPeakFrequency() float32 { return global.RecordedPeakFrequency() }

// Process analyzes src at the default sink's frequency and publishes the
// results to the default sink.
func Process(ctx context.Context, src roundtrip.Source, cfg roundtrip.Config,
	opts ...roundtrip.Option,
) (roundtrip.Report, error) {
	return global.Process(ctx, src, cfg, opts...)
}
