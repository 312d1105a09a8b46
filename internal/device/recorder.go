package device

import (
	"sync"
	"sync/atomic"

	timestats "github.com/cwbudde/algo-fidelity/stats/time"
)

// Recorder accumulates captured blocks. Writers may either block or give up
// when a reader holds the buffer; readers always get a consistent view.
type Recorder struct {
	mu      sync.Mutex
	samples []float64
	level   timestats.StreamingStats

	written atomic.Int64
	dropped atomic.Int64
}

// NewRecorder returns a recorder with room for capacity samples.
func NewRecorder(capacity int) *Recorder {
	return &Recorder{samples: make([]float64, 0, capacity)}
}

// Write appends block, waiting for the lock.
func (r *Recorder) Write(block []float64) {
	r.mu.Lock()
	r.append(block)
	r.mu.Unlock()
}

// TryWrite appends block only if the lock is free. A skipped block is
// counted as dropped and false is returned.
func (r *Recorder) TryWrite(block []float64) bool {
	if !r.mu.TryLock() {
		r.dropped.Add(1)
		return false
	}
	r.append(block)
	r.mu.Unlock()
	return true
}

func (r *Recorder) append(block []float64) {
	r.samples = append(r.samples, block...)
	r.level.Update(block)
	r.written.Add(1)
}

// Samples returns a copy of everything recorded so far.
func (r *Recorder) Samples() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.samples...)
}

// Level returns running statistics over the recorded samples.
func (r *Recorder) Level() timestats.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.level.Result()
}

// Blocks returns the number of blocks written.
func (r *Recorder) Blocks() int { return int(r.written.Load()) }

// Dropped returns the number of blocks skipped by TryWrite.
func (r *Recorder) Dropped() int { return int(r.dropped.Load()) }
