// Package cpu reports the SIMD capabilities of the host. The vector kernels
// used by the fidelity pipeline pick their implementation themselves; this
// package only describes what they can choose from, for diagnostics.
package cpu

import (
	"strings"
	"sync"
)

// SIMDLevel names the widest vector extension available.
type SIMDLevel int

const (
	SIMDNone SIMDLevel = iota
	SIMDSSE2
	SIMDAVX
	SIMDAVX2
	SIMDAVX512
	SIMDNEON
)

func (s SIMDLevel) String() string {
	switch s {
	case SIMDNone:
		return "none"
	case SIMDSSE2:
		return "SSE2"
	case SIMDAVX:
		return "AVX"
	case SIMDAVX2:
		return "AVX2"
	case SIMDAVX512:
		return "AVX-512"
	case SIMDNEON:
		return "NEON"
	default:
		return "unknown"
	}
}

// Features describes the host CPU.
type Features struct {
	Architecture string `json:"architecture" yaml:"architecture"`

	HasSSE2   bool `json:"sse2" yaml:"sse2"`
	HasAVX    bool `json:"avx" yaml:"avx"`
	HasAVX2   bool `json:"avx2" yaml:"avx2"`
	HasAVX512 bool `json:"avx512" yaml:"avx512"`
	HasFMA    bool `json:"fma" yaml:"fma"`
	HasNEON   bool `json:"neon" yaml:"neon"`
}

// Level returns the widest supported extension.
func (f Features) Level() SIMDLevel {
	switch {
	case f.HasAVX512:
		return SIMDAVX512
	case f.HasAVX2:
		return SIMDAVX2
	case f.HasAVX:
		return SIMDAVX
	case f.HasSSE2:
		return SIMDSSE2
	case f.HasNEON:
		return SIMDNEON
	default:
		return SIMDNone
	}
}

// Extensions lists the supported extensions in ascending order.
func (f Features) Extensions() []string {
	var out []string
	add := func(ok bool, name string) {
		if ok {
			out = append(out, name)
		}
	}
	add(f.HasSSE2, "SSE2")
	add(f.HasAVX, "AVX")
	add(f.HasAVX2, "AVX2")
	add(f.HasAVX512, "AVX-512")
	add(f.HasFMA, "FMA")
	add(f.HasNEON, "NEON")
	return out
}

// String renders e.g. "amd64 (SSE2 AVX AVX2 FMA)".
func (f Features) String() string {
	ext := f.Extensions()
	if len(ext) == 0 {
		return f.Architecture + " (generic)"
	}
	return f.Architecture + " (" + strings.Join(ext, " ") + ")"
}

var (
	detectOnce sync.Once
	detected   Features

	forcedMu sync.RWMutex
	forced   *Features
)

// Detect returns the host features. Detection runs once.
func Detect() Features {
	forcedMu.RLock()
	f := forced
	forcedMu.RUnlock()
	if f != nil {
		return *f
	}

	detectOnce.Do(func() { detected = detect() })
	return detected
}

// SetForced makes Detect return f until Reset is called. Used by tests.
func SetForced(f Features) {
	forcedMu.Lock()
	defer forcedMu.Unlock()
	forced = &f
}

// Reset drops any forced features.
func Reset() {
	forcedMu.Lock()
	forced = nil
	forcedMu.Unlock()
}
