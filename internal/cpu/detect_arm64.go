//go:build arm64

package cpu

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// Advanced SIMD is mandatory on ARMv8; FMA is part of it.
func detect() Features {
	return Features{
		Architecture: runtime.GOARCH,
		HasNEON:      cpu.ARM64.HasASIMD,
		HasFMA:       cpu.ARM64.HasASIMD,
	}
}
