package core

import "math"

const defaultEpsilon = 1e-12

// ClampIndex limits i to the inclusive range [lo, hi].
func ClampIndex(i, lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}

	if i < lo {
		return lo
	}

	if i > hi {
		return hi
	}

	return i
}

// NearlyEqual reports whether a and b are equal within eps, either
// absolutely or relative to the larger magnitude.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DBToLinear converts dB to a voltage ratio (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// RatioToDB converts a voltage ratio to dB (20*log10 convention).
// Returns -Inf for zero, +Inf for an infinite ratio and NaN for negative
// or NaN input.
func RatioToDB(ratio float64) float64 {
	if math.IsNaN(ratio) || ratio < 0 {
		return math.NaN()
	}

	if ratio == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(ratio)
}
