// Package thd estimates total harmonic distortion plus noise (THD+N) from
// a spectrum whose dominant bin is already known.
//
// Energy is split into two bands. The tone band holds BandSize bins centred
// on the peak, where BandSize = 100 + target/200 for a target frequency in
// Hz. The total band is the peak search band [0, n/4). THD+N is the share of
// total RMS not accounted for by the tone band:
//
//	THD+N% = 100 * (sqrt(total) - sqrt(tone)) / sqrt(total)
//
// The tone band is clamped at bin 0. How its upper edge is treated is
// selected by [Policy].
package thd
