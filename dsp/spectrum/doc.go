// Package spectrum computes the forward DFT of an analysis window and
// locates its dominant frequency bin.
//
// FFT backends are pluggable through [Transformer]. The default "auto"
// backend uses algo-fft for power-of-two lengths and the Bluestein
// transform from go-dsp for every other length, since zero-crossing
// windows almost never have a convenient size. A gonum backend and a naive
// O(n^2) DFT are available for cross-checking.
//
// Bin k of an n-point spectrum maps to k * SampleRate * Channels / n Hz.
// Peak search is limited to the lowest quarter of the bins, which keeps it
// clear of the mirrored upper half and the region near Nyquist.
package spectrum
