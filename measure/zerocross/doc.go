// Package zerocross trims a captured signal to an analysis window whose
// boundaries sit on sign changes of the waveform.
//
// A DFT treats its input as one period of an infinitely repeating signal.
// Cutting a tone mid-cycle puts a step at the wrap-around point and smears
// energy across the whole spectrum. Snapping both ends to zero crossings
// keeps the repeated segment close to phase-continuous.
//
// # Usage
//
//	offset, _ := zerocross.SettleOffset(48000, 0.5)
//	length, _ := zerocross.NominalLength(48000, 5, 1.5)
//	w, err := zerocross.Extract(sig, offset, length)
package zerocross
