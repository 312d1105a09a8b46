// Package roundtrip analyzes an audio round trip: a generated reference
// tone and its recording after playback through a device.
//
// For each signal a zero-crossing bounded window is cut after the settle
// offset, transformed without a window function, and its THD+N measured
// around the dominant bin. The RMS gain of the recording relative to the
// reference is taken over both whole signals.
//
// Inputs come in through [Config] and already-decoded signals (or a
// [Source]); results come out as an owned [Report] and, optionally, through
// a [Sink] that is updated once per finished computation.
package roundtrip
