// Package device simulates the playback and capture ends of an audio round
// trip without audio hardware.
//
// A Loopback runs two workers coordinated by a stop signal: the player
// renders the reference tone block by block and the capture worker passes
// each block through a ChannelModel (gain, harmonic distortion, noise,
// latency) into a Recorder. The analysis packages only ever see the
// finished signals.
package device
