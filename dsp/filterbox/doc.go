// Package filterbox provides the live-retunable low-pass/high-pass filter
// pair used on the real-time audio path.
//
// A [Stage] owns one second-order Butterworth section. Its coefficients are
// published through an atomic pointer: the audio goroutine loads them once
// per block (or per sample) without taking a lock, while control goroutines
// serialize retunes on a per-stage mutex and swap in a freshly built
// coefficient set. Delay registers belong to the audio goroutine and are
// never touched by a retune.
//
// A [Chain] runs the low-pass stage over a block, then the high-pass stage
// over the low-pass output. Cutoff requests on a chain are clamped to
// [minCutoff, MaxCutoff(sampleRate)] instead of being rejected.
package filterbox
