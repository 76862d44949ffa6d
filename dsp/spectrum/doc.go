// Package spectrum turns a sample stream into power spectra.
//
// An [Analyzer] accumulates samples into fixed-size windows, transforms each
// full window with algo-fft and publishes |X[k]|²/N into a reused slot.
// Any goroutine may copy the latest spectrum out with Snapshot or
// SnapshotInto; Ingest never allocates.
package spectrum
