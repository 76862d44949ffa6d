// Package buffer provides the sample storage shared between pipeline
// goroutines: a reusable float32 scratch [Buffer] for the audio path and a
// lock-free single-producer/single-consumer [Ring] for handing audio to a
// pull-model output.
package buffer
