package stream

import "context"

// Block is one chunk of interleaved samples. A block is only valid for the
// duration of the call it is passed to.
type Block struct {
	Samples    []float32
	Channels   int
	SampleRate float64
}

// Frames returns the number of sample frames in the block.
func (b Block) Frames() int {
	if b.Channels <= 0 {
		return len(b.Samples)
	}
	return len(b.Samples) / b.Channels
}

// Source produces capture blocks of any size. ReadBlock returns io.EOF once
// the input is exhausted.
type Source interface {
	ReadBlock(ctx context.Context) (Block, error)
}

// Sink consumes filtered blocks. WriteBlock must not retain b.Samples.
type Sink interface {
	WriteBlock(b Block) error
}

// Processor is the real-time hook a callback backend drives. ProcessInto
// fills out from in and must not block.
type Processor interface {
	ProcessInto(out, in []float32)
}

// Backend is an audio device that captures and renders through its own
// callback goroutine.
type Backend interface {
	Name() string
	DeviceName() string
	Start(proc Processor) error
	Close() error
}
