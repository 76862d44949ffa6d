package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by in-memory collaborators used after Close.
var ErrClosed = errors.New("stream: closed")

// SliceSource serves a fixed sample slice as consecutive blocks.
type SliceSource struct {
	samples    []float32
	blockSize  int
	channels   int
	sampleRate float64

	pos    int
	closed atomic.Bool
}

// NewSliceSource returns a source that yields samples in blocks of
// blockSize (the last block may be shorter). A non-positive blockSize
// serves everything in one block.
func NewSliceSource(samples []float32, blockSize, channels int, sampleRate float64) *SliceSource {
	if blockSize <= 0 {
		blockSize = max(len(samples), 1)
	}
	if channels <= 0 {
		channels = 1
	}

	return &SliceSource{
		samples:    samples,
		blockSize:  blockSize,
		channels:   channels,
		sampleRate: sampleRate,
	}
}

// ReadBlock returns the next block, or io.EOF when the slice is exhausted.
func (s *SliceSource) ReadBlock(ctx context.Context) (Block, error) {
	if err := ctx.Err(); err != nil {
		return Block{}, err
	}
	if s.closed.Load() {
		return Block{}, ErrClosed
	}
	if s.pos >= len(s.samples) {
		return Block{}, io.EOF
	}

	end := min(s.pos+s.blockSize, len(s.samples))
	b := Block{
		Samples:    s.samples[s.pos:end],
		Channels:   s.channels,
		SampleRate: s.sampleRate,
	}
	s.pos = end

	return b, nil
}

// Close marks the source closed.
func (s *SliceSource) Close() error {
	s.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (s *SliceSource) Closed() bool { return s.closed.Load() }

// CollectSink keeps a copy of everything written to it.
type CollectSink struct {
	mu      sync.Mutex
	samples []float32
	blocks  int
	closed  bool
}

// WriteBlock appends a copy of b.Samples.
func (c *CollectSink) WriteBlock(b Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.samples = append(c.samples, b.Samples...)
	c.blocks++

	return nil
}

// Samples returns a copy of the collected samples.
func (c *CollectSink) Samples() []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]float32(nil), c.samples...)
}

// Blocks returns how many blocks were written.
func (c *CollectSink) Blocks() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.blocks
}

// Close rejects further writes.
func (c *CollectSink) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *CollectSink) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// DiscardSink drops every block and counts the samples.
type DiscardSink struct {
	samples atomic.Uint64
}

// WriteBlock counts b and discards it.
func (d *DiscardSink) WriteBlock(b Block) error {
	d.samples.Add(uint64(len(b.Samples)))
	return nil
}

// Samples returns the number of samples discarded so far.
func (d *DiscardSink) Samples() uint64 { return d.samples.Load() }
