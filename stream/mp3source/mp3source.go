// Package mp3source serves a decoded MP3 file as a capture source.
package mp3source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hajimehoshi/go-mp3"

	"github.com/cwbudde/filterbox/stream"
	"github.com/cwbudde/filterbox/stream/pcm"
)

// Channels is the channel count of every decoded stream; go-mp3 always
// produces interleaved stereo.
const Channels = 2

const bytesPerFrame = Channels * 2

// Option configures a Source.
type Option func(*Source)

// WithRealtime paces ReadBlock to the stream's sample rate, so the file
// behaves like a live capture device.
func WithRealtime() Option {
	return func(s *Source) { s.realtime = true }
}

// Source decodes MP3 data into fixed-size blocks.
type Source struct {
	pcm    io.Reader
	closer io.Closer

	raw     []byte
	samples []float32
	rate    int

	realtime bool
	start    time.Time
	frames   int64
}

var _ stream.Source = (*Source)(nil)

// Open decodes the file at path. Each block holds framesPerBlock stereo
// frames (the last one may be shorter).
func Open(path string, framesPerBlock int, opts ...Option) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mp3source: %w", err)
	}

	s, err := New(f, framesPerBlock, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	s.closer = f

	return s, nil
}

// New decodes MP3 data from r.
func New(r io.Reader, framesPerBlock int, opts ...Option) (*Source, error) {
	if framesPerBlock <= 0 {
		return nil, fmt.Errorf("mp3source: frames per block must be > 0: %d", framesPerBlock)
	}

	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3source: decode header: %w", err)
	}

	return newSource(dec, dec.SampleRate(), framesPerBlock, opts...), nil
}

func newSource(r io.Reader, sampleRate, framesPerBlock int, opts ...Option) *Source {
	s := &Source{
		pcm:     r,
		raw:     make([]byte, framesPerBlock*bytesPerFrame),
		samples: make([]float32, framesPerBlock*Channels),
		rate:    sampleRate,
	}
	for _, o := range opts {
		if o != nil {
			o(s)
		}
	}
	return s
}

// SampleRate returns the decoded sample rate in Hz.
func (s *Source) SampleRate() float64 { return float64(s.rate) }

// ReadBlock returns the next decoded block or io.EOF. The block's samples
// are reused by the next call.
func (s *Source) ReadBlock(ctx context.Context) (stream.Block, error) {
	if err := ctx.Err(); err != nil {
		return stream.Block{}, err
	}

	n, err := io.ReadFull(s.pcm, s.raw)
	switch {
	case n == 0 && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)):
		return stream.Block{}, io.EOF
	case err != nil && !errors.Is(err, io.ErrUnexpectedEOF):
		return stream.Block{}, fmt.Errorf("mp3source: read: %w", err)
	}

	count := pcm.DecodeInt16LE(s.samples, s.raw[:n-n%bytesPerFrame])
	if count == 0 {
		return stream.Block{}, io.EOF
	}

	if s.realtime {
		if err := s.pace(ctx, count/Channels); err != nil {
			return stream.Block{}, err
		}
	}

	return stream.Block{
		Samples:    s.samples[:count],
		Channels:   Channels,
		SampleRate: float64(s.rate),
	}, nil
}

// pace waits until the block starting at the current frame is due.
func (s *Source) pace(ctx context.Context, frames int) error {
	if s.start.IsZero() {
		s.start = time.Now()
	}

	due := s.start.Add(time.Duration(float64(s.frames) / float64(s.rate) * float64(time.Second)))
	s.frames += int64(frames)

	wait := time.Until(due)
	if wait <= 0 {
		return nil
	}

	t := time.NewTimer(wait)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the underlying file, if any.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}
