package control

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cwbudde/filterbox/dsp/core"
	"github.com/cwbudde/filterbox/dsp/spectrum"
	"github.com/cwbudde/filterbox/stream"
)

const (
	// DefaultTick is the monitor refresh interval.
	DefaultTick = 25 * time.Millisecond
	// DefaultBands is the number of display bands.
	DefaultBands = 32

	// FloorDB is the lowest level a frame reports.
	FloorDB = -100.0
)

// Frame is one rendered view of the spectrum. Levels are in dB relative to
// a full-scale sinusoid.
type Frame struct {
	Bands   []float64
	PeakHz  float64
	PeakDB  float64
	Windows uint64
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithTick sets the refresh interval.
func WithTick(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.tick = d
		}
	}
}

// WithBands sets the number of display bands.
func WithBands(n int) MonitorOption {
	return func(m *Monitor) {
		if n > 0 {
			m.bands = n
		}
	}
}

// WithRenderer replaces the default text renderer.
func WithRenderer(render func(Frame)) MonitorOption {
	return func(m *Monitor) {
		if render != nil {
			m.render = render
		}
	}
}

// WithMonitorLogger sets the monitor logger.
func WithMonitorLogger(l *zap.Logger) MonitorOption {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// Monitor periodically reduces the analyzer snapshot to a Frame and hands
// it to a renderer. It only reads published snapshots.
type Monitor struct {
	session    *stream.Session
	analyzer   *spectrum.Analyzer
	sampleRate float64

	tick   time.Duration
	bands  int
	render func(Frame)
	logger *zap.Logger

	spec []float32 // Frame scratch
}

// NewMonitor renders to w with [TextRenderer] unless WithRenderer is given.
func NewMonitor(session *stream.Session, w io.Writer, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		session:    session,
		analyzer:   session.Analyzer(),
		sampleRate: session.Chain().SampleRate(),
		tick:       DefaultTick,
		bands:      DefaultBands,
		render:     TextRenderer(w),
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		if o != nil {
			o(m)
		}
	}
	return m
}

// Run renders a frame on every tick until ctx is done or the session
// finishes.
func (m *Monitor) Run(ctx context.Context) error {
	t := time.NewTicker(m.tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.session.Done():
			return nil
		case <-t.C:
			f, err := m.Frame()
			if err != nil {
				m.logger.Warn("spectrum frame skipped", zap.Error(err))
				continue
			}
			m.render(f)
		}
	}
}

// Frame builds a frame from the latest published spectrum. It is not safe
// for concurrent use.
func (m *Monitor) Frame() (Frame, error) {
	m.spec = m.analyzer.SnapshotInto(m.spec)

	bands, err := spectrum.Bands(m.spec[:m.analyzer.BinCount()], m.bands)
	if err != nil {
		return Frame{}, err
	}

	// A full-scale sinusoid peaks at N/4 in an |X|²/N spectrum.
	ref := float64(m.analyzer.BufferSize()) / 4
	for i, p := range bands {
		bands[i] = levelDB(p / ref)
	}

	k, p := spectrum.PeakBin(m.spec)

	return Frame{
		Bands:   bands,
		PeakHz:  m.analyzer.BinFrequency(k, m.sampleRate),
		PeakDB:  levelDB(float64(p) / ref),
		Windows: m.analyzer.Windows(),
	}, nil
}

func levelDB(power float64) float64 {
	db := core.LinearPowerToDB(power)
	if math.IsNaN(db) || db < FloorDB {
		return FloorDB
	}
	return db
}

var barGlyphs = []rune(" ▁▂▃▄▅▆▇█")

// Bars maps band levels in [FloorDB, 0] dB to block glyphs.
func Bars(bands []float64) string {
	var sb strings.Builder
	top := len(barGlyphs) - 1
	for _, db := range bands {
		x := core.Clamp((db-FloorDB)/-FloorDB, 0, 1)
		sb.WriteRune(barGlyphs[int(math.Round(x*float64(top)))])
	}
	return sb.String()
}

// TextRenderer redraws a single terminal line per frame.
func TextRenderer(w io.Writer) func(Frame) {
	return func(f Frame) {
		fmt.Fprintf(w, "\r[%s] peak %6.0f Hz %6.1f dB", Bars(f.Bands), f.PeakHz, f.PeakDB)
	}
}
