package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/cwbudde/filterbox/control"
	"github.com/cwbudde/filterbox/dsp/filterbox"
	"github.com/cwbudde/filterbox/dsp/spectrum"
	"github.com/cwbudde/filterbox/internal/config"
	"github.com/cwbudde/filterbox/internal/logging"
	"github.com/cwbudde/filterbox/stream"
	"github.com/cwbudde/filterbox/stream/mp3source"
	"github.com/cwbudde/filterbox/stream/otosink"
	"github.com/cwbudde/filterbox/stream/portaudio"
)

const prompt = "> "

func newRunCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [input.mp3]",
		Short: "Filter audio and display its spectrum",
		Long: `Run the pipeline. Without an argument the default capture device is
filtered straight to the default output device. With an mp3 argument the
file is decoded and played through the configured output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.v.Set("backend", config.BackendFile)
				opts.v.Set("input", args[0])
			}

			cfg, err := config.Load(opts.v, opts.configFile)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.LogLevel, isTerminal(os.Stderr))
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, logger, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String("backend", config.BackendPortAudio, "capture backend (portaudio, file)")
	f.String("input", "", "mp3 file for the file backend")
	f.String("output", config.OutputPortAudio, "output for the file backend (portaudio, oto)")
	f.Float64("sample-rate", 44100, "device sample rate in Hz")
	f.Int("channels", 2, "device channel count")
	f.Int("frames-per-buffer", 1024, "frames per device buffer or file block")
	f.Bool("realtime", false, "pace the file source to real time")
	f.Int("bins", 512, "published spectrum bins")
	f.Int("buffer-size", 1024, "FFT window length in samples")
	f.String("window", "rectangular", "analysis window (rectangular, hann, hamming, blackman)")
	f.Bool("pre-filter", false, "analyze the input instead of the filtered output")
	f.Float64("low-pass", 0, "initial low-pass cutoff in Hz (0 opens the band)")
	f.Float64("high-pass", 0, "initial high-pass cutoff in Hz (0 opens the band)")
	f.Float64("min-cutoff", filterbox.DefaultMinCutoff, "lowest accepted cutoff in Hz")
	f.Bool("monitor", true, "draw the spectrum")
	f.Duration("tick", control.DefaultTick, "spectrum redraw interval")
	f.Int("bands", control.DefaultBands, "spectrum display bars")

	return cmd
}

// run builds the pipeline described by cfg and blocks until the session
// finishes, a quit command arrives or ctx is done.
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, in io.Reader, out io.Writer) error {
	switch cfg.Backend {
	case config.BackendFile:
		return runFile(ctx, cfg, logger, in, out)
	default:
		return runDevice(ctx, cfg, logger, in, out)
	}
}

func runDevice(ctx context.Context, cfg *config.Config, logger *zap.Logger, in io.Reader, out io.Writer) (err error) {
	session, err := newSession(cfg, cfg.SampleRate, logger)
	if err != nil {
		return err
	}

	backend, err := portaudio.Open(portaudio.Config{
		SampleRate:      cfg.SampleRate,
		Channels:        cfg.Channels,
		FramesPerBuffer: cfg.FramesPerBuffer,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		session.Finish()
		err = errors.Join(err, backend.Close())
	}()

	logger.Info("device backend ready", zap.String("device", backend.DeviceName()))

	if err := session.Start(); err != nil {
		return err
	}
	if err := backend.Start(session); err != nil {
		return err
	}

	return serve(ctx, session, cfg, logger, in, out, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
		case <-session.Done():
		}
		return nil
	})
}

func runFile(ctx context.Context, cfg *config.Config, logger *zap.Logger, in io.Reader, out io.Writer) error {
	var srcOpts []mp3source.Option
	if cfg.Realtime {
		srcOpts = append(srcOpts, mp3source.WithRealtime())
	}

	src, err := mp3source.Open(cfg.Input, cfg.FramesPerBuffer, srcOpts...)
	if err != nil {
		return err
	}

	session, err := newSession(cfg, src.SampleRate(), logger)
	if err != nil {
		return errors.Join(err, src.Close())
	}

	sink, err := openSink(cfg, src.SampleRate(), logger)
	if err != nil {
		return errors.Join(err, src.Close())
	}

	logger.Info("file source ready",
		zap.String("input", cfg.Input),
		zap.String("output", cfg.Output),
		zap.Float64("sample_rate", src.SampleRate()))

	// Run closes src and sink on every path.
	return serve(ctx, session, cfg, logger, in, out, func(ctx context.Context) error {
		return session.Run(ctx, src, sink)
	})
}

func openSink(cfg *config.Config, sampleRate float64, logger *zap.Logger) (stream.Sink, error) {
	if cfg.Output == config.OutputOto {
		return otosink.New(int(sampleRate), mp3source.Channels, otosink.WithLogger(logger))
	}

	return portaudio.OpenSink(portaudio.Config{
		SampleRate:      sampleRate,
		Channels:        mp3source.Channels,
		FramesPerBuffer: cfg.FramesPerBuffer,
		Logger:          logger,
	})
}

func newChain(cfg *config.Config, sampleRate float64) (*filterbox.Chain, error) {
	return filterbox.NewChain(sampleRate,
		filterbox.WithMinCutoff(cfg.Filter.MinCutoff),
		filterbox.WithLowPassCutoff(cfg.Filter.LowPass),
		filterbox.WithHighPassCutoff(cfg.Filter.HighPass),
	)
}

func newSession(cfg *config.Config, sampleRate float64, logger *zap.Logger) (*stream.Session, error) {
	chain, err := newChain(cfg, sampleRate)
	if err != nil {
		return nil, err
	}

	analyzer, err := spectrum.NewAnalyzer(cfg.Spectrum.Bins, cfg.Spectrum.BufferSize,
		spectrum.WithWindow(cfg.WindowType()))
	if err != nil {
		return nil, err
	}

	opts := []stream.SessionOption{stream.WithLogger(logger)}
	if cfg.Spectrum.PreFilter {
		opts = append(opts, stream.WithAnalyzePreFilter())
	}

	return stream.NewSession(chain, analyzer, opts...)
}

// serve runs audio alongside the controller and, when enabled, the
// monitor. A signal on ctx finishes the session; every goroutine returns
// once it has.
func serve(
	ctx context.Context,
	session *stream.Session,
	cfg *config.Config,
	logger *zap.Logger,
	in io.Reader,
	out io.Writer,
	audio func(context.Context) error,
) error {
	if err := session.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case <-gctx.Done():
			session.Finish()
		case <-session.Done():
		}
		return nil
	})

	g.Go(func() error {
		defer session.Finish()
		if err := audio(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	ctrlOpts := []control.ControllerOption{control.WithControllerLogger(logger)}
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		ctrlOpts = append(ctrlOpts, control.WithPrompt(prompt))
	}
	ctrl := control.NewController(session, ctrlOpts...)
	g.Go(func() error {
		return ctrl.Run(gctx, in, out)
	})

	if cfg.Monitor.Enabled {
		mon := control.NewMonitor(session, out,
			control.WithTick(cfg.Monitor.Tick),
			control.WithBands(cfg.Monitor.Bands),
			control.WithMonitorLogger(logger))
		g.Go(func() error {
			return mon.Run(gctx)
		})
	}

	err := g.Wait()
	if cfg.Monitor.Enabled {
		fmt.Fprintln(out)
	}

	logger.Info("pipeline stopped",
		zap.Uint64("blocks", session.Blocks()),
		zap.Uint64("windows", session.Analyzer().Windows()),
		zap.Uint64("sanitized_samples", session.Sanitized()))

	return err
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
