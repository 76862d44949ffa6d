package main

import (
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"

	"github.com/cwbudde/filterbox/dsp/filterbox"
	"github.com/cwbudde/filterbox/internal/config"
)

func newResponseCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "response",
		Short: "Print the magnitude response of the configured filter chain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.v, opts.configFile)
			if err != nil {
				return err
			}

			points, err := cmd.Flags().GetInt("points")
			if err != nil {
				return err
			}
			if points < 2 {
				return fmt.Errorf("points must be >= 2: %d", points)
			}

			chain, err := newChain(cfg, cfg.SampleRate)
			if err != nil {
				return err
			}

			return writeResponse(cmd.OutOrStdout(), chain, points)
		},
	}

	f := cmd.Flags()
	f.Float64("sample-rate", 44100, "sample rate in Hz")
	f.Float64("low-pass", 0, "low-pass cutoff in Hz (0 opens the band)")
	f.Float64("high-pass", 0, "high-pass cutoff in Hz (0 opens the band)")
	f.Float64("min-cutoff", filterbox.DefaultMinCutoff, "lowest accepted cutoff in Hz")
	f.Int("points", 16, "log-spaced frequencies between the cutoff limits")

	return cmd
}

// writeResponse tabulates the chain gain at points log-spaced frequencies
// from the clamp floor to the clamp ceiling.
func writeResponse(w io.Writer, chain *filterbox.Chain, points int) error {
	lo, hi := chain.MinCutoff(), chain.MaxCutoff()

	if _, err := fmt.Fprintf(w, "high-pass %.0f Hz, low-pass %.0f Hz at %.0f Hz\n",
		chain.Cutoff(filterbox.HighPassStage),
		chain.Cutoff(filterbox.LowPassStage),
		chain.SampleRate()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%10s %9s\n", "freq Hz", "gain dB"); err != nil {
		return err
	}

	for i := range points {
		hz := lo * math.Pow(hi/lo, float64(i)/float64(points-1))
		if _, err := fmt.Fprintf(w, "%10.1f %9.2f\n", hz, chain.ResponseDB(hz)); err != nil {
			return err
		}
	}

	return nil
}
