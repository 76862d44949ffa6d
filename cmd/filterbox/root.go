package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cwbudde/filterbox/internal/config"
)

type rootOptions struct {
	v          *viper.Viper
	configFile string
	dotEnv     []string
}

// flagKeys maps flag names to configuration keys where they differ by more
// than dashes.
var flagKeys = map[string]string{
	"bins":        "spectrum.bins",
	"buffer-size": "spectrum.buffer_size",
	"window":      "spectrum.window",
	"pre-filter":  "spectrum.pre_filter",
	"low-pass":    "filter.low_pass",
	"high-pass":   "filter.high_pass",
	"min-cutoff":  "filter.min_cutoff",
	"monitor":     "monitor.enabled",
	"tick":        "monitor.tick",
	"bands":       "monitor.bands",
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "filterbox",
		Short: "Real-time band filter with a live spectrum display",
		Long: `filterbox passes audio from the default capture device, or from an mp3
file, through a low-pass and a high-pass biquad and plays the result while
drawing its power spectrum.

Configuration is read from defaults, an optional YAML file, a .env file,
FILTERBOX_* environment variables and flags, later sources winning.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(opts.dotEnv...); err != nil {
				return err
			}
			return bindFlags(cmd, opts.v)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "",
		"config file (default is ./filterbox.yaml when present)")
	pf.StringSliceVar(&opts.dotEnv, "env-file", nil,
		"dotenv files to load (default is ./.env when present)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(opts), newConfigCmd(opts), newResponseCmd(opts))

	return root
}

// bindFlags binds every flag of cmd to its configuration key so that a
// flag set on the command line overrides file and environment values.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		switch f.Name {
		case "config", "env-file", "help", "points":
			return
		}

		key, ok := flagKeys[f.Name]
		if !ok {
			key = strings.ReplaceAll(f.Name, "-", "_")
		}

		if err := v.BindPFlag(key, f); err != nil {
			lastErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})

	return lastErr
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.v, opts.configFile)
			if err != nil {
				return err
			}

			out, err := cfg.YAML()
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
