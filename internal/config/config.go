// Package config loads the filterbox configuration from defaults, an
// optional YAML file, a .env file and FILTERBOX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/filterbox/dsp/window"
)

// EnvPrefix prefixes every environment override, e.g. FILTERBOX_SPECTRUM_BINS.
const EnvPrefix = "FILTERBOX"

// ErrInvalidConfiguration reports a configuration the pipeline cannot run.
var ErrInvalidConfiguration = errors.New("config: invalid configuration")

const (
	BackendPortAudio = "portaudio"
	BackendFile      = "file"

	OutputPortAudio = "portaudio"
	OutputOto       = "oto"
)

// Config is the complete runtime configuration.
type Config struct {
	Backend         string         `mapstructure:"backend" yaml:"backend"`
	Input           string         `mapstructure:"input" yaml:"input"`
	Output          string         `mapstructure:"output" yaml:"output"`
	SampleRate      float64        `mapstructure:"sample_rate" yaml:"sample_rate"`
	Channels        int            `mapstructure:"channels" yaml:"channels"`
	FramesPerBuffer int            `mapstructure:"frames_per_buffer" yaml:"frames_per_buffer"`
	Realtime        bool           `mapstructure:"realtime" yaml:"realtime"`
	Spectrum        SpectrumConfig `mapstructure:"spectrum" yaml:"spectrum"`
	Filter          FilterConfig   `mapstructure:"filter" yaml:"filter"`
	Monitor         MonitorConfig  `mapstructure:"monitor" yaml:"monitor"`
	LogLevel        string         `mapstructure:"log_level" yaml:"log_level"`
}

// SpectrumConfig sizes the analyzer.
type SpectrumConfig struct {
	Bins       int    `mapstructure:"bins" yaml:"bins"`
	BufferSize int    `mapstructure:"buffer_size" yaml:"buffer_size"`
	Window     string `mapstructure:"window" yaml:"window"`
	PreFilter  bool   `mapstructure:"pre_filter" yaml:"pre_filter"`
}

// FilterConfig holds the initial cutoffs. Zero cutoffs leave the band
// fully open.
type FilterConfig struct {
	LowPass   float64 `mapstructure:"low_pass" yaml:"low_pass"`
	HighPass  float64 `mapstructure:"high_pass" yaml:"high_pass"`
	MinCutoff float64 `mapstructure:"min_cutoff" yaml:"min_cutoff"`
}

// MonitorConfig controls the spectrum display.
type MonitorConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Tick    time.Duration `mapstructure:"tick" yaml:"tick"`
	Bands   int           `mapstructure:"bands" yaml:"bands"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendPortAudio)
	v.SetDefault("input", "")
	v.SetDefault("output", OutputPortAudio)
	v.SetDefault("sample_rate", 44100)
	v.SetDefault("channels", 2)
	v.SetDefault("frames_per_buffer", 1024)
	v.SetDefault("realtime", false)

	v.SetDefault("spectrum.bins", 512)
	v.SetDefault("spectrum.buffer_size", 1024)
	v.SetDefault("spectrum.window", window.TypeRectangular.String())
	v.SetDefault("spectrum.pre_filter", false)

	v.SetDefault("filter.low_pass", 0)
	v.SetDefault("filter.high_pass", 0)
	v.SetDefault("filter.min_cutoff", 10)

	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.tick", 25*time.Millisecond)
	v.SetDefault("monitor.bands", 32)

	v.SetDefault("log_level", "info")
}

// NewViper returns a viper instance with defaults and environment
// overrides wired.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// LoadDotEnv loads environment variables from files (default ".env")
// without overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: load dotenv: %w", err)
	}
	return nil
}

// Load reads file (or filterbox.yaml from the working directory when file
// is empty and it exists) into v, decodes and validates the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	} else {
		v.SetConfigName("filterbox")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: read: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.Output = strings.ToLower(strings.TrimSpace(c.Output))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// Validate reports the first setting the pipeline cannot honour.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
	}

	switch c.Backend {
	case BackendPortAudio:
	case BackendFile:
		if c.Input == "" {
			return invalid("backend %q requires input", c.Backend)
		}
	default:
		return invalid("unknown backend %q", c.Backend)
	}

	switch c.Output {
	case OutputPortAudio, OutputOto:
	default:
		return invalid("unknown output %q", c.Output)
	}

	if c.SampleRate <= 0 {
		return invalid("sample_rate must be > 0: %v", c.SampleRate)
	}
	if c.Channels <= 0 {
		return invalid("channels must be > 0: %d", c.Channels)
	}
	if c.FramesPerBuffer <= 0 {
		return invalid("frames_per_buffer must be > 0: %d", c.FramesPerBuffer)
	}

	if c.Spectrum.BufferSize <= 0 {
		return invalid("spectrum.buffer_size must be > 0: %d", c.Spectrum.BufferSize)
	}
	if c.Spectrum.Bins <= 0 {
		return invalid("spectrum.bins must be > 0: %d", c.Spectrum.Bins)
	}
	if c.Spectrum.Bins > c.Spectrum.BufferSize {
		return invalid("spectrum.bins must be <= spectrum.buffer_size: %d > %d",
			c.Spectrum.Bins, c.Spectrum.BufferSize)
	}
	if _, err := window.ParseType(c.Spectrum.Window); err != nil {
		return invalid("spectrum.window: %v", err)
	}

	if c.Filter.MinCutoff <= 0 {
		return invalid("filter.min_cutoff must be > 0: %v", c.Filter.MinCutoff)
	}
	if c.Filter.LowPass < 0 || c.Filter.HighPass < 0 {
		return invalid("filter cutoffs must be >= 0: low_pass=%v high_pass=%v",
			c.Filter.LowPass, c.Filter.HighPass)
	}

	if c.Monitor.Tick <= 0 {
		return invalid("monitor.tick must be > 0: %v", c.Monitor.Tick)
	}
	if c.Monitor.Bands <= 0 {
		return invalid("monitor.bands must be > 0: %d", c.Monitor.Bands)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return invalid("log_level: %v", err)
	}

	return nil
}

// WindowType returns the parsed analysis window.
func (c *Config) WindowType() window.Type {
	t, _ := window.ParseType(c.Spectrum.Window)
	return t
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: encode yaml: %w", err)
	}
	return out, nil
}
