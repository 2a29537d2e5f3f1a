// SPDX-License-Identifier: MIT
// Package config loads the application configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"eq/pkg/bitint"
)

// Limits for validated fields.
const (
	MinSampleRate = 8000
	MaxSampleRate = 192000
	MaxFFTSize    = 32768
	MaxRefreshHz  = 240
)

// Config is the root configuration structure, loaded from YAML.
type Config struct {
	LogLevel  string          `yaml:"log_level"` // "debug", "info", "warn", "error".
	Audio     AudioConfig     `yaml:"audio"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Transport TransportConfig `yaml:"transport"`
	Recording RecordingConfig `yaml:"recording"`
}

// AudioConfig holds capture settings.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index, -1 for default.
	SampleRate      float64 `yaml:"sample_rate"`       // Hz.
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Callback block size in frames.
	Channels        int     `yaml:"channels"`          // Input channels to analyze.
	LowLatency      bool    `yaml:"low_latency"`       // Request the device's low-latency profile.
}

// AnalysisConfig holds spectrum and curve settings.
type AnalysisConfig struct {
	FFTSize   int     `yaml:"fft_size"`   // Analysis window length, power of two.
	RefreshHz int     `yaml:"refresh_hz"` // Frame publish rate.
	MinDB     float64 `yaml:"min_db"`     // Spectrum floor in dBFS, negative.
	Width     int     `yaml:"width"`      // Plot width in pixels.
	Height    int     `yaml:"height"`     // Plot height in pixels.
}

// TransportConfig holds frame publishing settings.
type TransportConfig struct {
	WebSocketEnabled bool   `yaml:"websocket_enabled"`
	WebSocketAddr    string `yaml:"websocket_addr"` // e.g. "127.0.0.1:8090".
}

// RecordingConfig holds settings for recording the processed stream.
type RecordingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	OutputDir string `yaml:"output_dir"`
	BitDepth  int    `yaml:"bit_depth"` // 16 or 24.
}

// Default returns the built-in configuration used when no file is found.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     -1,
			SampleRate:      48000,
			FramesPerBuffer: 512,
			Channels:        2,
			LowLatency:      false,
		},
		Analysis: AnalysisConfig{
			FFTSize:   2048,
			RefreshHz: 60,
			MinDB:     -48,
			Width:     800,
			Height:    400,
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddr:    "127.0.0.1:8090",
		},
		Recording: RecordingConfig{
			Enabled:   false,
			OutputDir: "./recordings",
			BitDepth:  16,
		},
	}
}

// Load reads configuration from a YAML file. If path is empty it looks for
// config.yaml in the working directory and falls back to the defaults when
// none exists. Environment overrides apply after the file, then the result
// is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that would otherwise fail deep inside the
// pipeline with a worse error.
func (c *Config) Validate() error {
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		return fmt.Errorf("audio.sample_rate %g outside [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Audio.FramesPerBuffer <= 0 {
		return fmt.Errorf("audio.frames_per_buffer must be positive, got %d", c.Audio.FramesPerBuffer)
	}
	if c.Audio.Channels < 1 {
		return fmt.Errorf("audio.channels must be >= 1, got %d", c.Audio.Channels)
	}
	if !bitint.IsPowerOfTwo(c.Analysis.FFTSize) || c.Analysis.FFTSize > MaxFFTSize {
		return fmt.Errorf("analysis.fft_size must be a power of two <= %d, got %d",
			MaxFFTSize, c.Analysis.FFTSize)
	}
	if c.Analysis.RefreshHz < 1 || c.Analysis.RefreshHz > MaxRefreshHz {
		return fmt.Errorf("analysis.refresh_hz %d outside [1, %d]", c.Analysis.RefreshHz, MaxRefreshHz)
	}
	if c.Analysis.MinDB >= 0 {
		return fmt.Errorf("analysis.min_db must be negative, got %g", c.Analysis.MinDB)
	}
	if c.Analysis.Width < 2 || c.Analysis.Height < 2 {
		return fmt.Errorf("analysis plot must be at least 2x2 pixels, got %dx%d",
			c.Analysis.Width, c.Analysis.Height)
	}
	if c.Transport.WebSocketEnabled && c.Transport.WebSocketAddr == "" {
		return fmt.Errorf("transport.websocket_addr must be set when the websocket is enabled")
	}
	if c.Recording.Enabled && c.Recording.BitDepth != 16 && c.Recording.BitDepth != 24 {
		return fmt.Errorf("recording.bit_depth must be 16 or 24, got %d", c.Recording.BitDepth)
	}
	return nil
}

// applyEnvOverrides applies EQ_-prefixed environment variables on top of
// whatever the file set. Unparseable values are ignored.
func (c *Config) applyEnvOverrides() {
	if v, ok := os.LookupEnv("EQ_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv("EQ_INPUT_DEVICE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Audio.InputDevice = n
		}
	}
	if v, ok := os.LookupEnv("EQ_SAMPLE_RATE"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Audio.SampleRate = f
		}
	}
	if v, ok := os.LookupEnv("EQ_FFT_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Analysis.FFTSize = n
		}
	}
	if v, ok := os.LookupEnv("EQ_WEBSOCKET_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Transport.WebSocketEnabled = b
		}
	}
	if v, ok := os.LookupEnv("EQ_WEBSOCKET_ADDR"); ok {
		c.Transport.WebSocketAddr = v
	}
	if v, ok := os.LookupEnv("EQ_RECORDING_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Recording.Enabled = b
		}
	}
}
