// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Audio.SampleRate != 48000 {
		t.Errorf("default sample rate = %g", cfg.Audio.SampleRate)
	}
	if cfg.Analysis.FFTSize != 2048 {
		t.Errorf("default fft size = %d", cfg.Analysis.FFTSize)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	if _, err := Load("nonexistent.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadUnmarshalError(t *testing.T) {
	path := writeTempConfig(t, ":\n:bad")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("expected unmarshal error, got %v", err)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
log_level: debug
audio:
  sample_rate: 96000
  channels: 1
analysis:
  fft_size: 4096
  min_db: -60
transport:
  websocket_enabled: true
  websocket_addr: "127.0.0.1:9999"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.Audio.SampleRate != 96000 || cfg.Audio.Channels != 1 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if cfg.Analysis.FFTSize != 4096 || cfg.Analysis.MinDB != -60 {
		t.Errorf("analysis = %+v", cfg.Analysis)
	}
	if !cfg.Transport.WebSocketEnabled || cfg.Transport.WebSocketAddr != "127.0.0.1:9999" {
		t.Errorf("transport = %+v", cfg.Transport)
	}
	// Untouched sections keep their defaults.
	if cfg.Audio.FramesPerBuffer != 512 {
		t.Errorf("frames per buffer = %d, want default 512", cfg.Audio.FramesPerBuffer)
	}
}

func TestEnvOverridesBeatFile(t *testing.T) {
	path := writeTempConfig(t, "audio:\n  sample_rate: 44100\n")
	t.Setenv("EQ_SAMPLE_RATE", "96000")
	t.Setenv("EQ_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Audio.SampleRate != 96000 {
		t.Errorf("env override lost: sample rate = %g", cfg.Audio.SampleRate)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("env override lost: log level = %q", cfg.LogLevel)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"sample rate too low", func(c *Config) { c.Audio.SampleRate = 100 }},
		{"fft size not power of two", func(c *Config) { c.Analysis.FFTSize = 1000 }},
		{"fft size too large", func(c *Config) { c.Analysis.FFTSize = 65536 }},
		{"refresh rate zero", func(c *Config) { c.Analysis.RefreshHz = 0 }},
		{"min db not negative", func(c *Config) { c.Analysis.MinDB = 0 }},
		{"zero channels", func(c *Config) { c.Audio.Channels = 0 }},
		{"degenerate plot", func(c *Config) { c.Analysis.Width = 1 }},
		{"websocket without addr", func(c *Config) {
			c.Transport.WebSocketEnabled = true
			c.Transport.WebSocketAddr = ""
		}},
		{"bad bit depth", func(c *Config) {
			c.Recording.Enabled = true
			c.Recording.BitDepth = 12
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
