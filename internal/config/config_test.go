package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValidForLocalBackend(t *testing.T) {
	cfg := Default()
	// The cloud default needs a key, so validate the local variant.
	cfg.Transcription.Backend = "local"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Audio.SampleRate != 44100 || cfg.Audio.Channels != 1 || cfg.Audio.ChunkSize != 1024 {
		t.Errorf("audio defaults = %+v", cfg.Audio)
	}
	if got := cfg.Waveform.WaveformInterval(); got != 100*time.Millisecond {
		t.Errorf("waveform interval = %v, want 100ms", got)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := writeConfig(t, `
audio:
  sample_rate: 16000
  chunk_size: 512
transcription:
  backend: local
  local_model: tiny
waveform:
  interval_ms: 50
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("sample_rate = %d, want 16000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Channels != 1 {
		t.Errorf("channels lost default: %d", cfg.Audio.Channels)
	}
	if cfg.Transcription.LocalModel != "tiny" {
		t.Errorf("local_model = %q, want tiny", cfg.Transcription.LocalModel)
	}
	if cfg.Waveform.IntervalMs != 50 {
		t.Errorf("interval_ms = %d, want 50", cfg.Waveform.IntervalMs)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("VOICESCRIBE_BACKEND", "cloud")
	t.Setenv("VOICESCRIBE_LANGUAGE", "uk")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transcription.Backend != "cloud" {
		t.Errorf("backend = %q, want cloud", cfg.Transcription.Backend)
	}
	if cfg.Transcription.APIKey != "sk-test" {
		t.Errorf("api key not taken from environment")
	}
	if cfg.Transcription.Language != "uk" {
		t.Errorf("language = %q, want uk", cfg.Transcription.Language)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load accepted a missing file")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "bad sample rate",
			mutate: func(c *Config) { c.Audio.SampleRate = 100 },
			want:   "sample_rate",
		},
		{
			name:   "bad channels",
			mutate: func(c *Config) { c.Audio.Channels = 3 },
			want:   "channels",
		},
		{
			name:   "bad chunk size",
			mutate: func(c *Config) { c.Audio.ChunkSize = 1 },
			want:   "chunk_size",
		},
		{
			name:   "bad waveform interval",
			mutate: func(c *Config) { c.Waveform.IntervalMs = 0 },
			want:   "interval_ms",
		},
		{
			name:   "empty container path",
			mutate: func(c *Config) { c.Files.ContainerPath = "" },
			want:   "container_path",
		},
		{
			name:   "intermediate clashes with container",
			mutate: func(c *Config) { c.Files.IntermediatePath = c.Files.ContainerPath },
			want:   "intermediate_path",
		},
		{
			name:   "unknown backend",
			mutate: func(c *Config) { c.Transcription.Backend = "mystery" },
			want:   "backend",
		},
		{
			name:   "cloud without key",
			mutate: func(c *Config) { c.Transcription.Backend = "cloud"; c.Transcription.APIKey = "" },
			want:   "api_key",
		},
		{
			name:   "local without model",
			mutate: func(c *Config) { c.Transcription.Backend = "local"; c.Transcription.LocalModel = "" },
			want:   "local_model",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
			want:   "level",
		},
		{
			name:   "server enabled without addr",
			mutate: func(c *Config) { c.Server.Enabled = true; c.Server.Addr = "" },
			want:   "addr",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Transcription.Backend = "local"
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate accepted invalid config")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
