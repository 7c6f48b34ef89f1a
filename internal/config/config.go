// Package config loads the recorder configuration from a YAML file with
// environment overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete recorder configuration.
type Config struct {
	Audio         AudioConfig         `yaml:"audio"`
	Waveform      WaveformConfig      `yaml:"waveform"`
	Files         FilesConfig         `yaml:"files"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// AudioConfig contains the capture format.
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
	ChunkSize  int `yaml:"chunk_size"` // frames per device read
}

// WaveformConfig controls the display sampling tick.
type WaveformConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// FilesConfig names the temp file set one recording moves through.
type FilesConfig struct {
	ContainerPath    string `yaml:"container_path"`
	CompressedPath   string `yaml:"compressed_path"`
	IntermediatePath string `yaml:"intermediate_path"`
}

// TranscriptionConfig selects and parameterizes the recognition backend.
type TranscriptionConfig struct {
	Backend    string `yaml:"backend"` // "cloud" or "local"
	Language   string `yaml:"language"`
	CloudModel string `yaml:"cloud_model"`
	APIKey     string `yaml:"api_key"`
	LocalModel string `yaml:"local_model"`
	ModelsDir  string `yaml:"models_dir"`
	Timeout    int    `yaml:"timeout"` // seconds, cloud requests
}

// ServerConfig contains the optional control/metrics HTTP surface.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		Audio:    AudioConfig{SampleRate: 44100, Channels: 1, ChunkSize: 1024},
		Waveform: WaveformConfig{IntervalMs: 100},
		Files: FilesConfig{
			ContainerPath:    "temp_recording.wav",
			CompressedPath:   "recording.mp3",
			IntermediatePath: "whisper_input.wav",
		},
		Transcription: TranscriptionConfig{
			Backend:    "cloud",
			Language:   "auto",
			CloudModel: "whisper-1",
			LocalModel: "small",
			ModelsDir:  "./models",
			Timeout:    60,
		},
		Server:  ServerConfig{Enabled: false, Addr: ":8090"},
		Logging: LoggingConfig{Level: "info", Pretty: true},
	}
}

// Load reads the YAML file at path on top of the defaults, applies
// environment overrides, and validates the result. An empty path skips the
// file and uses defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "0", "false", "no", "off", "False", "FALSE":
			return false
		default:
			return true
		}
	}
	return def
}

func (c *Config) applyEnv() {
	c.Transcription.Backend = getenv("VOICESCRIBE_BACKEND", c.Transcription.Backend)
	c.Transcription.Language = getenv("VOICESCRIBE_LANGUAGE", c.Transcription.Language)
	c.Transcription.APIKey = getenv("OPENAI_API_KEY", c.Transcription.APIKey)
	c.Transcription.LocalModel = getenv("VOICESCRIBE_LOCAL_MODEL", c.Transcription.LocalModel)
	c.Transcription.ModelsDir = getenv("VOICESCRIBE_MODELS_DIR", c.Transcription.ModelsDir)
	c.Transcription.Timeout = getenvInt("VOICESCRIBE_TIMEOUT", c.Transcription.Timeout)
	c.Server.Enabled = getenvBool("VOICESCRIBE_SERVER", c.Server.Enabled)
	c.Server.Addr = getenv("VOICESCRIBE_ADDR", c.Server.Addr)
	c.Logging.Level = getenv("LOG_LEVEL", c.Logging.Level)
}

// Validate performs validation of the complete configuration.
func (c *Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}
	if err := c.Waveform.Validate(); err != nil {
		return fmt.Errorf("waveform config: %w", err)
	}
	if err := c.Files.Validate(); err != nil {
		return fmt.Errorf("files config: %w", err)
	}
	if err := c.Transcription.Validate(); err != nil {
		return fmt.Errorf("transcription config: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates the capture format.
func (a *AudioConfig) Validate() error {
	if a.SampleRate < 8000 || a.SampleRate > 192000 {
		return fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %d", a.SampleRate)
	}
	if a.Channels != 1 && a.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", a.Channels)
	}
	if a.ChunkSize < 64 || a.ChunkSize > 65536 {
		return fmt.Errorf("chunk_size must be between 64 and 65536 frames, got %d", a.ChunkSize)
	}
	return nil
}

// Validate validates the waveform tick interval.
func (w *WaveformConfig) Validate() error {
	if w.IntervalMs < 10 || w.IntervalMs > 5000 {
		return fmt.Errorf("interval_ms must be between 10 and 5000, got %d", w.IntervalMs)
	}
	return nil
}

// Validate validates the temp file paths.
func (f *FilesConfig) Validate() error {
	if f.ContainerPath == "" {
		return fmt.Errorf("container_path cannot be empty")
	}
	if f.CompressedPath == "" {
		return fmt.Errorf("compressed_path cannot be empty")
	}
	if f.IntermediatePath == "" {
		return fmt.Errorf("intermediate_path cannot be empty")
	}
	if f.IntermediatePath == f.ContainerPath {
		return fmt.Errorf("intermediate_path must differ from container_path")
	}
	return nil
}

// Validate validates the transcription backend selection.
func (t *TranscriptionConfig) Validate() error {
	switch t.Backend {
	case "cloud":
		if t.APIKey == "" {
			return fmt.Errorf("api_key cannot be empty for the cloud backend (set OPENAI_API_KEY)")
		}
	case "local":
		if t.LocalModel == "" {
			return fmt.Errorf("local_model cannot be empty for the local backend")
		}
		if t.ModelsDir == "" {
			return fmt.Errorf("models_dir cannot be empty for the local backend")
		}
	default:
		return fmt.Errorf("backend must be 'cloud' or 'local', got '%s'", t.Backend)
	}
	if t.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", t.Timeout)
	}
	return nil
}

// Validate validates the control server configuration.
func (s *ServerConfig) Validate() error {
	if s.Enabled && s.Addr == "" {
		return fmt.Errorf("addr cannot be empty when the server is enabled")
	}
	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [trace, debug, info, warn, error], got '%s'", l.Level)
	}
	return nil
}

// WaveformInterval returns the waveform tick as a time.Duration.
func (w *WaveformConfig) WaveformInterval() time.Duration {
	return time.Duration(w.IntervalMs) * time.Millisecond
}

// TimeoutDuration returns the cloud request timeout as a time.Duration.
func (t *TranscriptionConfig) TimeoutDuration() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}
