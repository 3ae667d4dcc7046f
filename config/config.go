// Package config provides configuration loading and management for oxy-anim.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"gopkg.in/yaml.v3"
)

// Config represents the complete oxy-anim configuration
type Config struct {
	Playback PlaybackConfig `yaml:"playback"`
	Engine   EngineConfig   `yaml:"engine"`
	Bake     BakeConfig     `yaml:"bake"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// PlaybackConfig configures the animator clock and blending
type PlaybackConfig struct {
	// FPS converts elapsed seconds into timeline frames (default: 60)
	FPS float32 `yaml:"fps"`
	// StartFrame is the lower wrap bound of the clock
	StartFrame float32 `yaml:"start_frame"`
	// EndFrame bounds map-mode playback (default: 300)
	EndFrame float32 `yaml:"end_frame"`
	// Reverse plays timelines backwards
	Reverse bool `yaml:"reverse"`
	// RootMotion strips translation from root joints
	RootMotion bool `yaml:"root_motion"`
	// BlendEasing names the crossfade easing, see animator.EasingNames (default: linear)
	BlendEasing string `yaml:"blend_easing"`
}

// EngineConfig configures the tick loop
type EngineConfig struct {
	// TickRate is the number of ticks per second (default: 60)
	TickRate int `yaml:"tick_rate"`
}

// BakeConfig configures deterministic export
type BakeConfig struct {
	// Workers is the number of frames evaluated in parallel (default: 4)
	Workers int `yaml:"workers"`
	// QueueSize is the pending frame queue length (default: 256)
	QueueSize int `yaml:"queue_size"`
}

// LogConfig configures structured logging
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string `yaml:"level"`
	// Format is text or json (default: text)
	Format string `yaml:"format"`
}

// MetricsConfig configures the prometheus endpoint
type MetricsConfig struct {
	// Enabled serves metrics while playing
	Enabled bool `yaml:"enabled"`
	// Addr is the listen address of the metrics endpoint (default: :9464)
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Playback: PlaybackConfig{
			FPS:         60,
			StartFrame:  0,
			EndFrame:    300,
			BlendEasing: "linear",
		},
		Engine: EngineConfig{
			TickRate: 60,
		},
		Bake: BakeConfig{
			Workers:   4,
			QueueSize: 256,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr: ":9464",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Playback.FPS <= 0 {
		return fmt.Errorf("playback.fps must be positive")
	}
	if c.Playback.StartFrame < 0 {
		return fmt.Errorf("playback.start_frame must not be negative")
	}
	if c.Playback.EndFrame <= c.Playback.StartFrame {
		return fmt.Errorf("playback.end_frame must be greater than playback.start_frame")
	}
	if _, err := animator.EasingByName(c.Playback.BlendEasing); err != nil {
		return fmt.Errorf("playback.blend_easing: %w", err)
	}
	if c.Engine.TickRate <= 0 {
		return fmt.Errorf("engine.tick_rate must be positive")
	}
	if c.Bake.Workers <= 0 {
		return fmt.Errorf("bake.workers must be positive")
	}
	if c.Bake.QueueSize <= 0 {
		return fmt.Errorf("bake.queue_size must be positive")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("log.format must be text or json")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// NewLogger builds the process logger described by the log section.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	return readFile(path, DefaultConfig())
}

// readFile decodes a YAML file over base. Loader layers decode over an empty Config so that keys
// absent from a file do not reset earlier layers.
func readFile(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return base, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Playback
	c.Playback.FPS = common.Coalesce(other.Playback.FPS, c.Playback.FPS)
	c.Playback.StartFrame = common.Coalesce(other.Playback.StartFrame, c.Playback.StartFrame)
	c.Playback.EndFrame = common.Coalesce(other.Playback.EndFrame, c.Playback.EndFrame)
	c.Playback.BlendEasing = common.Coalesce(other.Playback.BlendEasing, c.Playback.BlendEasing)
	if other.Playback.Reverse {
		c.Playback.Reverse = true
	}
	if other.Playback.RootMotion {
		c.Playback.RootMotion = true
	}

	// Engine
	c.Engine.TickRate = common.Coalesce(other.Engine.TickRate, c.Engine.TickRate)

	// Bake
	c.Bake.Workers = common.Coalesce(other.Bake.Workers, c.Bake.Workers)
	c.Bake.QueueSize = common.Coalesce(other.Bake.QueueSize, c.Bake.QueueSize)

	// Log
	c.Log.Level = common.Coalesce(other.Log.Level, c.Log.Level)
	c.Log.Format = common.Coalesce(other.Log.Format, c.Log.Format)

	// Metrics
	if other.Metrics.Enabled {
		c.Metrics.Enabled = true
	}
	c.Metrics.Addr = common.Coalesce(other.Metrics.Addr, c.Metrics.Addr)
}

// AnimatorOptions turns the playback section into animator options: a clock with the configured
// fps, bounds and direction, root motion and the crossfade easing.
func (p PlaybackConfig) AnimatorOptions() ([]animator.AnimatorBuilderOption, error) {
	easing, err := animator.EasingByName(p.BlendEasing)
	if err != nil {
		return nil, err
	}
	clock := animator.NewClock()
	clock.FPS = p.FPS
	clock.StartTime = p.StartFrame
	clock.CurrentTime = p.StartFrame
	clock.EndTime = p.EndFrame
	clock.SetDirection(p.Reverse)

	return []animator.AnimatorBuilderOption{
		animator.WithClock(clock),
		animator.WithRootMotion(p.RootMotion),
		animator.WithBlendEasing(easing),
	}, nil
}
