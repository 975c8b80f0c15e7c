package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Producers ProducersConfig `yaml:"producers"`
	JobStore  JobStoreConfig  `yaml:"jobstore"`
	Daemon    DaemonConfig    `yaml:"daemon"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type PipelineConfig struct {
	// StrictGates promotes quality-gate failures to run-ending errors.
	// The lenient default means a completed run can carry artifacts that
	// failed their gate; callers deciding whether to publish must check
	// the step ledger, not just the success flag.
	StrictGates   bool   `yaml:"strict_gates"`
	OutputDir     string `yaml:"output_dir"`
	DefaultFormat string `yaml:"default_format"`
}

type ProducersConfig struct {
	Research ResearchConfig `yaml:"research"`
	Voice    VoiceConfig    `yaml:"voice"`
}

type ResearchConfig struct {
	MinSources     int     `yaml:"min_sources"`
	MaxSources     int     `yaml:"max_sources"`
	MinCredibility float64 `yaml:"min_credibility"`
}

type VoiceConfig struct {
	PassThreshold float64 `yaml:"pass_threshold"`
}

type JobStoreConfig struct {
	TTLSec           int `yaml:"ttl_sec"`
	SweepIntervalSec int `yaml:"sweep_interval_sec"`
}

type DaemonConfig struct {
	SocketPath         string `yaml:"socket_path"`
	LogDir             string `yaml:"log_dir"`
	ShutdownTimeoutSec int    `yaml:"shutdown_timeout_sec"`
	ClientTimeoutSec   int    `yaml:"client_timeout_sec"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Pipeline: PipelineConfig{
			StrictGates:   false,
			OutputDir:     "output",
			DefaultFormat: "markdown",
		},
		Producers: ProducersConfig{
			Research: ResearchConfig{
				MinSources:     3,
				MaxSources:     10,
				MinCredibility: 0.5,
			},
			Voice: VoiceConfig{
				PassThreshold: VoiceScoreThreshold,
			},
		},
		JobStore: JobStoreConfig{
			TTLSec:           3600,
			SweepIntervalSec: 60,
		},
		Daemon: DaemonConfig{
			SocketPath:         "inkwell.sock",
			LogDir:             "logs",
			ShutdownTimeoutSec: 10,
			ClientTimeoutSec:   30,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads a YAML config file over the defaults. A missing file is
// not an error; the defaults are returned as-is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
