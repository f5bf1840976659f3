package task

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings a List can be created with.
type Config struct {
	// YieldOnFrameExit stops a task for the tick when one of its nested
	// frames finishes, instead of resuming the caller frame right away.
	YieldOnFrameExit bool `yaml:"yield_on_frame_exit"`

	// Profile gives the list a StatsProfiler.
	Profile bool `yaml:"profile"`

	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, json
}

func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// ParseConfig reads a YAML config. Missing keys keep their default.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	return ParseConfig(data)
}
