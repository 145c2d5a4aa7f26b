// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Exercise ExerciseConfig `toml:"exercise"`
}

// ExerciseConfig maps session-related settings.
type ExerciseConfig struct {
	Kind         *string  `toml:"kind"`
	Difficulty   *string  `toml:"difficulty"`
	WPM          *float64 `toml:"wpm"`
	Dial         *float64 `toml:"dial"`
	Content      *string  `toml:"content"`
	MaxRamp      *float64 `toml:"max-ramp"`
	RampPeriod   *string  `toml:"ramp-period"`
	BudgetFactor *float64 `toml:"budget-factor"`
	Lookahead    *float64 `toml:"lookahead"`
	Feedback     *string  `toml:"feedback"`
	Seed         *int64   `toml:"seed"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
