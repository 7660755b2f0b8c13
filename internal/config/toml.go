// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Spiral SpiralConfig `toml:"spiral"`
}

// SpiralConfig maps analysis settings. Nil fields are unset.
type SpiralConfig struct {
	Count        *int     `toml:"count"`
	PrimesFile   *string  `toml:"primes-file"`
	Angle        *float64 `toml:"angle"`
	Predictions  *int     `toml:"predictions"`
	Policy       *string  `toml:"policy"`
	AngleMode    *string  `toml:"angle-mode"`
	MinCluster   *int     `toml:"min-cluster"`
	SaveRuns     *bool    `toml:"save"`
	SweepWorkers *int     `toml:"sweep-workers"`
	DebounceMs   *int     `toml:"debounce-ms"`
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
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
