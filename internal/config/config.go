// Package config holds the process-wide atlas configuration. It is loaded
// once at startup and passed explicitly into the functions that need it;
// nothing in the core reads ambient global state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ProjectFileName is the per-project config file looked up from the
// working directory.
const ProjectFileName = ".atlas.yaml"

// Config is the complete atlas configuration.
type Config struct {
	// DataDir is the directory holding index.json and the pack files.
	DataDir string      `yaml:"data_dir"`
	Merge   MergeConfig `yaml:"merge"`
}

// MergeConfig tunes the merge engine's near-match heuristic. There is no
// derivation behind the historical values; they are policy, so they live
// in config instead of constants.
type MergeConfig struct {
	// SubstringFloor is the minimum key length (runes) before substring
	// containment counts as a near match.
	SubstringFloor int `yaml:"substring_floor"`
	// PrefixFloor is the minimum key length before the common-prefix
	// heuristic applies.
	PrefixFloor int `yaml:"prefix_floor"`
	// PrefixRatio is the share of the shorter key that must agree.
	PrefixRatio float64 `yaml:"prefix_ratio"`
	// NearMatchLimit caps reported candidates per incoming record.
	NearMatchLimit int `yaml:"near_match_limit"`
}

// Default returns the configuration the atlas data has been curated
// against.
func Default() Config {
	return Config{
		DataDir: "data",
		Merge: MergeConfig{
			SubstringFloor: 4,
			PrefixFloor:    6,
			PrefixRatio:    0.8,
			NearMatchLimit: 5,
		},
	}
}

// Load reads the project config file when present, layering it over the
// defaults, then applies ATLAS_* environment overrides. A missing file is
// not an error; a malformed one is.
func Load(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the merge engine cannot run with.
func (c Config) Validate() error {
	if c.Merge.PrefixRatio <= 0 || c.Merge.PrefixRatio > 1 {
		return fmt.Errorf("merge.prefix_ratio must be in (0, 1], got %v", c.Merge.PrefixRatio)
	}
	if c.Merge.SubstringFloor < 1 {
		return fmt.Errorf("merge.substring_floor must be at least 1, got %d", c.Merge.SubstringFloor)
	}
	if c.Merge.PrefixFloor < 1 {
		return fmt.Errorf("merge.prefix_floor must be at least 1, got %d", c.Merge.PrefixFloor)
	}
	if c.Merge.NearMatchLimit < 1 {
		return fmt.Errorf("merge.near_match_limit must be at least 1, got %d", c.Merge.NearMatchLimit)
	}
	return nil
}

// applyEnvOverrides layers ATLAS_* environment variables on top of the
// file values. Env has the highest priority.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ATLAS_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("ATLAS_PREFIX_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Merge.PrefixRatio = f
		}
	}
	if v := os.Getenv("ATLAS_SUBSTRING_FLOOR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Merge.SubstringFloor = n
		}
	}
	if v := os.Getenv("ATLAS_PREFIX_FLOOR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Merge.PrefixFloor = n
		}
	}
}
