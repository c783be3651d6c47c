// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Pattern scanner settings
	Scanner struct {
		Accelerated bool   `yaml:"accelerated"`
		Workers     int    `yaml:"workers"`
		Categories  string `yaml:"categories"` // comma-separated list or "all"
	} `yaml:"scanner"`

	// Fuzzy dictionary matcher settings
	Fuzzy struct {
		Accelerated     bool `yaml:"accelerated"`
		MaxEditDistance int  `yaml:"max_edit_distance"`
		EnablePhonetic  bool `yaml:"enable_phonetic"`
		MinTermLength   int  `yaml:"min_term_length"`
		CacheSize       int  `yaml:"cache_size"`
	} `yaml:"fuzzy"`

	// Confidence pipeline settings
	Pipeline struct {
		BorderlineLow  float64                `yaml:"borderline_low"`
		BorderlineHigh float64                `yaml:"borderline_high"`
		Stages         map[string]StageConfig `yaml:"stages"`
	} `yaml:"pipeline"`

	// Optional ONNX re-ranking model
	Reranker struct {
		ModelPath string `yaml:"model_path"`
	} `yaml:"reranker"`

	// Dictionary file locations for the fuzzy matchers
	Dictionaries struct {
		FirstNames string `yaml:"first_names"`
		Surnames   string `yaml:"surnames"`
		Locations  string `yaml:"locations"`
	} `yaml:"dictionaries"`
}

// StageConfig overrides one pipeline stage. Nil fields keep the stage's
// built-in setting.
type StageConfig struct {
	Enabled  *bool `yaml:"enabled"`
	Priority *int  `yaml:"priority"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Scanner.Categories = "all"
	cfg.Fuzzy.MaxEditDistance = 2
	cfg.Fuzzy.EnablePhonetic = true
	cfg.Fuzzy.MinTermLength = 3
	cfg.Fuzzy.CacheSize = 10000
	cfg.Pipeline.BorderlineLow = 0.40
	cfg.Pipeline.BorderlineHigh = 0.75
	return cfg
}

// LoadConfig loads configuration from a YAML file, layered over defaults.
// An empty path or a missing file yields the default configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges the components depend on.
func (c *Config) Validate() error {
	if c.Fuzzy.MaxEditDistance < 0 {
		return fmt.Errorf("fuzzy.max_edit_distance must be non-negative, got %d", c.Fuzzy.MaxEditDistance)
	}
	if c.Fuzzy.MinTermLength < 1 {
		return fmt.Errorf("fuzzy.min_term_length must be at least 1, got %d", c.Fuzzy.MinTermLength)
	}
	if c.Fuzzy.CacheSize < 0 {
		return fmt.Errorf("fuzzy.cache_size must be non-negative, got %d", c.Fuzzy.CacheSize)
	}
	if c.Scanner.Workers < 0 {
		return fmt.Errorf("scanner.workers must be non-negative, got %d", c.Scanner.Workers)
	}
	if c.Pipeline.BorderlineLow < 0 || c.Pipeline.BorderlineHigh > 1 ||
		c.Pipeline.BorderlineLow >= c.Pipeline.BorderlineHigh {
		return fmt.Errorf("pipeline borderline band [%v, %v) must be a sub-range of [0, 1]",
			c.Pipeline.BorderlineLow, c.Pipeline.BorderlineHigh)
	}
	return nil
}

// Categories returns the enabled scanner categories, nil meaning all.
func (c *Config) Categories() []string {
	raw := strings.TrimSpace(c.Scanner.Categories)
	if raw == "" || strings.EqualFold(raw, "all") {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}

// FindConfigFile searches standard locations for a configuration file and
// returns the first hit, or empty when none exists.
func FindConfigFile() string {
	candidates := []string{"vulpes.yaml", "vulpes.yml", ".vulpes.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".vulpes", "config.yaml"),
			filepath.Join(home, ".config", "vulpes", "config.yaml"),
		)
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
