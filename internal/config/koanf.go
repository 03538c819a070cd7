// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/stylecast/internal/validation"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/stylecast/config.yaml",
	"/etc/stylecast/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "STYLECAST_CONFIG"

// envPrefix namespaces all environment overrides.
const envPrefix = "STYLECAST_"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Database: DatabaseConfig{
			Path:         ":memory:", // single-run pipeline, nothing to persist
			MaxMemory:    "2GB",
			Threads:      0, // 0 = runtime.NumCPU()
			QueryTimeout: 60 * time.Second,
		},
		Inputs: InputsConfig{
			PointOfSale: "data/pos.csv",
			Scoring:     "data/scoring.csv",
			Bookings:    "data/bookings.csv",
			ProductInfo: "data/product_info.csv",
		},
		Outputs: OutputsConfig{
			Training:    "out/training.csv",
			Predictions: "out/predictions.csv",
			ChartsDir:   "out/charts",
			RunSummary:  "out/run_summary.json",
		},
		Features: FeaturesConfig{
			KeyColumn: "style_code",
			// The design code column is deliberately absent: one column per
			// design would blow up the feature space.
			Attributes: []string{
				"age_segment",
				"gender_segment",
				"color_family",
				"technology",
				"category",
				"product_family",
			},
		},
		Clustering: ClusteringConfig{
			TargetClusters: 8,
			Linkage:        "complete",
			MergeLabels:    nil,
		},
		Heuristic: HeuristicConfig{
			PriorYear:          time.Now().Year() - 1,
			CurrentYear:        time.Now().Year(),
			SeasonCodes:        []string{"SS1", "SS2"},
			UnresolvedSentinel: -1,
		},
		ColdStart: ColdStartConfig{
			LaunchOffsetDays: 84,
			MinWeeklyRecords: 12,
			EarlyWeeks:       12,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values from defaultConfig()
//  2. Config file: optional YAML file
//  3. Environment variables: STYLECAST_* overrides
//
// The merged configuration is validated (struct tags plus cross-field
// checks) before it is returned; a run never starts on a half-valid
// configuration.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// STYLECAST_CLUSTERING_TARGET_CLUSTERS -> clustering.target_clusters
	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Env vars arrive as strings; known slice fields accept comma-separated values.
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validation.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated
// slices when they arrive from the environment.
var sliceConfigPaths = []string{
	"features.attributes",
	"heuristic.season_codes",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - STYLECAST_LOGGING_LEVEL -> logging.level
//   - STYLECAST_DATABASE_MAX_MEMORY -> database.max_memory
//   - STYLECAST_CLUSTERING_TARGET_CLUSTERS -> clustering.target_clusters
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	// The first underscore separates the section from the field; later
	// underscores belong to the field name itself.
	parts := strings.SplitN(key, "_", 2)
	if len(parts) == 1 {
		return parts[0]
	}

	section := parts[0]
	if section == "cold" {
		// cold_start is the one two-word section
		rest := strings.SplitN(parts[1], "_", 2)
		if len(rest) == 2 && rest[0] == "start" {
			return "cold_start." + rest[1]
		}
	}

	return section + "." + parts[1]
}
