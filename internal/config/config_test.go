// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	t.Run("database defaults to in-memory", func(t *testing.T) {
		if cfg.Database.Path != ":memory:" {
			t.Errorf("Database.Path = %q, want :memory:", cfg.Database.Path)
		}
	})

	t.Run("cold start defaults match the analysis constants", func(t *testing.T) {
		if cfg.ColdStart.LaunchOffsetDays != 84 {
			t.Errorf("LaunchOffsetDays = %d, want 84", cfg.ColdStart.LaunchOffsetDays)
		}
		if cfg.ColdStart.MinWeeklyRecords != 12 {
			t.Errorf("MinWeeklyRecords = %d, want 12", cfg.ColdStart.MinWeeklyRecords)
		}
		if cfg.ColdStart.EarlyWeeks != 12 {
			t.Errorf("EarlyWeeks = %d, want 12", cfg.ColdStart.EarlyWeeks)
		}
	})

	t.Run("clustering defaults are reproducible", func(t *testing.T) {
		if cfg.Clustering.Linkage != "complete" {
			t.Errorf("Linkage = %q, want complete", cfg.Clustering.Linkage)
		}
		if cfg.Clustering.TargetClusters < 1 {
			t.Errorf("TargetClusters = %d, want >= 1", cfg.Clustering.TargetClusters)
		}
	})

	t.Run("design code is not an encoded attribute", func(t *testing.T) {
		for _, attr := range cfg.Features.Attributes {
			if attr == "design_code" {
				t.Error("design_code must not be in the encoded attribute list")
			}
		}
	})

	t.Run("heuristic years are consecutive by default", func(t *testing.T) {
		if cfg.Heuristic.CurrentYear != cfg.Heuristic.PriorYear+1 {
			t.Errorf("CurrentYear = %d, PriorYear = %d, want consecutive",
				cfg.Heuristic.CurrentYear, cfg.Heuristic.PriorYear)
		}
	})
}

func TestLoadWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
clustering:
  target_clusters: 11
  linkage: average
heuristic:
  prior_year: 2024
  current_year: 2025
  season_codes: ["SS1", "SS2"]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Clustering.TargetClusters != 11 {
		t.Errorf("TargetClusters = %d, want 11 from file", cfg.Clustering.TargetClusters)
	}
	if cfg.Clustering.Linkage != "average" {
		t.Errorf("Linkage = %q, want average from file", cfg.Clustering.Linkage)
	}

	// Defaults survive where the file is silent
	if cfg.ColdStart.LaunchOffsetDays != 84 {
		t.Errorf("LaunchOffsetDays = %d, want default 84", cfg.ColdStart.LaunchOffsetDays)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
clustering:
  target_clusters: 11
heuristic:
  prior_year: 2024
  current_year: 2025
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("STYLECAST_CLUSTERING_TARGET_CLUSTERS", "4")
	t.Setenv("STYLECAST_COLD_START_LAUNCH_OFFSET_DAYS", "70")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Clustering.TargetClusters != 4 {
		t.Errorf("TargetClusters = %d, want 4 from env", cfg.Clustering.TargetClusters)
	}
	if cfg.ColdStart.LaunchOffsetDays != 70 {
		t.Errorf("LaunchOffsetDays = %d, want 70 from env", cfg.ColdStart.LaunchOffsetDays)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unsupported linkage",
			content: `
clustering:
  linkage: ward
`,
		},
		{
			name: "current year not after prior year",
			content: `
heuristic:
  prior_year: 2025
  current_year: 2025
`,
		},
		{
			name: "malformed season code",
			content: `
heuristic:
  season_codes: ["spring", "SS2"]
`,
		},
		{
			name: "chained merge labels",
			content: `
clustering:
  target_clusters: 5
  merge_labels:
    2: 3
    3: 4
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatalf("failed to write config file: %v", err)
			}
			t.Setenv(ConfigPathEnvVar, path)

			if _, err := Load(); err == nil {
				t.Error("Load() should reject invalid configuration")
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"STYLECAST_LOGGING_LEVEL", "logging.level"},
		{"STYLECAST_DATABASE_MAX_MEMORY", "database.max_memory"},
		{"STYLECAST_CLUSTERING_TARGET_CLUSTERS", "clustering.target_clusters"},
		{"STYLECAST_COLD_START_MIN_WEEKLY_RECORDS", "cold_start.min_weekly_records"},
		{"STYLECAST_INPUTS_POINT_OF_SALE", "inputs.point_of_sale"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestValidateMergeLabels(t *testing.T) {
	cfg := defaultConfig()
	cfg.Clustering.TargetClusters = 5

	t.Run("valid remap", func(t *testing.T) {
		cfg.Clustering.MergeLabels = map[int]int{4: 2, 5: 2}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error: %v", err)
		}
	})

	t.Run("source out of range", func(t *testing.T) {
		cfg.Clustering.MergeLabels = map[int]int{7: 2}
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() should reject source label above K")
		}
	})

	t.Run("target out of range", func(t *testing.T) {
		cfg.Clustering.MergeLabels = map[int]int{4: 0}
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() should reject target label below 1")
		}
	})
}
