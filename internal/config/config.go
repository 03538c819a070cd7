// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

// Package config defines and loads the Stylecast pipeline configuration.
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//
//   - Environment variables (STYLECAST_ prefix)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// The pipeline is a single-run batch job, so everything a run needs -
// input and output paths, database tuning, clustering parameters, the
// heuristic season codes - is fixed up front and validated before any
// data is read. In particular the target cluster count is configuration,
// not something inferred at run time: the analyst picks it from the
// diagnostic charts of a previous run and records the decision here.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for a pipeline run.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Database   DatabaseConfig   `koanf:"database"`
	Inputs     InputsConfig     `koanf:"inputs"`
	Outputs    OutputsConfig    `koanf:"outputs"`
	Features   FeaturesConfig   `koanf:"features"`
	Clustering ClusteringConfig `koanf:"clustering"`
	Heuristic  HeuristicConfig  `koanf:"heuristic"`
	ColdStart  ColdStartConfig  `koanf:"cold_start"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic disabled"`

	// Format is json or console.
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

// DatabaseConfig tunes the embedded DuckDB instance.
type DatabaseConfig struct {
	// Path is the database location. The default :memory: is right for a
	// single-run pipeline; a file path is useful when debugging a run's
	// intermediate tables afterwards.
	Path string `koanf:"path" validate:"required"`

	// MaxMemory is the DuckDB memory limit (e.g. "2GB").
	MaxMemory string `koanf:"max_memory" validate:"required"`

	// Threads is the number of DuckDB threads. 0 = runtime.NumCPU().
	Threads int `koanf:"threads" validate:"min=0"`

	// QueryTimeout bounds individual queries.
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// InputsConfig names the four flat input tables.
type InputsConfig struct {
	// PointOfSale is the weekly point-of-sale CSV:
	// style_code, activity_date, net_units, season_code.
	PointOfSale string `koanf:"point_of_sale" validate:"required"`

	// Scoring is the scoring-list CSV: style_code. This is the universe
	// of products to be predicted.
	Scoring string `koanf:"scoring" validate:"required"`

	// Bookings is the bookings CSV: style_code, season_code, booking_qty.
	Bookings string `koanf:"bookings" validate:"required"`

	// ProductInfo is the product-metadata CSV: style_code plus the
	// categorical attribute columns listed in features.attributes.
	ProductInfo string `koanf:"product_info" validate:"required"`
}

// OutputsConfig names the files written at the end of a run.
type OutputsConfig struct {
	// Training is the cold-start training table CSV.
	Training string `koanf:"training" validate:"required"`

	// Predictions is the predictions table CSV.
	Predictions string `koanf:"predictions" validate:"required"`

	// ChartsDir receives the diagnostic HTML charts (PCA scatter,
	// dendrogram). Empty disables chart rendering.
	ChartsDir string `koanf:"charts_dir"`

	// RunSummary is the JSON run-summary path. Empty disables it.
	RunSummary string `koanf:"run_summary"`
}

// FeaturesConfig controls the categorical feature aggregation step.
type FeaturesConfig struct {
	// KeyColumn is the product key column in the product-info table.
	KeyColumn string `koanf:"key_column" validate:"required"`

	// Attributes is the fixed list of categorical attribute columns to
	// one-hot encode. Columns not listed are ignored; the high-cardinality
	// design code stays tractable simply by never being listed here.
	Attributes []string `koanf:"attributes" validate:"required,min=1,dive,required"`
}

// ClusteringConfig controls the hierarchical clustering step.
type ClusteringConfig struct {
	// TargetClusters is the number of clusters K to cut the tree at.
	// Chosen by the analyst from the dendrogram and PCA charts of a
	// previous run; the decision is preserved as data, not recomputed.
	TargetClusters int `koanf:"target_clusters" validate:"required,min=1"`

	// Linkage is the agglomerative merge rule: complete, average or
	// single. Fixed per run for reproducibility and recorded in the run
	// summary.
	Linkage string `koanf:"linkage" validate:"omitempty,linkage"`

	// MergeLabels optionally remaps cluster labels after the cut, for
	// collapsing clusters the analyst judged redundant on the PCA chart.
	// Keys and values are labels in 1..K.
	MergeLabels map[int]int `koanf:"merge_labels"`
}

// HeuristicConfig controls the zero-sales prediction rule.
type HeuristicConfig struct {
	// PriorYear and CurrentYear bound the yearly sales comparison.
	PriorYear   int `koanf:"prior_year" validate:"required,min=1900"`
	CurrentYear int `koanf:"current_year" validate:"required,min=1900,gtfield=PriorYear"`

	// SeasonCodes are the two target season codes checked for bookings.
	// A product with prior-year sales, no current-year sales and no
	// bookings in either season is predicted to sell zero units.
	SeasonCodes []string `koanf:"season_codes" validate:"required,len=2,dive,season_code"`

	// UnresolvedSentinel is the prediction value for products the rule
	// does not decide.
	UnresolvedSentinel int `koanf:"unresolved_sentinel"`
}

// ColdStartConfig controls cold-start cohort selection.
type ColdStartConfig struct {
	// LaunchOffsetDays is how far after the dataset's global minimum
	// date a product's first sale must fall for the product to count as
	// launched inside the observed window rather than carried over from
	// before it.
	LaunchOffsetDays int `koanf:"launch_offset_days" validate:"min=0"`

	// MinWeeklyRecords is the minimum number of observed weekly sales
	// records required for a candidate to enter the training table.
	MinWeeklyRecords int `koanf:"min_weekly_records" validate:"min=1"`

	// EarlyWeeks is the length of the early-sales window whose
	// cumulative units become the training target.
	EarlyWeeks int `koanf:"early_weeks" validate:"min=1"`
}

// Validate checks cross-field constraints that validator tags cannot express.
func (c *Config) Validate() error {
	for from, to := range c.Clustering.MergeLabels {
		if from < 1 || from > c.Clustering.TargetClusters {
			return fmt.Errorf("clustering.merge_labels: source label %d outside 1..%d", from, c.Clustering.TargetClusters)
		}
		if to < 1 || to > c.Clustering.TargetClusters {
			return fmt.Errorf("clustering.merge_labels: target label %d outside 1..%d", to, c.Clustering.TargetClusters)
		}
		if _, chained := c.Clustering.MergeLabels[to]; chained {
			return fmt.Errorf("clustering.merge_labels: target label %d is itself remapped; chains are not supported", to)
		}
	}
	return nil
}
