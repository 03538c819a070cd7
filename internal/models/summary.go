// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

// Package models defines the serializable result types shared across the
// pipeline: the run summary written next to the export files, and the row
// types of the two output tables.
package models

import "time"

// RunSummary is the machine-readable record of a pipeline run. It exists so
// a run's inputs, parameters and shape can be audited later without re-running
// anything: the configured cluster count, the linkage, row counts and
// per-step timings are all captured here.
type RunSummary struct {
	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Inputs records row counts per loaded table.
	Inputs InputCounts `json:"inputs"`

	// Features describes the aggregated feature table.
	Features FeatureSummary `json:"features"`

	// Clustering records the clustering parameters and outcome.
	Clustering ClusteringSummary `json:"clustering"`

	// Heuristic records the zero-sales rule outcome.
	Heuristic HeuristicSummary `json:"heuristic"`

	// ColdStart records the cohort selection outcome.
	ColdStart ColdStartSummary `json:"cold_start"`

	// Steps holds per-step wall-clock timings in execution order.
	Steps []StepTiming `json:"steps"`

	// Warnings carries documented assumptions and non-fatal observations,
	// e.g. the booked-for-season interpretation of the bookings table.
	Warnings []string `json:"warnings,omitempty"`
}

// InputCounts holds row counts per input table after loading.
type InputCounts struct {
	PointOfSale int64 `json:"point_of_sale"`
	Scoring     int64 `json:"scoring"`
	Bookings    int64 `json:"bookings"`
	ProductInfo int64 `json:"product_info"`
}

// FeatureSummary describes the aggregated feature table.
type FeatureSummary struct {
	// Products is the number of distinct product keys (rows).
	Products int `json:"products"`

	// Columns is the number of generated indicator columns.
	Columns int `json:"columns"`

	// Attributes is the configured categorical attribute list.
	Attributes []string `json:"attributes"`
}

// ClusteringSummary records the clustering parameters and outcome.
type ClusteringSummary struct {
	// TargetClusters is the configured K.
	TargetClusters int `json:"target_clusters"`

	// Linkage is the merge rule used, fixed for reproducibility.
	Linkage string `json:"linkage"`

	// Sizes maps cluster label to member count after any label remapping.
	Sizes map[int]int `json:"sizes"`

	// MergedLabels is the configured post-hoc remap table, if any.
	MergedLabels map[int]int `json:"merged_labels,omitempty"`
}

// HeuristicSummary records the zero-sales rule outcome.
type HeuristicSummary struct {
	// Scored is the size of the scoring list.
	Scored int `json:"scored"`

	// ResolvedZero is how many products the rule decided.
	ResolvedZero int `json:"resolved_zero"`

	// SeasonCodes are the two target seasons checked for bookings.
	SeasonCodes []string `json:"season_codes"`
}

// ColdStartSummary records the cohort selection outcome.
type ColdStartSummary struct {
	// Candidates is the number of scoring-list products with no sales history.
	Candidates int `json:"candidates"`

	// Selected is how many candidates had sufficient post-launch history
	// to enter the training table.
	Selected int `json:"selected"`
}

// StepTiming is one pipeline step's wall-clock duration.
type StepTiming struct {
	Name       string        `json:"name"`
	Duration   time.Duration `json:"duration_ns"`
	DurationMs int64         `json:"duration_ms"`
}
