// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

// Package main is the entry point for the Stylecast batch run.
//
// Stylecast prepares the training and prediction tables for retail
// cold-start sales forecasting. One run reads four flat CSV inputs
// (point-of-sale history, scoring list, bookings, product metadata),
// aggregates categorical product attributes into indicator features,
// clusters the products hierarchically, applies the zero-sales heuristic,
// selects the cold-start training cohort, and writes the results out.
//
// # Execution Order
//
//  1. Configuration: load settings from config file and environment (Koanf v2)
//  2. Logging: zerolog, console by default
//  3. Database: embedded DuckDB, in-memory by default
//  4. Pipeline: load, aggregate, cluster, project, predict, export
//
// # Configuration
//
// Configuration is loaded with layered sources (highest priority wins):
//   - Environment variables (STYLECAST_ prefix)
//   - Config file (config.yaml, or STYLECAST_CONFIG)
//   - Built-in defaults
//
// # Example Usage
//
// Run against a config file:
//
//	STYLECAST_CONFIG=./config.yaml ./stylecast
//
// Override a single input without touching the file:
//
//	STYLECAST_INPUTS_POINT_OF_SALE=./pos_2026.csv ./stylecast
//
// A run either completes fully or exits non-zero with the failing step in
// the log; there are no partial exports.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/stylecast/internal/config"
	"github.com/tomtom215/stylecast/internal/logging"
	"github.com/tomtom215/stylecast/internal/pipeline"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("pos", cfg.Inputs.PointOfSale).
		Str("scoring", cfg.Inputs.Scoring).
		Str("db_path", cfg.Database.Path).
		Int("target_clusters", cfg.Clustering.TargetClusters).
		Msg("Configuration loaded")

	// A batch run has nothing to drain on interrupt; cancelling the
	// context aborts the current step and the run fails cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := pipeline.Run(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Run failed")
	}

	logging.Info().
		Str("training", cfg.Outputs.Training).
		Str("predictions", cfg.Outputs.Predictions).
		Int("cold_start_selected", summary.ColdStart.Selected).
		Int("zero_sales_resolved", summary.Heuristic.ResolvedZero).
		Msg("Stylecast run finished")
}
