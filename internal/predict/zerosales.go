// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

// Package predict implements the two prediction rules: the heuristic
// zero-sales resolver and the cold-start cohort selector. Both are pure
// set computations over tables the database layer has already aggregated,
// so they are tested without a database.
package predict

import (
	"github.com/tomtom215/stylecast/internal/config"
	"github.com/tomtom215/stylecast/internal/models"
)

// ZeroSales applies the low-hanging-fruit rule to every scoring-list
// product: a product that sold in the prior year, sold nothing in the
// current year, and has no booking in either target season is predicted to
// sell zero units. Everything else gets the unresolved sentinel.
//
// The result maps every input style to a prediction; membership checks
// carry no iteration-order dependency.
func ZeroSales(styles []string, prior, current map[string]float64, booked map[string]struct{}, cfg *config.HeuristicConfig) map[string]int {
	predictions := make(map[string]int, len(styles))
	for _, style := range styles {
		predictions[style] = cfg.UnresolvedSentinel
		if _, isBooked := booked[style]; isBooked {
			continue
		}
		if prior[style] > 0 && current[style] == 0 {
			predictions[style] = 0
		}
	}
	return predictions
}

// AssemblePredictions joins the heuristic output with per-season booking
// totals and feature vectors into the rows of the predictions table, one
// per scoring-list product in input order. Products with no bookings get
// zero totals; products with no metadata row get an empty feature vector,
// exported as NULL feature cells.
func AssemblePredictions(styles []string, predictions map[string]int, bookingTotals map[string][]float64, features map[string][]float64, seasonCount int) []models.PredictionRow {
	rows := make([]models.PredictionRow, 0, len(styles))
	for _, style := range styles {
		totals := bookingTotals[style]
		if totals == nil {
			totals = make([]float64, seasonCount)
		}
		rows = append(rows, models.PredictionRow{
			StyleCode:     style,
			BookingTotals: totals,
			Prediction:    predictions[style],
			Features:      features[style],
		})
	}
	return rows
}
