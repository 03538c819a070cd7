// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

package models

// ProductRecord is one raw product-metadata row: the product key plus its
// categorical attribute values. A product may have several records; the
// feature aggregator averages their indicators.
type ProductRecord struct {
	StyleCode string `json:"style_code"`

	// Attributes maps attribute name to the observed category value.
	Attributes map[string]string `json:"attributes"`
}

// TrainingRow is one product's row in the cold-start training table. The
// feature indicator columns are carried separately (they vary per dataset)
// and are appended to these fixed columns at export time.
type TrainingRow struct {
	StyleCode string `json:"style_code"`

	// SeasonCode is the season the product's bookings are aligned to.
	SeasonCode string `json:"season_code"`

	// BookingTotal is the booking quantity for that season.
	BookingTotal float64 `json:"booking_total"`

	// LaggedBookingTotal is the immediately preceding season's booking
	// total, zero when no prior season exists.
	LaggedBookingTotal float64 `json:"lagged_booking_total"`

	// EarlySales is the cumulative units over the first early-sales weeks
	// after launch (twelve by default).
	EarlySales float64 `json:"early_sales"`

	// ClusterLabel is the product's hierarchical cluster assignment.
	ClusterLabel int `json:"cluster_label"`

	// Features holds the indicator column values in the feature table's
	// column order.
	Features []float64 `json:"-"`
}

// PredictionRow is one scoring-list product's row in the predictions table.
type PredictionRow struct {
	StyleCode string `json:"style_code"`

	// BookingTotals holds the booking quantity per target season, in the
	// configured season order.
	BookingTotals []float64 `json:"booking_totals"`

	// Prediction is 0 for heuristically resolved zero-sales products and
	// the configured sentinel otherwise.
	Prediction int `json:"prediction"`

	// Features holds the indicator column values in the feature table's
	// column order. Empty when the product has no metadata row.
	Features []float64 `json:"-"`
}
