// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

package predict

import (
	"reflect"
	"testing"

	"github.com/tomtom215/stylecast/internal/config"
)

func heuristicConfig() *config.HeuristicConfig {
	return &config.HeuristicConfig{
		PriorYear:          2024,
		CurrentYear:        2025,
		SeasonCodes:        []string{"SS1", "SS2"},
		UnresolvedSentinel: -1,
	}
}

func TestZeroSales(t *testing.T) {
	tests := []struct {
		name    string
		prior   float64
		current float64
		booked  bool
		want    int
	}{
		{"prior sales, no current, no booking", 5, 0, false, 0},
		{"prior sales, no current, booked", 5, 0, true, -1},
		{"prior sales, current sales", 5, 3, false, -1},
		{"no prior sales", 0, 0, false, -1},
		{"no history at all", 0, 0, false, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prior := map[string]float64{}
			current := map[string]float64{}
			if tt.prior > 0 {
				prior["ST-1"] = tt.prior
			}
			if tt.current > 0 {
				current["ST-1"] = tt.current
			}
			booked := map[string]struct{}{}
			if tt.booked {
				booked["ST-1"] = struct{}{}
			}

			got := ZeroSales([]string{"ST-1"}, prior, current, booked, heuristicConfig())
			if got["ST-1"] != tt.want {
				t.Fatalf("prediction = %d, want %d", got["ST-1"], tt.want)
			}
		})
	}
}

func TestZeroSalesCoversEveryStyle(t *testing.T) {
	styles := []string{"ST-1", "ST-2", "ST-3"}
	got := ZeroSales(styles, map[string]float64{"ST-2": 4}, nil, nil, heuristicConfig())
	if len(got) != len(styles) {
		t.Fatalf("got %d predictions, want %d", len(got), len(styles))
	}
	if got["ST-2"] != 0 {
		t.Fatalf("ST-2 = %d, want 0", got["ST-2"])
	}
	for _, style := range []string{"ST-1", "ST-3"} {
		if got[style] != -1 {
			t.Fatalf("%s = %d, want sentinel", style, got[style])
		}
	}
}

func TestAssemblePredictions(t *testing.T) {
	styles := []string{"ST-1", "ST-2"}
	predictions := map[string]int{"ST-1": 0, "ST-2": -1}
	totals := map[string][]float64{"ST-1": {10, 20}}
	features := map[string][]float64{"ST-1": {1, 0}}

	rows := AssemblePredictions(styles, predictions, totals, features, 2)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	if rows[0].StyleCode != "ST-1" || rows[0].Prediction != 0 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if !reflect.DeepEqual(rows[0].BookingTotals, []float64{10, 20}) {
		t.Fatalf("ST-1 totals = %v", rows[0].BookingTotals)
	}

	// No bookings and no metadata: zero totals, nil features.
	if !reflect.DeepEqual(rows[1].BookingTotals, []float64{0, 0}) {
		t.Fatalf("ST-2 totals = %v", rows[1].BookingTotals)
	}
	if rows[1].Features != nil {
		t.Fatalf("ST-2 features = %v, want nil", rows[1].Features)
	}
	if rows[1].Prediction != -1 {
		t.Fatalf("ST-2 prediction = %d, want sentinel", rows[1].Prediction)
	}
}
