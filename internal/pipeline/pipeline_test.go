// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

package pipeline

import (
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/stylecast/internal/config"
	"github.com/tomtom215/stylecast/internal/models"
)

// End-to-end run over a synthetic dataset small enough to reason about by
// hand:
//
//	OLD-1  sells weekly from the dataset's first day through the current
//	       year and has a booking, so the heuristic leaves it unresolved
//	       and it stays out of the cold-start cohort.
//	ZERO-1 sold only in the prior year and has no bookings: the heuristic
//	       resolves it to zero.
//	NEW-1  launches well after the 84-day window with four weekly records
//	       and bookings in both seasons: the only cold-start product.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	pos := "style_code,activity_date,net_units,season_code\n"
	for week := 0; week < 30; week++ {
		d := date("2024-06-03").AddDate(0, 0, 7*week)
		pos += "OLD-1," + d.Format("2006-01-02") + ",3,SS1\n"
	}
	for week := 0; week < 4; week++ {
		d := date("2024-07-01").AddDate(0, 0, 7*week)
		pos += "ZERO-1," + d.Format("2006-01-02") + ",2,SS1\n"
	}
	for week := 0; week < 4; week++ {
		d := date("2025-05-05").AddDate(0, 0, 7*week)
		pos += "NEW-1," + d.Format("2006-01-02") + ",5,SS2\n"
	}

	scoring := "style_code\nOLD-1\nZERO-1\nNEW-1\n"

	bookings := "style_code,season_code,booking_qty\n" +
		"OLD-1,SS1,5\n" +
		"NEW-1,SS1,10\n" +
		"NEW-1,SS2,20\n"

	productInfo := "style_code,category,color_family\n" +
		"OLD-1,apparel,blue\n" +
		"ZERO-1,apparel,red\n" +
		"NEW-1,footwear,blue\n"

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Path:         ":memory:",
			MaxMemory:    "500MB",
			Threads:      1,
			QueryTimeout: 30 * time.Second,
		},
		Inputs: config.InputsConfig{
			PointOfSale: writeFile(t, dir, "pos.csv", pos),
			Scoring:     writeFile(t, dir, "scoring.csv", scoring),
			Bookings:    writeFile(t, dir, "bookings.csv", bookings),
			ProductInfo: writeFile(t, dir, "product_info.csv", productInfo),
		},
		Outputs: config.OutputsConfig{
			Training:    filepath.Join(dir, "out", "training.csv"),
			Predictions: filepath.Join(dir, "out", "predictions.csv"),
			ChartsDir:   filepath.Join(dir, "out", "charts"),
			RunSummary:  filepath.Join(dir, "out", "run_summary.json"),
		},
		Features: config.FeaturesConfig{
			KeyColumn:  "style_code",
			Attributes: []string{"category", "color_family"},
		},
		Clustering: config.ClusteringConfig{
			TargetClusters: 2,
			Linkage:        "complete",
		},
		Heuristic: config.HeuristicConfig{
			PriorYear:          2024,
			CurrentYear:        2025,
			SeasonCodes:        []string{"SS1", "SS2"},
			UnresolvedSentinel: -1,
		},
		ColdStart: config.ColdStartConfig{
			LaunchOffsetDays: 84,
			MinWeeklyRecords: 3,
			EarlyWeeks:       3,
		},
	}
	return cfg
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)

	summary, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	t.Run("input counts", func(t *testing.T) {
		want := models.InputCounts{PointOfSale: 38, Scoring: 3, Bookings: 3, ProductInfo: 3}
		if summary.Inputs != want {
			t.Fatalf("inputs = %+v, want %+v", summary.Inputs, want)
		}
	})

	t.Run("feature table shape", func(t *testing.T) {
		if summary.Features.Products != 3 {
			t.Fatalf("products = %d, want 3", summary.Features.Products)
		}
		// category={apparel,footwear}, color_family={blue,red}
		if summary.Features.Columns != 4 {
			t.Fatalf("columns = %d, want 4", summary.Features.Columns)
		}
	})

	t.Run("clustering", func(t *testing.T) {
		if summary.Clustering.TargetClusters != 2 || summary.Clustering.Linkage != "complete" {
			t.Fatalf("clustering = %+v", summary.Clustering)
		}
		total := 0
		for _, n := range summary.Clustering.Sizes {
			total += n
		}
		if total != 3 {
			t.Fatalf("cluster sizes cover %d products, want 3", total)
		}
	})

	t.Run("heuristic", func(t *testing.T) {
		if summary.Heuristic.Scored != 3 {
			t.Fatalf("scored = %d, want 3", summary.Heuristic.Scored)
		}
		if summary.Heuristic.ResolvedZero != 1 {
			t.Fatalf("resolved = %d, want 1 (ZERO-1)", summary.Heuristic.ResolvedZero)
		}
	})

	t.Run("cold start", func(t *testing.T) {
		if summary.ColdStart.Candidates != 1 || summary.ColdStart.Selected != 1 {
			t.Fatalf("cold start = %+v, want 1 candidate, 1 selected", summary.ColdStart)
		}
	})

	t.Run("training export", func(t *testing.T) {
		records := readCSV(t, cfg.Outputs.Training)
		// Header plus one row per booked season of NEW-1.
		if len(records) != 3 {
			t.Fatalf("training.csv has %d records, want 3: %v", len(records), records)
		}
		header := strings.Join(records[0][:6], ",")
		if header != "style_code,season_code,booking_total,lagged_booking_total,early_sales,cluster_label" {
			t.Fatalf("unexpected header: %s", header)
		}

		var ss2 []string
		for _, row := range records[1:] {
			if row[0] != "NEW-1" {
				t.Fatalf("unexpected training row: %v", row)
			}
			if row[1] == "SS2" {
				ss2 = row
			}
		}
		if ss2 == nil {
			t.Fatalf("no SS2 row in training.csv: %v", records)
		}
		// Booking 20, lagged 10 from SS1, first three weekly records of
		// NEW-1 at 5 units each.
		for col, want := range map[int]float64{2: 20, 3: 10, 4: 15} {
			got, err := strconv.ParseFloat(ss2[col], 64)
			if err != nil {
				t.Fatalf("column %d is not numeric: %v", col, err)
			}
			if math.Abs(got-want) > 1e-9 {
				t.Fatalf("SS2 row column %d = %v, want %v", col, got, want)
			}
		}
	})

	t.Run("predictions export", func(t *testing.T) {
		content := readFile(t, cfg.Outputs.Predictions)
		lines := strings.Split(strings.TrimSpace(content), "\n")
		if len(lines) != 4 {
			t.Fatalf("predictions.csv has %d lines, want 4:\n%s", len(lines), content)
		}
		var zero, unresolved int
		for _, line := range lines[1:] {
			switch {
			case strings.HasPrefix(line, "ZERO-1,"):
				zero++
			default:
				unresolved++
			}
		}
		if zero != 1 || unresolved != 2 {
			t.Fatalf("unexpected prediction rows:\n%s", content)
		}
	})

	t.Run("charts", func(t *testing.T) {
		for _, name := range []string{"pca_scatter.html", "dendrogram.html"} {
			path := filepath.Join(cfg.Outputs.ChartsDir, name)
			if _, err := os.Stat(path); err != nil {
				t.Fatalf("chart %s not written: %v", name, err)
			}
		}
	})

	t.Run("run summary", func(t *testing.T) {
		data := readFile(t, cfg.Outputs.RunSummary)
		var onDisk models.RunSummary
		if err := json.Unmarshal([]byte(data), &onDisk); err != nil {
			t.Fatalf("run summary is not valid JSON: %v", err)
		}
		if len(onDisk.Steps) == 0 {
			t.Fatal("run summary has no step timings")
		}
		if len(onDisk.Warnings) == 0 {
			t.Fatal("run summary is missing the booking-interpretation warning")
		}
	})
}

func TestRunDisabledOptionalOutputs(t *testing.T) {
	cfg := testConfig(t)
	cfg.Outputs.ChartsDir = ""
	cfg.Outputs.RunSummary = ""

	if _, err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(cfg.Outputs.Training), "run_summary.json")); !os.IsNotExist(err) {
		t.Fatal("run summary written despite being disabled")
	}
}

func TestRunFailsFastOnBrokenInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Inputs.Scoring = writeFile(t, t.TempDir(), "scoring.csv", "wrong_column\nX\n")

	if _, err := Run(context.Background(), cfg); err == nil {
		t.Fatal("expected error for missing scoring column")
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", path, err)
	}
	return records
}
