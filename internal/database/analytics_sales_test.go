// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

package database

import (
	"context"
	"testing"
	"time"
)

func TestYearlySales(t *testing.T) {
	db := setupTestDB(t)
	seedPos(t, db, [][4]interface{}{
		{"A100", "2024-03-04", 5.0, "SS1"},
		{"A100", "2024-03-11", 2.0, "SS1"},
		{"A100", "2025-01-06", 4.0, "SS1"},
		{"B200", "2024-06-02", 7.0, "SS2"},
	})

	t.Run("prior year aggregates per style", func(t *testing.T) {
		sales, err := db.YearlySales(context.Background(), 2024)
		if err != nil {
			t.Fatalf("YearlySales() error: %v", err)
		}
		if got := sales["A100"]; got != 7.0 {
			t.Errorf("A100 2024 sales = %f, want 7", got)
		}
		if got := sales["B200"]; got != 7.0 {
			t.Errorf("B200 2024 sales = %f, want 7", got)
		}
	})

	t.Run("style with no sales that year is absent", func(t *testing.T) {
		sales, err := db.YearlySales(context.Background(), 2025)
		if err != nil {
			t.Fatalf("YearlySales() error: %v", err)
		}
		if _, ok := sales["B200"]; ok {
			t.Error("B200 should be absent from 2025 sales")
		}
		if got := sales["A100"]; got != 4.0 {
			t.Errorf("A100 2025 sales = %f, want 4", got)
		}
	})
}

func TestGlobalMinDate(t *testing.T) {
	t.Run("empty table is an explicit error", func(t *testing.T) {
		db := setupTestDB(t)
		if _, err := db.GlobalMinDate(context.Background()); err == nil {
			t.Error("GlobalMinDate() should fail on empty pos table")
		}
	})

	t.Run("returns earliest activity date", func(t *testing.T) {
		db := setupTestDB(t)
		seedPos(t, db, [][4]interface{}{
			{"A100", "2024-05-06", 5.0, "SS1"},
			{"B200", "2024-03-04", 7.0, "SS1"},
		})

		minDate, err := db.GlobalMinDate(context.Background())
		if err != nil {
			t.Fatalf("GlobalMinDate() error: %v", err)
		}
		want := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
		if !minDate.Equal(want) {
			t.Errorf("GlobalMinDate() = %v, want %v", minDate, want)
		}
	})
}

func TestSalesHistories(t *testing.T) {
	db := setupTestDB(t)

	// A100 has 4 weekly records; with earlyWeeks=3 the last one must not
	// count toward early sales.
	seedPos(t, db, [][4]interface{}{
		{"A100", "2024-03-04", 5.0, "SS1"},
		{"A100", "2024-03-11", 2.0, "SS1"},
		{"A100", "2024-03-18", 1.0, "SS1"},
		{"A100", "2024-03-25", 9.0, "SS1"},
		{"B200", "2024-06-02", 7.0, "SS2"},
	})

	histories, err := db.SalesHistories(context.Background(), 3)
	if err != nil {
		t.Fatalf("SalesHistories() error: %v", err)
	}

	t.Run("early sales window is capped", func(t *testing.T) {
		h, ok := histories["A100"]
		if !ok {
			t.Fatal("A100 missing from histories")
		}
		if h.WeeklyRecords != 4 {
			t.Errorf("A100 weekly records = %d, want 4", h.WeeklyRecords)
		}
		if h.EarlySales != 8.0 {
			t.Errorf("A100 early sales = %f, want 8 (first three weeks)", h.EarlySales)
		}
		wantFirst := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
		if !h.FirstSale.Equal(wantFirst) {
			t.Errorf("A100 first sale = %v, want %v", h.FirstSale, wantFirst)
		}
	})

	t.Run("short history sums everything", func(t *testing.T) {
		h := histories["B200"]
		if h.WeeklyRecords != 1 {
			t.Errorf("B200 weekly records = %d, want 1", h.WeeklyRecords)
		}
		if h.EarlySales != 7.0 {
			t.Errorf("B200 early sales = %f, want 7", h.EarlySales)
		}
	})
}

func TestScoringStyles(t *testing.T) {
	db := setupTestDB(t)
	for _, style := range []string{"C300", "A100", "A100", "B200"} {
		if _, err := db.conn.Exec(`INSERT INTO scoring VALUES (?)`, style); err != nil {
			t.Fatalf("Failed to seed scoring row: %v", err)
		}
	}

	styles, err := db.ScoringStyles(context.Background())
	if err != nil {
		t.Fatalf("ScoringStyles() error: %v", err)
	}

	want := []string{"A100", "B200", "C300"}
	if len(styles) != len(want) {
		t.Fatalf("got %d styles, want %d (deduplicated)", len(styles), len(want))
	}
	for i, s := range want {
		if styles[i] != s {
			t.Errorf("styles[%d] = %q, want %q (sorted)", i, styles[i], s)
		}
	}
}
