// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

// Sales analytics over the weekly point-of-sale table. Everything the two
// prediction rules need from sales history comes from here: yearly
// aggregates for the zero-sales heuristic, and launch timing plus
// early-window cumulative sales for cold-start cohort selection.

package database

import (
	"context"
	"fmt"
	"time"
)

// YearlySales returns the aggregate units sold per product key for one
// calendar year. Products with no sales that year are absent from the map.
func (db *DB) YearlySales(ctx context.Context, year int) (map[string]float64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT style_code, SUM(net_units) AS units
		FROM pos
		WHERE EXTRACT(year FROM activity_date) = ?
		GROUP BY style_code`,
		year)
	if err != nil {
		return nil, fmt.Errorf("failed to query yearly sales for %d: %w", year, err)
	}
	defer closeQuietly(rows)

	sales := make(map[string]float64)
	for rows.Next() {
		var style string
		var units float64
		if err := rows.Scan(&style, &units); err != nil {
			return nil, fmt.Errorf("failed to scan yearly sales row: %w", err)
		}
		sales[style] = units
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read yearly sales: %w", err)
	}

	return sales, nil
}

// GlobalMinDate returns the earliest activity date in the point-of-sale
// table. An empty table is an explicit error: every downstream window is
// anchored on this date.
func (db *DB) GlobalMinDate(ctx context.Context) (time.Time, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var minDate *time.Time
	err := db.conn.QueryRowContext(ctx, `SELECT MIN(activity_date) FROM pos`).Scan(&minDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query global minimum date: %w", err)
	}
	if minDate == nil {
		return time.Time{}, fmt.Errorf("point-of-sale table is empty, no global minimum date")
	}

	return *minDate, nil
}

// SalesHistory is one product's launch timing and early-window sales,
// derived from its weekly point-of-sale records.
type SalesHistory struct {
	StyleCode string

	// FirstSale is the product's earliest activity date.
	FirstSale time.Time

	// WeeklyRecords is the number of observed weekly sales records.
	WeeklyRecords int

	// EarlySales is the cumulative units over the first N weekly records,
	// ordered by activity date. N is the earlyWeeks argument below.
	EarlySales float64
}

// SalesHistories returns per-product launch timing and the cumulative units
// of each product's first earlyWeeks weekly records. Products are keyed by
// style code; products absent from the point-of-sale table are absent here.
func (db *DB) SalesHistories(ctx context.Context, earlyWeeks int) (map[string]SalesHistory, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	// ROW_NUMBER orders each product's weekly records; the early-sales sum
	// is restricted to the first earlyWeeks of them.
	rows, err := db.conn.QueryContext(ctx, `
		WITH numbered AS (
			SELECT
				style_code,
				activity_date,
				net_units,
				ROW_NUMBER() OVER (PARTITION BY style_code ORDER BY activity_date) AS week_rank
			FROM pos
		)
		SELECT
			style_code,
			MIN(activity_date) AS first_sale,
			COUNT(*) AS weekly_records,
			COALESCE(SUM(net_units) FILTER (WHERE week_rank <= ?), 0) AS early_sales
		FROM numbered
		GROUP BY style_code`,
		earlyWeeks)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales histories: %w", err)
	}
	defer closeQuietly(rows)

	histories := make(map[string]SalesHistory)
	for rows.Next() {
		var h SalesHistory
		if err := rows.Scan(&h.StyleCode, &h.FirstSale, &h.WeeklyRecords, &h.EarlySales); err != nil {
			return nil, fmt.Errorf("failed to scan sales history row: %w", err)
		}
		histories[h.StyleCode] = h
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales histories: %w", err)
	}

	return histories, nil
}

// ScoringStyles returns the distinct scoring-list product keys, sorted.
func (db *DB) ScoringStyles(ctx context.Context) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT style_code FROM scoring ORDER BY style_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scoring styles: %w", err)
	}
	defer closeQuietly(rows)

	var styles []string
	for rows.Next() {
		var style string
		if err := rows.Scan(&style); err != nil {
			return nil, fmt.Errorf("failed to scan scoring style: %w", err)
		}
		styles = append(styles, style)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scoring styles: %w", err)
	}

	return styles, nil
}
