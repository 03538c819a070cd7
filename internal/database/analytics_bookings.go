// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

// Bookings analytics. Bookings are forward-looking retailer order
// quantities; a row's season_code is interpreted as the season the units
// are booked FOR (see LoadInputs for the documented assumption).

package database

import (
	"context"
	"fmt"
)

// BookedStyles returns the set of product keys with at least one booking
// row in any of the given seasons.
func (db *DB) BookedStyles(ctx context.Context, seasons []string) (map[string]struct{}, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if len(seasons) == 0 {
		return map[string]struct{}{}, nil
	}

	query := `SELECT DISTINCT style_code FROM bookings WHERE season_code IN (`
	args := make([]interface{}, len(seasons))
	for i, s := range seasons {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args[i] = s
	}
	query += ")"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query booked styles: %w", err)
	}
	defer closeQuietly(rows)

	booked := make(map[string]struct{})
	for rows.Next() {
		var style string
		if err := rows.Scan(&style); err != nil {
			return nil, fmt.Errorf("failed to scan booked style: %w", err)
		}
		booked[style] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read booked styles: %w", err)
	}

	return booked, nil
}

// SeasonBookingTotals returns, per product key, the total booking quantity
// for each requested season, in the order the seasons were given. Products
// with no bookings in any requested season are absent from the map; missing
// seasons for a present product are zero.
func (db *DB) SeasonBookingTotals(ctx context.Context, seasons []string) (map[string][]float64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if len(seasons) == 0 {
		return map[string][]float64{}, nil
	}

	seasonIndex := make(map[string]int, len(seasons))
	query := `SELECT style_code, season_code, SUM(booking_qty)
		FROM bookings
		WHERE season_code IN (`
	args := make([]interface{}, len(seasons))
	for i, s := range seasons {
		seasonIndex[s] = i
		if i > 0 {
			query += ", "
		}
		query += "?"
		args[i] = s
	}
	query += `) GROUP BY style_code, season_code`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query season booking totals: %w", err)
	}
	defer closeQuietly(rows)

	totals := make(map[string][]float64)
	for rows.Next() {
		var style, season string
		var qty float64
		if err := rows.Scan(&style, &season, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan booking total: %w", err)
		}
		if _, ok := totals[style]; !ok {
			totals[style] = make([]float64, len(seasons))
		}
		totals[style][seasonIndex[season]] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read season booking totals: %w", err)
	}

	return totals, nil
}

// SeasonBooking is one product's booking total for one season, with the
// immediately preceding season's total alongside.
type SeasonBooking struct {
	StyleCode string
	Season    string
	Total     float64

	// LaggedTotal is the booking total of the product's previous booked
	// season in season-code order, zero when no prior season exists.
	LaggedTotal float64
}

// LaggedBookings returns every product's per-season booking totals together
// with the lagged (previous-season) total. Season order is the lexical order
// of season codes within each product, which matches the chronological
// labelling convention of the season codes.
func (db *DB) LaggedBookings(ctx context.Context) (map[string][]SeasonBooking, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		WITH season_totals AS (
			SELECT style_code, season_code, SUM(booking_qty) AS total
			FROM bookings
			GROUP BY style_code, season_code
		)
		SELECT
			style_code,
			season_code,
			total,
			COALESCE(LAG(total) OVER (PARTITION BY style_code ORDER BY season_code), 0) AS lagged_total
		FROM season_totals
		ORDER BY style_code, season_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lagged bookings: %w", err)
	}
	defer closeQuietly(rows)

	bookings := make(map[string][]SeasonBooking)
	for rows.Next() {
		var b SeasonBooking
		if err := rows.Scan(&b.StyleCode, &b.Season, &b.Total, &b.LaggedTotal); err != nil {
			return nil, fmt.Errorf("failed to scan lagged booking: %w", err)
		}
		bookings[b.StyleCode] = append(bookings[b.StyleCode], b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lagged bookings: %w", err)
	}

	return bookings, nil
}
