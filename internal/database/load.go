// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

package database

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/stylecast/internal/config"
	"github.com/tomtom215/stylecast/internal/logging"
	"github.com/tomtom215/stylecast/internal/models"
)

// requiredColumns lists, per fixed-schema input, the column names the CSV
// must carry. The product-info table is checked separately because its
// attribute columns come from configuration.
var requiredColumns = map[string][]string{
	"pos":      {"style_code", "activity_date", "net_units", "season_code"},
	"scoring":  {"style_code"},
	"bookings": {"style_code", "season_code", "booking_qty"},
}

// LoadInputs ingests the four input CSVs. Each file is staged via DuckDB's
// read_csv with auto-detection, its header is checked against the required
// columns, and the staged rows are cast into the typed table. Any missing
// column, unparseable date or non-numeric quantity aborts the load with a
// descriptive error; nothing downstream ever sees partial data.
//
// Booking semantics: the season_code on a bookings row is read as the season
// the units are booked FOR, not the season the order was placed in. The
// source data does not distinguish the two; this is the documented
// assumption and it is surfaced in the run summary.
func (db *DB) LoadInputs(ctx context.Context, in *config.InputsConfig, feat *config.FeaturesConfig) (models.InputCounts, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var counts models.InputCounts

	if err := db.loadTyped(ctx, "pos", in.PointOfSale,
		`INSERT INTO pos
		 SELECT CAST(style_code AS VARCHAR),
		        CAST(activity_date AS DATE),
		        CAST(net_units AS DOUBLE),
		        CAST(season_code AS VARCHAR)
		 FROM staging`); err != nil {
		return counts, err
	}

	if err := db.loadTyped(ctx, "scoring", in.Scoring,
		`INSERT INTO scoring
		 SELECT CAST(style_code AS VARCHAR)
		 FROM staging`); err != nil {
		return counts, err
	}

	if err := db.loadTyped(ctx, "bookings", in.Bookings,
		`INSERT INTO bookings
		 SELECT CAST(style_code AS VARCHAR),
		        CAST(season_code AS VARCHAR),
		        CAST(booking_qty AS DOUBLE)
		 FROM staging`); err != nil {
		return counts, err
	}

	if err := db.loadProductInfo(ctx, in.ProductInfo, feat); err != nil {
		return counts, err
	}

	var err error
	if counts.PointOfSale, err = db.count(ctx, "pos"); err != nil {
		return counts, err
	}
	if counts.Scoring, err = db.count(ctx, "scoring"); err != nil {
		return counts, err
	}
	if counts.Bookings, err = db.count(ctx, "bookings"); err != nil {
		return counts, err
	}
	if counts.ProductInfo, err = db.count(ctx, "product_info"); err != nil {
		return counts, err
	}

	if counts.PointOfSale == 0 {
		return counts, fmt.Errorf("point-of-sale table %s is empty", in.PointOfSale)
	}
	if counts.Scoring == 0 {
		return counts, fmt.Errorf("scoring list %s is empty", in.Scoring)
	}

	logging.Info().
		Int64("pos", counts.PointOfSale).
		Int64("scoring", counts.Scoring).
		Int64("bookings", counts.Bookings).
		Int64("product_info", counts.ProductInfo).
		Msg("Inputs loaded")

	return counts, nil
}

// loadTyped stages a CSV, verifies its columns and casts it into the typed
// table via insertSQL (which selects FROM staging).
func (db *DB) loadTyped(ctx context.Context, table, path, insertSQL string) error {
	if err := db.stage(ctx, path); err != nil {
		return fmt.Errorf("failed to read %s table from %s: %w", table, path, err)
	}
	defer db.dropStaging(ctx)

	if err := db.checkColumns(ctx, "staging", requiredColumns[table], path); err != nil {
		return err
	}

	// Casts run here; a malformed date or quantity fails the whole insert.
	if _, err := db.conn.ExecContext(ctx, insertSQL); err != nil {
		return fmt.Errorf("failed to load %s table from %s: %w", table, path, err)
	}

	return nil
}

// loadProductInfo stages the product-metadata CSV and keeps only the key
// column and the configured categorical attributes. The attribute list is
// closed: anything else in the file (like a high-cardinality design code)
// is dropped here and never reaches the encoder.
func (db *DB) loadProductInfo(ctx context.Context, path string, feat *config.FeaturesConfig) error {
	if err := db.stage(ctx, path); err != nil {
		return fmt.Errorf("failed to read product-info table from %s: %w", path, err)
	}
	defer db.dropStaging(ctx)

	required := append([]string{feat.KeyColumn}, feat.Attributes...)
	if err := db.checkColumns(ctx, "staging", required, path); err != nil {
		return err
	}

	cols := make([]string, 0, len(required))
	for _, c := range required {
		cols = append(cols, fmt.Sprintf("CAST(%s AS VARCHAR) AS %s", quoteIdent(c), quoteIdent(c)))
	}

	query := fmt.Sprintf(
		`CREATE OR REPLACE TABLE product_info AS SELECT %s FROM staging`,
		strings.Join(cols, ", "))

	if _, err := db.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to load product-info table from %s: %w", path, err)
	}

	return nil
}

// stage reads a CSV into a staging table with auto-detected types.
func (db *DB) stage(ctx context.Context, path string) error {
	_, err := db.conn.ExecContext(ctx,
		`CREATE OR REPLACE TABLE staging AS SELECT * FROM read_csv(?, header = true, auto_detect = true)`,
		path)
	return err
}

// dropStaging removes the staging table; the staged copy must not outlive
// the load it served.
func (db *DB) dropStaging(ctx context.Context) {
	if _, err := db.conn.ExecContext(ctx, `DROP TABLE IF EXISTS staging`); err != nil {
		logging.Warn().Err(err).Msg("Failed to drop staging table")
	}
}

// checkColumns verifies that table carries every required column, and
// reports all missing ones at once.
func (db *DB) checkColumns(ctx context.Context, table string, required []string, path string) error {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_name = ?`,
		table)
	if err != nil {
		return fmt.Errorf("failed to inspect columns of %s: %w", path, err)
	}
	defer closeQuietly(rows)

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to inspect columns of %s: %w", path, err)
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to inspect columns of %s: %w", path, err)
	}

	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%s is missing required columns: %s", path, strings.Join(missing, ", "))
	}

	return nil
}

// count returns the row count of a table.
func (db *DB) count(ctx context.Context, table string) (int64, error) {
	var n int64
	// table names here come from a fixed internal set, never user input
	err := db.conn.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// quoteIdent quotes an identifier for interpolation into SQL. Column names
// come from configuration, so they are quoted rather than trusted.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
