// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

// Export of the two output tables. Rows computed in Go are written into
// DuckDB tables and exported with COPY TO, so the CSVs get DuckDB's
// consistent quoting and formatting rather than hand-rolled serialization.

package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tomtom215/stylecast/internal/logging"
	"github.com/tomtom215/stylecast/internal/models"
)

// WriteTrainingTable materializes the cold-start training table. Fixed
// columns come first, then one DOUBLE column per feature-table column, in
// the feature table's order.
func (db *DB) WriteTrainingTable(ctx context.Context, featureColumns []string, trainingRows []models.TrainingRow) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	fixed := []string{
		"style_code VARCHAR",
		"season_code VARCHAR",
		"booking_total DOUBLE",
		"lagged_booking_total DOUBLE",
		"early_sales DOUBLE",
		"cluster_label INTEGER",
	}
	ddl := fmt.Sprintf(`CREATE OR REPLACE TABLE training (%s%s)`,
		strings.Join(fixed, ", "), featureColumnDDL(featureColumns))

	if _, err := db.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create training table: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO training VALUES (?, ?, ?, ?, ?, ?%s)`,
		strings.Repeat(", ?", len(featureColumns)))

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin training insert: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare training insert: %w", err)
	}
	defer closeQuietly(stmt)

	for i := range trainingRows {
		row := &trainingRows[i]
		if len(row.Features) != len(featureColumns) {
			_ = tx.Rollback()
			return fmt.Errorf("training row %s has %d feature values, want %d",
				row.StyleCode, len(row.Features), len(featureColumns))
		}

		args := make([]interface{}, 0, 6+len(featureColumns))
		args = append(args, row.StyleCode, row.SeasonCode, row.BookingTotal,
			row.LaggedBookingTotal, row.EarlySales, row.ClusterLabel)
		for _, v := range row.Features {
			args = append(args, v)
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert training row %s: %w", row.StyleCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit training rows: %w", err)
	}

	return nil
}

// WritePredictionsTable materializes the predictions table: one row per
// scoring-list product, one booking-total column per target season.
func (db *DB) WritePredictionsTable(ctx context.Context, seasons, featureColumns []string, predictionRows []models.PredictionRow) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	cols := []string{"style_code VARCHAR"}
	for _, s := range seasons {
		cols = append(cols, fmt.Sprintf("%s DOUBLE", quoteIdent("booking_"+strings.ToLower(s))))
	}
	cols = append(cols, "prediction INTEGER")

	ddl := fmt.Sprintf(`CREATE OR REPLACE TABLE predictions (%s%s)`,
		strings.Join(cols, ", "), featureColumnDDL(featureColumns))

	if _, err := db.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create predictions table: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO predictions VALUES (?%s, ?%s)`,
		strings.Repeat(", ?", len(seasons)), strings.Repeat(", ?", len(featureColumns)))

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin predictions insert: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare predictions insert: %w", err)
	}
	defer closeQuietly(stmt)

	for i := range predictionRows {
		row := &predictionRows[i]
		if len(row.BookingTotals) != len(seasons) {
			_ = tx.Rollback()
			return fmt.Errorf("prediction row %s has %d booking totals, want %d",
				row.StyleCode, len(row.BookingTotals), len(seasons))
		}

		args := make([]interface{}, 0, 2+len(seasons)+len(featureColumns))
		args = append(args, row.StyleCode)
		for _, v := range row.BookingTotals {
			args = append(args, v)
		}
		args = append(args, row.Prediction)

		// Products without metadata get NULL feature columns rather than
		// fabricated zeros.
		if len(row.Features) == 0 {
			for range featureColumns {
				args = append(args, nil)
			}
		} else if len(row.Features) == len(featureColumns) {
			for _, v := range row.Features {
				args = append(args, v)
			}
		} else {
			_ = tx.Rollback()
			return fmt.Errorf("prediction row %s has %d feature values, want %d",
				row.StyleCode, len(row.Features), len(featureColumns))
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert prediction row %s: %w", row.StyleCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit prediction rows: %w", err)
	}

	return nil
}

// ExportCSV copies a table to a CSV file with a header row.
func (db *DB) ExportCSV(ctx context.Context, table, outputPath string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	// table names here come from a fixed internal set, never user input
	query := fmt.Sprintf(`COPY %s TO ? (FORMAT CSV, HEADER)`, table)
	if _, err := db.conn.ExecContext(ctx, query, outputPath); err != nil {
		return fmt.Errorf("failed to export %s to %s: %w", table, outputPath, err)
	}

	logging.Info().Str("table", table).Str("path", outputPath).Msg("Table exported")
	return nil
}

// featureColumnDDL renders the per-feature DOUBLE columns for a CREATE
// TABLE statement, with a leading comma when any exist.
func featureColumnDDL(featureColumns []string) string {
	if len(featureColumns) == 0 {
		return ""
	}
	parts := make([]string, 0, len(featureColumns))
	for _, c := range featureColumns {
		parts = append(parts, fmt.Sprintf("%s DOUBLE", quoteIdent(c)))
	}
	return ", " + strings.Join(parts, ", ")
}
