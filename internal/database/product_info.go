// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tomtom215/stylecast/internal/config"
	"github.com/tomtom215/stylecast/internal/models"
)

// ProductRecords returns the raw product-metadata rows for the configured
// key column and attribute list. The rows are ordered by key so repeated
// runs see identical input ordering.
func (db *DB) ProductRecords(ctx context.Context, feat *config.FeaturesConfig) ([]models.ProductRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	cols := make([]string, 0, len(feat.Attributes)+1)
	cols = append(cols, quoteIdent(feat.KeyColumn))
	for _, attr := range feat.Attributes {
		cols = append(cols, quoteIdent(attr))
	}

	query := fmt.Sprintf(`SELECT %s FROM product_info ORDER BY %s`,
		strings.Join(cols, ", "), quoteIdent(feat.KeyColumn))

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query product records: %w", err)
	}
	defer closeQuietly(rows)

	var records []models.ProductRecord
	for rows.Next() {
		key := new(string)
		values := make([]sql.NullString, len(feat.Attributes))
		dest := make([]interface{}, 0, len(feat.Attributes)+1)
		dest = append(dest, key)
		for i := range values {
			dest = append(dest, &values[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan product record: %w", err)
		}

		rec := models.ProductRecord{
			StyleCode:  *key,
			Attributes: make(map[string]string, len(feat.Attributes)),
		}
		for i, attr := range feat.Attributes {
			if values[i].Valid {
				rec.Attributes[attr] = values[i].String
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product records: %w", err)
	}

	return records, nil
}
