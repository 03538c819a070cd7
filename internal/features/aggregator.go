// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

// Package features turns raw product-metadata records into the numeric
// feature table the clustering and projection steps consume.
//
// Each categorical attribute is expanded into one indicator column per
// observed category value ("category=shoes", "color_family=red", ...).
// A product with several raw records gets the mean indicator across them,
// so every value lies in [0,1]: 1 when the attribute is invariant for the
// product, a fraction when its records disagree.
package features

import (
	"fmt"
	"sort"

	"github.com/tomtom215/stylecast/internal/models"
)

// Table is the aggregated feature table: exactly one row per distinct
// product key, one column per observed category value.
//
// Keys are sorted ascending and every consumer of the table (clusterer,
// projection, charts, exports) shares this ordering, so cluster labels and
// 2-D coordinates can be joined by position without misalignment.
type Table struct {
	// Keys holds the distinct product keys, sorted ascending.
	Keys []string

	// Columns holds the indicator column names, "attribute=value", sorted.
	Columns []string

	// Matrix holds one row per key in Keys order, one value per column in
	// Columns order.
	Matrix [][]float64

	rowIndex map[string]int
}

// Row returns the feature vector for a product key.
func (t *Table) Row(key string) ([]float64, bool) {
	i, ok := t.rowIndex[key]
	if !ok {
		return nil, false
	}
	return t.Matrix[i], true
}

// Aggregate builds the feature table from raw product records. attributes
// is the closed list of categorical attributes to encode; attribute values
// not present in a record are simply not counted (they dilute nothing,
// the mean is over the product's records, not over attributes).
//
// Fails fast on empty input or a record with an empty product key - both
// indicate broken upstream filtering, not conditions to paper over.
func Aggregate(records []models.ProductRecord, attributes []string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no product records to aggregate")
	}
	if len(attributes) == 0 {
		return nil, fmt.Errorf("no categorical attributes configured")
	}

	// First pass: collect keys, record counts and the observed category
	// values per attribute.
	recordCount := make(map[string]int)
	observed := make(map[string]bool)
	for i := range records {
		rec := &records[i]
		if rec.StyleCode == "" {
			return nil, fmt.Errorf("product record %d has an empty product key", i)
		}
		recordCount[rec.StyleCode]++
		for _, attr := range attributes {
			if value, ok := rec.Attributes[attr]; ok && value != "" {
				observed[columnName(attr, value)] = true
			}
		}
	}

	keys := make([]string, 0, len(recordCount))
	for key := range recordCount {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	columns := make([]string, 0, len(observed))
	for col := range observed {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	colIndex := make(map[string]int, len(columns))
	for i, col := range columns {
		colIndex[col] = i
	}
	rowIndex := make(map[string]int, len(keys))
	for i, key := range keys {
		rowIndex[key] = i
	}

	// Second pass: sum indicators, then divide by the key's record count
	// to get mean indicators.
	matrix := make([][]float64, len(keys))
	for i := range matrix {
		matrix[i] = make([]float64, len(columns))
	}

	for i := range records {
		rec := &records[i]
		row := matrix[rowIndex[rec.StyleCode]]
		for _, attr := range attributes {
			if value, ok := rec.Attributes[attr]; ok && value != "" {
				row[colIndex[columnName(attr, value)]]++
			}
		}
	}

	for i, key := range keys {
		n := float64(recordCount[key])
		for j := range matrix[i] {
			matrix[i][j] /= n
		}
	}

	return &Table{
		Keys:     keys,
		Columns:  columns,
		Matrix:   matrix,
		rowIndex: rowIndex,
	}, nil
}

// columnName renders the indicator column name for an attribute value.
func columnName(attribute, value string) string {
	return attribute + "=" + value
}
