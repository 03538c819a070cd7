// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

package predict

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/stylecast/internal/config"
	"github.com/tomtom215/stylecast/internal/database"
	"github.com/tomtom215/stylecast/internal/models"
)

// ErrCohortOverlap reports a violation of the disjointness invariant: a
// product selected as a cold-start candidate also belongs to the initial
// historical window. That can only come from a bug in the set filtering
// upstream, so the run aborts rather than exporting a training table built
// on it.
var ErrCohortOverlap = errors.New("cold-start candidate set intersects the historical-sales set")

// CohortInput carries the pre-aggregated tables cold-start selection joins.
type CohortInput struct {
	// ScoringStyles is the sorted prediction universe.
	ScoringStyles []string

	// Histories maps product key to launch timing and early-window sales;
	// products that never sold are absent.
	Histories map[string]database.SalesHistory

	// GlobalMinDate anchors the initial historical window.
	GlobalMinDate time.Time

	// Bookings maps product key to its per-season booking totals with the
	// lagged total alongside.
	Bookings map[string][]database.SeasonBooking

	// Labels and Features are the cluster assignment and feature vector
	// per product key, joined into the training rows.
	Labels   map[string]int
	Features map[string][]float64
}

// Cohort is the outcome of cold-start selection: the assembled training
// rows plus the set sizes the run summary records.
type Cohort struct {
	// Rows is the training table, one row per (product, booked season).
	Rows []models.TrainingRow

	// Candidates is the number of scoring-list products outside the
	// initial historical window.
	Candidates int

	// Selected is the number of candidates with sufficient post-launch
	// history to enter the training table.
	Selected int
}

// SelectCohort picks the cold-start training cohort and assembles its
// training rows.
//
// A product is a cold-start candidate when it is on the scoring list but
// outside the initial historical window: its first sale falls strictly
// after GlobalMinDate plus the configured launch offset. Candidates enter
// the cohort when they have at least MinWeeklyRecords observed weekly
// records. Each cohort product contributes one row per booked season; the
// early-window sales, cluster label and feature vector repeat across a
// product's rows.
//
// Products on the scoring list with no sales at all are candidates by
// definition but can never satisfy the record minimum, so they fall out
// here and stay in the predictions table only.
func SelectCohort(in CohortInput, cfg *config.ColdStartConfig) (*Cohort, error) {
	cutoff := in.GlobalMinDate.AddDate(0, 0, cfg.LaunchOffsetDays)

	historical := make(map[string]struct{}, len(in.Histories))
	for style, h := range in.Histories {
		if !h.FirstSale.After(cutoff) {
			historical[style] = struct{}{}
		}
	}

	var candidates []string
	for _, style := range in.ScoringStyles {
		if _, ok := historical[style]; ok {
			continue
		}
		candidates = append(candidates, style)
	}
	sort.Strings(candidates)

	if err := assertDisjoint(candidates, historical); err != nil {
		return nil, err
	}

	cohort := &Cohort{Candidates: len(candidates)}
	for _, style := range candidates {
		history, sold := in.Histories[style]
		if !sold || history.WeeklyRecords < cfg.MinWeeklyRecords {
			continue
		}
		cohort.Selected++

		features, ok := in.Features[style]
		if !ok {
			return nil, fmt.Errorf("cold-start product %q has no product-info record", style)
		}
		label, ok := in.Labels[style]
		if !ok {
			return nil, fmt.Errorf("cold-start product %q has no cluster label", style)
		}

		for _, booking := range in.Bookings[style] {
			cohort.Rows = append(cohort.Rows, models.TrainingRow{
				StyleCode:          style,
				SeasonCode:         booking.Season,
				BookingTotal:       booking.Total,
				LaggedBookingTotal: booking.LaggedTotal,
				EarlySales:         history.EarlySales,
				ClusterLabel:       label,
				Features:           features,
			})
		}
	}
	return cohort, nil
}

// assertDisjoint is the consistency check over the two product sets. It is
// checked even though the sets are disjoint by construction today: the
// invariant must hold across refactors of the filtering above.
func assertDisjoint(candidates []string, historical map[string]struct{}) error {
	for _, style := range candidates {
		if _, ok := historical[style]; ok {
			return fmt.Errorf("%w: style %q in both", ErrCohortOverlap, style)
		}
	}
	return nil
}
