// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

// Package pipeline wires the whole run together: load the four input
// tables, aggregate features, cluster, project, apply the two prediction
// rules, and export. Execution is single-threaded and batch; each step
// owns its derived table and the large intermediates (the distance matrix
// inside the clusterer) never outlive the step that consumed them.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/stylecast/internal/charts"
	"github.com/tomtom215/stylecast/internal/cluster"
	"github.com/tomtom215/stylecast/internal/config"
	"github.com/tomtom215/stylecast/internal/database"
	"github.com/tomtom215/stylecast/internal/features"
	"github.com/tomtom215/stylecast/internal/logging"
	"github.com/tomtom215/stylecast/internal/models"
	"github.com/tomtom215/stylecast/internal/predict"
	"github.com/tomtom215/stylecast/internal/projection"
)

// bookedForWarning documents the unresolved booking-timing ambiguity; it is
// carried in every run summary rather than buried in a code comment.
const bookedForWarning = "bookings interpreted as booked-FOR the stated season, not booked-IN it; " +
	"verify against the source system before comparing seasons"

// Pipeline executes one full data-preparation run.
type Pipeline struct {
	cfg     *config.Config
	db      *database.DB
	summary *models.RunSummary
}

// New creates a pipeline over an open database.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	return &Pipeline{cfg: cfg, db: db}
}

// Run executes every step in order and returns the run summary. Any step
// failure aborts the run; there is no retry and no partial export.
func Run(ctx context.Context, cfg *config.Config) (*models.RunSummary, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logging.Err(cerr).Msg("Failed to close database")
		}
	}()

	return New(cfg, db).Run(ctx)
}

// Run executes the pipeline steps against the pipeline's database.
func (p *Pipeline) Run(ctx context.Context) (*models.RunSummary, error) {
	p.summary = &models.RunSummary{
		StartedAt: time.Now().UTC(),
		Warnings:  []string{bookedForWarning},
	}

	var (
		table     *features.Table
		dendro    *cluster.Dendrogram
		labels    []int
		points    []projection.Point
		cohort    *predict.Cohort
		predicted []models.PredictionRow
	)

	steps := []struct {
		name string
		run  func() error
	}{
		{"load_inputs", func() error {
			counts, err := p.db.LoadInputs(ctx, &p.cfg.Inputs, &p.cfg.Features)
			if err != nil {
				return err
			}
			p.summary.Inputs = counts
			return nil
		}},
		{"aggregate_features", func() error {
			records, err := p.db.ProductRecords(ctx, &p.cfg.Features)
			if err != nil {
				return err
			}
			table, err = features.Aggregate(records, p.cfg.Features.Attributes)
			if err != nil {
				return err
			}
			p.summary.Features = models.FeatureSummary{
				Products:   len(table.Keys),
				Columns:    len(table.Columns),
				Attributes: p.cfg.Features.Attributes,
			}
			return nil
		}},
		{"cluster", func() error {
			var err error
			dendro, labels, err = p.clusterFeatures(ctx, table)
			return err
		}},
		{"project", func() error {
			var err error
			points, err = projection.Project(table.Matrix)
			return err
		}},
		{"render_charts", func() error {
			return p.renderCharts(table.Keys, points, labels, dendro)
		}},
		{"predict", func() error {
			var err error
			cohort, predicted, err = p.predict(ctx, table, labels)
			return err
		}},
		{"export", func() error {
			return p.export(ctx, table.Columns, cohort.Rows, predicted)
		}},
	}

	for _, s := range steps {
		if err := p.step(s.name, s.run); err != nil {
			return nil, fmt.Errorf("step %s: %w", s.name, err)
		}
	}

	p.summary.FinishedAt = time.Now().UTC()
	if err := p.writeSummary(); err != nil {
		return nil, err
	}

	logging.Info().
		Int("training_rows", len(cohort.Rows)).
		Int("predictions", len(predicted)).
		Dur("elapsed", p.summary.FinishedAt.Sub(p.summary.StartedAt)).
		Msg("Run complete")

	return p.summary, nil
}

// clusterFeatures builds the dendrogram, cuts it at the configured K and
// applies any post-hoc label remapping.
func (p *Pipeline) clusterFeatures(ctx context.Context, table *features.Table) (*cluster.Dendrogram, []int, error) {
	clusterer, err := cluster.New(cluster.Config{Linkage: p.cfg.Clustering.Linkage})
	if err != nil {
		return nil, nil, err
	}
	dendro, err := clusterer.Build(ctx, table.Matrix)
	if err != nil {
		return nil, nil, err
	}
	labels, err := dendro.Cut(p.cfg.Clustering.TargetClusters)
	if err != nil {
		return nil, nil, err
	}
	labels = cluster.Remap(labels, p.cfg.Clustering.MergeLabels)

	p.summary.Clustering = models.ClusteringSummary{
		TargetClusters: p.cfg.Clustering.TargetClusters,
		Linkage:        dendro.Linkage,
		Sizes:          cluster.Sizes(labels),
		MergedLabels:   p.cfg.Clustering.MergeLabels,
	}
	return dendro, labels, nil
}

// renderCharts writes the diagnostic HTML charts, unless chart output is
// disabled by an empty charts directory.
func (p *Pipeline) renderCharts(keys []string, points []projection.Point, labels []int, dendro *cluster.Dendrogram) error {
	dir := p.cfg.Outputs.ChartsDir
	if dir == "" {
		logging.Debug().Msg("Chart rendering disabled")
		return nil
	}
	scatterPath := filepath.Join(dir, "pca_scatter.html")
	if err := charts.WriteScatter(scatterPath, "Cluster validation (first two principal components)", keys, points, labels); err != nil {
		return err
	}
	dendroPath := filepath.Join(dir, "dendrogram.html")
	return charts.WriteDendrogram(dendroPath, "Hierarchical merge tree", keys, dendro)
}

// predict runs the zero-sales heuristic over the scoring list and selects
// the cold-start training cohort.
func (p *Pipeline) predict(ctx context.Context, table *features.Table, labels []int) (*predict.Cohort, []models.PredictionRow, error) {
	scoring, err := p.db.ScoringStyles(ctx)
	if err != nil {
		return nil, nil, err
	}
	prior, err := p.db.YearlySales(ctx, p.cfg.Heuristic.PriorYear)
	if err != nil {
		return nil, nil, err
	}
	current, err := p.db.YearlySales(ctx, p.cfg.Heuristic.CurrentYear)
	if err != nil {
		return nil, nil, err
	}
	booked, err := p.db.BookedStyles(ctx, p.cfg.Heuristic.SeasonCodes)
	if err != nil {
		return nil, nil, err
	}

	predictions := predict.ZeroSales(scoring, prior, current, booked, &p.cfg.Heuristic)
	resolved := 0
	for _, v := range predictions {
		if v == 0 {
			resolved++
		}
	}
	p.summary.Heuristic = models.HeuristicSummary{
		Scored:       len(scoring),
		ResolvedZero: resolved,
		SeasonCodes:  p.cfg.Heuristic.SeasonCodes,
	}

	minDate, err := p.db.GlobalMinDate(ctx)
	if err != nil {
		return nil, nil, err
	}
	histories, err := p.db.SalesHistories(ctx, p.cfg.ColdStart.EarlyWeeks)
	if err != nil {
		return nil, nil, err
	}
	bookings, err := p.db.LaggedBookings(ctx)
	if err != nil {
		return nil, nil, err
	}

	labelByKey := make(map[string]int, len(table.Keys))
	featuresByKey := make(map[string][]float64, len(table.Keys))
	for i, key := range table.Keys {
		labelByKey[key] = labels[i]
		featuresByKey[key] = table.Matrix[i]
	}

	cohort, err := predict.SelectCohort(predict.CohortInput{
		ScoringStyles: scoring,
		Histories:     histories,
		GlobalMinDate: minDate,
		Bookings:      bookings,
		Labels:        labelByKey,
		Features:      featuresByKey,
	}, &p.cfg.ColdStart)
	if err != nil {
		return nil, nil, err
	}
	p.summary.ColdStart = models.ColdStartSummary{
		Candidates: cohort.Candidates,
		Selected:   cohort.Selected,
	}

	totals, err := p.db.SeasonBookingTotals(ctx, p.cfg.Heuristic.SeasonCodes)
	if err != nil {
		return nil, nil, err
	}
	predicted := predict.AssemblePredictions(scoring, predictions, totals, featuresByKey, len(p.cfg.Heuristic.SeasonCodes))
	return cohort, predicted, nil
}

// export materializes and copies out the two output tables.
func (p *Pipeline) export(ctx context.Context, featureColumns []string, training []models.TrainingRow, predicted []models.PredictionRow) error {
	if err := p.db.WriteTrainingTable(ctx, featureColumns, training); err != nil {
		return err
	}
	if err := p.db.ExportCSV(ctx, "training", p.cfg.Outputs.Training); err != nil {
		return err
	}
	if err := p.db.WritePredictionsTable(ctx, p.cfg.Heuristic.SeasonCodes, featureColumns, predicted); err != nil {
		return err
	}
	return p.db.ExportCSV(ctx, "predictions", p.cfg.Outputs.Predictions)
}

// writeSummary writes the run summary JSON, unless disabled by an empty
// path.
func (p *Pipeline) writeSummary() error {
	path := p.cfg.Outputs.RunSummary
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create run-summary directory: %w", err)
	}
	data, err := json.MarshalIndent(p.summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	return nil
}

// step runs one pipeline step and records its wall-clock duration.
func (p *Pipeline) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	p.summary.Steps = append(p.summary.Steps, models.StepTiming{
		Name:       name,
		Duration:   elapsed,
		DurationMs: elapsed.Milliseconds(),
	})
	if err != nil {
		logging.Err(err).Str("step", name).Dur("duration", elapsed).Msg("Step failed")
		return err
	}
	logging.Info().Str("step", name).Dur("duration", elapsed).Msg("Step complete")
	return nil
}
