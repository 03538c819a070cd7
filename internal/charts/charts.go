// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

// Package charts renders the diagnostic HTML charts the analyst uses to
// pick the cluster count and validate the cut: a 2-D projection scatter
// coloured by cluster label, and the dendrogram itself.
package charts

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/tomtom215/stylecast/internal/cluster"
	"github.com/tomtom215/stylecast/internal/projection"
)

// WriteScatter renders the projected feature table as a scatter chart with
// one series per cluster label, written as a standalone HTML file. The
// inputs are positionally aligned: keys[i], points[i] and labels[i] all
// describe the same product.
func WriteScatter(path, title string, keys []string, points []projection.Point, labels []int) error {
	if len(keys) != len(points) || len(keys) != len(labels) {
		return fmt.Errorf("misaligned chart inputs: %d keys, %d points, %d labels",
			len(keys), len(points), len(labels))
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	byLabel := make(map[int][]opts.ScatterData)
	for i, p := range points {
		byLabel[labels[i]] = append(byLabel[labels[i]], opts.ScatterData{
			Name:  keys[i],
			Value: []interface{}{p.X, p.Y},
		})
	}

	// Sorted labels keep the series order, and therefore the rendered
	// HTML, stable across runs.
	order := make([]int, 0, len(byLabel))
	for label := range byLabel {
		order = append(order, label)
	}
	sort.Ints(order)

	for _, label := range order {
		scatter.AddSeries(fmt.Sprintf("Cluster %d", label), byLabel[label]).
			SetSeriesOptions(
				charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
			)
	}

	return render(scatter, path)
}

// WriteDendrogram renders the merge tree as a collapsible tree chart.
// Internal nodes are labelled with their merge height so the analyst can
// read candidate cut levels straight off the chart.
func WriteDendrogram(path, title string, keys []string, dendro *cluster.Dendrogram) error {
	if len(keys) != dendro.Leaves {
		return fmt.Errorf("misaligned chart inputs: %d keys for %d leaves", len(keys), dendro.Leaves)
	}
	if dendro.Leaves == 1 {
		return fmt.Errorf("cannot render a dendrogram for a single product")
	}

	nodes := make([]*opts.TreeData, dendro.Leaves+len(dendro.Merges))
	for i, key := range keys {
		nodes[i] = &opts.TreeData{Name: key}
	}
	for i, m := range dendro.Merges {
		nodes[dendro.Leaves+i] = &opts.TreeData{
			Name:     fmt.Sprintf("h=%.3f", m.Height),
			Children: []*opts.TreeData{nodes[m.A], nodes[m.B]},
		}
	}
	root := nodes[len(nodes)-1]

	tree := charts.NewTree()
	tree.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	tree.AddSeries("dendrogram", []opts.TreeData{*root}).
		SetSeriesOptions(
			charts.WithTreeOpts(opts.TreeChart{
				Orient:           "LR",
				InitialTreeDepth: -1,
			}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "left"}),
		)

	return render(tree, path)
}

type renderer interface {
	Render(w io.Writer) error
}

// render writes a chart to a standalone HTML file, creating the parent
// directory as needed.
func render(chart renderer, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	f, err := os.Create(path) // #nosec G304 -- path comes from validated config
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	if err := chart.Render(f); err != nil {
		closeQuietly(f)
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close chart file: %w", err)
	}
	return nil
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // cleanup is best-effort
	}
}
