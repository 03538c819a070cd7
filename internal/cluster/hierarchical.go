// Stylecast - Retail Sales Forecasting Data Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stylecast

// Package cluster implements agglomerative hierarchical clustering over the
// aggregated feature table.
//
// The clusterer builds a binary merge tree (dendrogram) bottom-up from a
// pairwise Euclidean distance matrix, then cuts it at a configured cluster
// count K. K is an analyst decision made from the diagnostic charts, carried
// as configuration; the cut itself is mechanical and deterministic.
package cluster

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/stylecast/internal/logging"
)

// Linkage names the supported agglomerative merge rules.
const (
	// LinkageComplete merges on the farthest pair between clusters.
	// The default: it produces compact clusters on indicator features.
	LinkageComplete = "complete"

	// LinkageAverage merges on the mean pairwise distance.
	LinkageAverage = "average"

	// LinkageSingle merges on the nearest pair between clusters.
	LinkageSingle = "single"
)

// Config contains configuration for the hierarchical clusterer.
type Config struct {
	// Linkage is the merge rule, fixed per run for reproducibility.
	// Default: complete.
	Linkage string
}

// DefaultConfig returns the default clusterer configuration.
func DefaultConfig() Config {
	return Config{Linkage: LinkageComplete}
}

// Merge is one internal node of the dendrogram: the two nodes it joins and
// the linkage height of the join. Node ids 0..n-1 are leaves; the merge at
// Merges[i] creates node n+i.
type Merge struct {
	A, B   int
	Height float64

	// Size is the leaf count of the merged cluster.
	Size int
}

// Dendrogram is the binary merge tree over the input rows. Every input row
// appears in exactly one leaf, and merge heights are non-decreasing from
// leaves to root for the supported (monotone) linkages.
type Dendrogram struct {
	// Leaves is the number of input rows.
	Leaves int

	// Merges holds the Leaves-1 merges in execution order.
	Merges []Merge

	// Linkage records the merge rule the tree was built with.
	Linkage string
}

// Clusterer builds dendrograms from feature matrices.
type Clusterer struct {
	config Config
}

// New creates a hierarchical clusterer.
func New(cfg Config) (*Clusterer, error) {
	if cfg.Linkage == "" {
		cfg.Linkage = LinkageComplete
	}
	switch cfg.Linkage {
	case LinkageComplete, LinkageAverage, LinkageSingle:
	default:
		return nil, fmt.Errorf("unsupported linkage %q", cfg.Linkage)
	}

	return &Clusterer{config: cfg}, nil
}

// Build computes the pairwise Euclidean distance matrix and agglomerates it
// into a dendrogram. It fails explicitly on empty or ragged input rather
// than producing an empty tree.
//
// The full distance matrix is the largest intermediate of the whole
// pipeline; it is scoped to this call and unreachable once Build returns.
func (c *Clusterer) Build(ctx context.Context, vectors [][]float64) (*Dendrogram, error) {
	n := len(vectors)
	if n == 0 {
		return nil, fmt.Errorf("cannot cluster an empty feature table")
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("feature row %d has %d columns, want %d", i, len(v), dim)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dist := distanceMatrix(vectors)

	dendro := &Dendrogram{
		Leaves:  n,
		Merges:  make([]Merge, 0, n-1),
		Linkage: c.config.Linkage,
	}

	// active maps matrix index -> current node id; size tracks leaf counts
	// for average linkage.
	active := make([]int, n)
	size := make([]int, n)
	alive := make([]bool, n)
	for i := range active {
		active[i] = i
		size[i] = 1
		alive[i] = true
	}

	nextID := n
	for merged := 0; merged < n-1; merged++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Find the closest pair. Index order breaks ties, so repeated runs
		// over identical input produce identical trees.
		bi, bj := -1, -1
		best := 0.0
		for i := 0; i < n; i++ {
			if !alive[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !alive[j] {
					continue
				}
				if bi < 0 || dist[i][j] < best {
					bi, bj, best = i, j, dist[i][j]
				}
			}
		}

		dendro.Merges = append(dendro.Merges, Merge{
			A:      active[bi],
			B:      active[bj],
			Height: best,
			Size:   size[bi] + size[bj],
		})

		// Lance-Williams update: fold cluster bj into bi.
		for k := 0; k < n; k++ {
			if !alive[k] || k == bi || k == bj {
				continue
			}
			dik, djk := dist[bi][k], dist[bj][k]
			var d float64
			switch c.config.Linkage {
			case LinkageSingle:
				d = min(dik, djk)
			case LinkageAverage:
				ni, nj := float64(size[bi]), float64(size[bj])
				d = (ni*dik + nj*djk) / (ni + nj)
			default: // complete
				d = max(dik, djk)
			}
			dist[bi][k], dist[k][bi] = d, d
		}

		active[bi] = nextID
		size[bi] += size[bj]
		alive[bj] = false
		nextID++
	}

	logging.Debug().
		Int("leaves", n).
		Str("linkage", c.config.Linkage).
		Msg("Dendrogram built")

	return dendro, nil
}

// Cut severs the tree at the height that yields exactly k clusters and
// returns one label in 1..k per leaf, in leaf order. Labels are assigned by
// first appearance in leaf order, so a fixed tree and fixed k always yield
// the same labelling. Because merge heights are non-decreasing, skipping
// the last k-1 merges is exactly the horizontal cut.
func (d *Dendrogram) Cut(k int) ([]int, error) {
	if k < 1 {
		return nil, fmt.Errorf("cluster count must be positive, got %d", k)
	}
	if k > d.Leaves {
		return nil, fmt.Errorf("cannot cut %d leaves into %d clusters", d.Leaves, k)
	}

	// Union the first n-k merges.
	parent := make([]int, d.Leaves+len(d.Merges))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	for i := 0; i < d.Leaves-k; i++ {
		m := d.Merges[i]
		node := d.Leaves + i
		parent[find(m.A)] = node
		parent[find(m.B)] = node
	}

	labels := make([]int, d.Leaves)
	assigned := make(map[int]int, k)
	next := 1
	for leaf := 0; leaf < d.Leaves; leaf++ {
		root := find(leaf)
		label, ok := assigned[root]
		if !ok {
			label = next
			assigned[root] = label
			next++
		}
		labels[leaf] = label
	}

	return labels, nil
}

// Remap applies a post-hoc label remapping, collapsing clusters the analyst
// judged redundant on the projection chart. Unmapped labels pass through.
func Remap(labels []int, mapping map[int]int) []int {
	if len(mapping) == 0 {
		return labels
	}
	out := make([]int, len(labels))
	for i, l := range labels {
		if to, ok := mapping[l]; ok {
			out[i] = to
		} else {
			out[i] = l
		}
	}
	return out
}

// Sizes returns the member count per label.
func Sizes(labels []int) map[int]int {
	sizes := make(map[int]int)
	for _, l := range labels {
		sizes[l]++
	}
	return sizes
}

// distanceMatrix computes the symmetric pairwise Euclidean distance matrix.
func distanceMatrix(vectors [][]float64) [][]float64 {
	n := len(vectors)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(vectors[i], vectors[j], 2)
			dist[i][j], dist[j][i] = d, d
		}
	}
	return dist
}
