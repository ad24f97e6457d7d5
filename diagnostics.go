package main

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// edgeLengthDividers are the histogram bin boundaries, in meters.
var edgeLengthDividers = []float64{0, 1, 2, 5, 10, 25, 50, 100}

// boundaryNearBand is the proximity band used for the "% of edges near a
// boundary" figure.
const boundaryNearBand = 0.5

// DiagnosticsReport is the structured record handed to collaborators next
// to the centerline output.
type DiagnosticsReport struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`

	Components int `json:"components"`

	// Degree distribution keyed 1, 2, 3, 4, 5 (5 collects >= 5)
	DegreeDistribution map[int]int `json:"degree_distribution"`

	// EdgeLengthHistogram[i] counts edges between edgeLengthDividers[i] and
	// [i+1]; the final entry counts edges of 100 m and longer.
	EdgeLengthHistogram []int `json:"edge_length_histogram"`

	MeanEdgeLength   float64 `json:"mean_edge_length"`
	MedianEdgeLength float64 `json:"median_edge_length"`
	TotalLength      float64 `json:"total_length"`

	BoundaryNearEdgePct float64 `json:"boundary_near_edge_pct"`

	Validation *ValidationSummary `json:"validation"`
}

// Diagnose computes the topology statistics of the final network. Strictly
// read-only.
func Diagnose(g *Graph, boundary *BoundaryIndex, summary *ValidationSummary, logger *slog.Logger) *DiagnosticsReport {
	report := &DiagnosticsReport{
		Nodes:               g.NodeCount(),
		Edges:               g.EdgeCount(),
		Components:          len(g.Components()),
		DegreeDistribution:  map[int]int{},
		EdgeLengthHistogram: make([]int, len(edgeLengthDividers)),
		Validation:          summary,
	}

	for _, p := range g.SortedNodes() {
		d := g.Degree(p)
		if d >= 5 {
			d = 5
		}
		report.DegreeDistribution[d]++
	}

	lengths := make([]float64, 0, g.EdgeCount())
	near := 0
	for _, id := range g.SortedEdgeIDs() {
		e := g.Edges[id]
		lengths = append(lengths, e.Length)
		report.TotalLength += e.Length
		if boundary.PolylineMinDistance(e.Geometry) <= boundaryNearBand {
			near++
		}
	}

	if len(lengths) > 0 {
		sort.Float64s(lengths)
		report.MeanEdgeLength = stat.Mean(lengths, nil)
		report.MedianEdgeLength = stat.Quantile(0.5, stat.Empirical, lengths, nil)
		report.BoundaryNearEdgePct = 100 * float64(near) / float64(len(lengths))

		counts := stat.Histogram(nil, histogramDividers(lengths), lengths, nil)
		for i, c := range counts {
			report.EdgeLengthHistogram[i] = int(c)
		}
	}

	logger.Info("diagnostics",
		"nodes", report.Nodes,
		"edges", report.Edges,
		"components", report.Components,
		"terminals", report.DegreeDistribution[1],
		"mean_len", report.MeanEdgeLength,
		"near_boundary_pct", report.BoundaryNearEdgePct)
	return report
}

// histogramDividers extends the fixed bin boundaries so the last bin
// captures everything of 100 m and beyond.
func histogramDividers(sorted []float64) []float64 {
	dividers := append([]float64(nil), edgeLengthDividers...)
	top := sorted[len(sorted)-1] + 1
	if top < 100+1 {
		top = 100 + 1
	}
	return append(dividers, top)
}
