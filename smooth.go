package main

import (
	"log/slog"

	"github.com/paulmach/orb"
)

// SmoothIntersections straightens the approach geometry into junctions.
// For every edge end attached to a node of degree >= 3, the first
// smoothing_window vertices are dropped when they sit within
// smoothing_tolerance of the straight line from the junction to the
// window's far vertex. Edge endpoints never move; degree-1 and degree-2
// nodes are left alone.
func SmoothIntersections(g *Graph, cfg Config, logger *slog.Logger) *Graph {
	out := NewGraph()
	smoothed := 0

	// Straightening drops vertices, so bounding boxes only shrink and the
	// index built on the input stays a valid candidate superset.
	index := NewEdgeIndex(g)
	geoms := make(map[int]orb.LineString, g.EdgeCount())
	for id, e := range g.Edges {
		geoms[id] = e.Geometry
	}

	for _, id := range g.SortedEdgeIDs() {
		e := g.Edges[id]
		geom := append(orb.LineString(nil), e.Geometry...)
		before := len(geom)

		if g.Degree(e.A) >= 3 {
			geom = smoothApproach(geom, cfg.SmoothingWindow, cfg.SmoothingTolerance)
		}
		if g.Degree(e.B) >= 3 {
			reverseLine(geom)
			geom = smoothApproach(geom, cfg.SmoothingWindow, cfg.SmoothingTolerance)
			reverseLine(geom)
		}

		// A straightened approach must not cut across a neighboring edge
		if len(geom) != before && crossesOtherEdge(id, geom, index, geoms, cfg.SnapTolerance) {
			geom = e.Geometry
		}

		if len(geom) != before {
			smoothed++
		}
		geoms[id] = geom
		out.AddEdge(geom, e.MinRadius, e.MeanRadius, e.PolygonID)
	}

	for p, n := range g.Nodes {
		if _, ok := out.Nodes[p]; ok {
			out.EnsureNode(p, n.Radius)
		}
	}

	logger.Info("junction approaches smoothed", "edges_touched", smoothed)
	return out
}

// smoothApproach straightens the start of geom. The junction is geom[0];
// the window's far vertex stays, interior window vertices are dropped when
// their lateral deviation is under tol.
func smoothApproach(geom orb.LineString, window int, tol float64) orb.LineString {
	if len(geom) < 3 {
		return geom
	}

	k := window
	if k > len(geom)-1 {
		k = len(geom) - 1
	}
	if k < 2 {
		return geom
	}

	anchor, far := geom[0], geom[k]
	for i := 1; i < k; i++ {
		if perpendicularDistance(geom[i], anchor, far) >= tol {
			return geom
		}
	}

	out := make(orb.LineString, 0, len(geom)-k+1)
	out = append(out, anchor)
	out = append(out, geom[k:]...)
	return out
}
