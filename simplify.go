package main

import (
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// simplifyFloor is the smallest tolerance tried before giving up on an edge.
const simplifyFloor = 0.05

// SimplifyNetwork reduces vertex counts with Douglas-Peucker while
// preserving topology and shape. Endpoints never move (the simplifier keeps
// a subset of the original vertices). An edge whose simplified geometry
// would cross another edge, or drift beyond simplify_max_hausdorff, is
// retried with the tolerance halved down to the floor, then left as-is.
func SimplifyNetwork(g *Graph, cfg Config, logger *slog.Logger) *Graph {
	index := NewEdgeIndex(g)

	// Working geometries: crossing checks run against already-simplified
	// neighbors so two simplified edges cannot cross each other. The index
	// stays valid because Douglas-Peucker output vertices are a subset of
	// the input's, so bounding boxes only shrink.
	geoms := make(map[int]orb.LineString, g.EdgeCount())
	for id, e := range g.Edges {
		geoms[id] = e.Geometry
	}

	simplified, skipped := 0, 0
	out := NewGraph()

	for _, id := range g.SortedEdgeIDs() {
		e := g.Edges[id]
		geom, ok := simplifyEdge(e, index, geoms, cfg)
		if ok {
			simplified++
		} else {
			skipped++
		}
		geoms[id] = geom
		out.AddEdge(geom, e.MinRadius, e.MeanRadius, e.PolygonID)
	}

	for p, n := range g.Nodes {
		if _, ok := out.Nodes[p]; ok {
			out.EnsureNode(p, n.Radius)
		}
	}

	logger.Info("network simplified", "edges", simplified, "left_unsimplified", skipped)
	return out
}

func simplifyEdge(e *Edge, index *EdgeIndex, geoms map[int]orb.LineString, cfg Config) (orb.LineString, bool) {
	if len(e.Geometry) <= 2 {
		return e.Geometry, true
	}

	for tol := cfg.SimplifyTolerance; tol >= simplifyFloor; tol /= 2 {
		source := append(orb.LineString(nil), e.Geometry...)
		cand := simplify.DouglasPeucker(tol).LineString(source)
		if len(cand) < 2 {
			continue
		}
		if hausdorffDistance(e.Geometry, cand) > cfg.SimplifyMaxHausdorff {
			continue
		}
		if crossesOtherEdge(e.ID, cand, index, geoms, cfg.SnapTolerance) {
			continue
		}
		return cand, true
	}
	return e.Geometry, false
}

func crossesOtherEdge(selfID int, cand orb.LineString, index *EdgeIndex, geoms map[int]orb.LineString, tol float64) bool {
	for _, otherID := range index.Candidates(cand, tol) {
		if otherID == selfID {
			continue
		}
		other := geoms[otherID]
		for i := 0; i+1 < len(cand); i++ {
			for j := 0; j+1 < len(other); j++ {
				if _, ok := segmentIntersection(cand[i], cand[i+1], other[j], other[j+1], tol); ok {
					return true
				}
			}
		}
	}
	return false
}
