package main

import (
	"log/slog"
	"sort"

	"github.com/paulmach/orb"
)

// Planarize introduces a node at every geometric crossing between distinct
// edges, so that afterwards no two edges share any point except a common
// endpoint node. Crossing candidates come from the edge R-tree; each
// affected polyline is split at its crossing points and re-inserted.
func Planarize(g *Graph, cfg Config, logger *slog.Logger) *Graph {
	ids := g.SortedEdgeIDs()
	index := NewEdgeIndex(g)

	splits := make(map[int][]splitPoint)
	crossings := 0

	for _, id := range ids {
		e := g.Edges[id]
		candidates := index.Candidates(e.Geometry, cfg.SnapTolerance)
		sort.Ints(candidates)

		for _, otherID := range candidates {
			if otherID <= id {
				continue // each pair once
			}
			o := g.Edges[otherID]

			for i := 0; i+1 < len(e.Geometry); i++ {
				for j := 0; j+1 < len(o.Geometry); j++ {
					p, ok := segmentIntersection(
						e.Geometry[i], e.Geometry[i+1],
						o.Geometry[j], o.Geometry[j+1],
						cfg.SnapTolerance)
					if !ok {
						continue
					}
					sp := snapPoint(p, cfg.SnapTolerance)
					splits[id] = append(splits[id], splitPoint{
						seg: i, t: paramAlong(e.Geometry[i], e.Geometry[i+1], sp), p: sp})
					splits[otherID] = append(splits[otherID], splitPoint{
						seg: j, t: paramAlong(o.Geometry[j], o.Geometry[j+1], sp), p: sp})
					crossings++
				}
			}
		}
	}

	out := NewGraph()
	for _, id := range ids {
		e := g.Edges[id]
		for _, part := range cutPolyline(e.Geometry, splits[id], cfg.SnapTolerance) {
			if len(part) < 2 || polylineLength(part) == 0 {
				continue
			}
			out.AddEdge(part, e.MinRadius, e.MeanRadius, e.PolygonID)
		}
	}

	// Keep known clearance radii for surviving nodes
	for p, n := range g.Nodes {
		if _, ok := out.Nodes[p]; ok {
			out.EnsureNode(p, n.Radius)
		}
	}

	logger.Info("planarized",
		"crossings", crossings, "edges_in", len(ids), "edges_out", out.EdgeCount())
	return out
}

type splitPoint struct {
	seg int
	t   float64
	p   orb.Point
}

// cutPolyline splits ls at the given points. Splits on the polyline's own
// endpoints are ignored; splits landing on an interior vertex cut there.
func cutPolyline(ls orb.LineString, sps []splitPoint, tol float64) []orb.LineString {
	if len(sps) == 0 {
		return []orb.LineString{ls}
	}

	sort.SliceStable(sps, func(i, j int) bool {
		if sps[i].seg != sps[j].seg {
			return sps[i].seg < sps[j].seg
		}
		return sps[i].t < sps[j].t
	})

	var parts []orb.LineString
	cur := orb.LineString{ls[0]}
	spIdx := 0

	for i := 0; i+1 < len(ls); i++ {
		for spIdx < len(sps) && sps[spIdx].seg == i {
			p := sps[spIdx].p
			spIdx++
			if pointsEqual(p, ls[0], tol) || pointsEqual(p, ls[len(ls)-1], tol) {
				continue // polyline endpoints are nodes already
			}
			if pointsEqual(p, cur[len(cur)-1], tol) {
				// Crossing exactly at an existing vertex: split there
				if len(cur) >= 2 {
					parts = append(parts, cur)
					cur = orb.LineString{cur[len(cur)-1]}
				}
				continue
			}
			cur = append(cur, p)
			parts = append(parts, cur)
			cur = orb.LineString{p}
		}
		next := ls[i+1]
		if !pointsEqual(next, cur[len(cur)-1], 0) {
			cur = append(cur, next)
		}
	}
	parts = append(parts, cur)
	return parts
}
