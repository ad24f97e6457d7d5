package main

import (
	"log/slog"
	"sort"

	"github.com/paulmach/orb"
)

// MergeIntersections collapses clusters of near-coincident junction nodes
// (staggered crossings) into single junctions. A cluster is a connected
// component of the subgraph induced by edges no longer than merge_threshold
// whose both endpoints have degree >= 3. Cluster members are replaced by a
// degree-weighted centroid node; intra-cluster edges vanish and external
// edges are re-terminated on the centroid.
func MergeIntersections(g *Graph, cfg Config, logger *slog.Logger) *Graph {
	out := g.Clone()

	clusters := junctionClusters(out, cfg.MergeThreshold)
	merged := 0

	for _, cluster := range clusters {
		// Earlier merges may have consumed part of an overlapping cluster
		var alive []orb.Point
		for _, p := range cluster {
			if _, ok := out.Nodes[p]; ok {
				alive = append(alive, p)
			}
		}
		if len(alive) < 2 {
			continue
		}

		centroid := degreeWeightedCentroid(out, alive)
		centroid = snapPoint(centroid, cfg.SnapTolerance)

		member := make(map[orb.Point]bool, len(alive))
		for _, p := range alive {
			member[p] = true
		}

		// Collect incident edges once; membership decides internal/external
		edgeSet := map[int]bool{}
		for _, p := range alive {
			for _, id := range out.IncidentEdges(p) {
				edgeSet[id] = true
			}
		}
		ids := make([]int, 0, len(edgeSet))
		for id := range edgeSet {
			ids = append(ids, id)
		}
		sort.Ints(ids)

		for _, id := range ids {
			e, ok := out.Edges[id]
			if !ok {
				continue
			}
			internal := member[e.A] && member[e.B]
			out.RemoveEdge(id)
			if internal {
				continue
			}

			geom := append(orb.LineString(nil), e.Geometry...)
			if member[e.A] {
				geom[0] = centroid
			}
			if member[e.B] {
				geom[len(geom)-1] = centroid
			}
			geom = dedupeConsecutive(geom)
			if len(geom) < 2 || polylineLength(geom) == 0 {
				continue
			}
			out.AddEdge(geom, e.MinRadius, e.MeanRadius, e.PolygonID)
		}
		merged++
	}

	collapsed := collapseShortEdges(out, cfg)

	logger.Info("intersections merged",
		"clusters", merged, "short_edges_collapsed", collapsed, "edges_out", out.EdgeCount())
	return out
}

// junctionClusters finds the merge candidates, larger clusters first, then
// by lower centroid x then y.
func junctionClusters(g *Graph, threshold float64) [][]orb.Point {
	parent := map[orb.Point]orb.Point{}
	var find func(p orb.Point) orb.Point
	find = func(p orb.Point) orb.Point {
		if parent[p] != p {
			parent[p] = find(parent[p])
		}
		return parent[p]
	}

	for _, id := range g.SortedEdgeIDs() {
		e := g.Edges[id]
		if e.Length > threshold || e.A == e.B {
			continue
		}
		if g.Degree(e.A) < 3 || g.Degree(e.B) < 3 {
			continue
		}
		for _, p := range []orb.Point{e.A, e.B} {
			if _, ok := parent[p]; !ok {
				parent[p] = p
			}
		}
		ra, rb := find(e.A), find(e.B)
		if ra != rb {
			parent[ra] = rb
		}
	}

	byRoot := map[orb.Point][]orb.Point{}
	pts := make([]orb.Point, 0, len(parent))
	for p := range parent {
		pts = append(pts, p)
	}
	sortPoints(pts)
	for _, p := range pts {
		root := find(p)
		byRoot[root] = append(byRoot[root], p)
	}

	clusters := make([][]orb.Point, 0, len(byRoot))
	for _, members := range byRoot {
		clusters = append(clusters, members)
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		if len(clusters[i]) != len(clusters[j]) {
			return len(clusters[i]) > len(clusters[j])
		}
		ci := plainCentroid(clusters[i])
		cj := plainCentroid(clusters[j])
		if ci[0] != cj[0] {
			return ci[0] < cj[0]
		}
		return ci[1] < cj[1]
	})
	return clusters
}

func degreeWeightedCentroid(g *Graph, pts []orb.Point) orb.Point {
	var sx, sy, sw float64
	for _, p := range pts {
		w := float64(g.Degree(p))
		if w == 0 {
			w = 1
		}
		sx += p[0] * w
		sy += p[1] * w
		sw += w
	}
	return orb.Point{sx / sw, sy / sw}
}

func plainCentroid(pts []orb.Point) orb.Point {
	var sx, sy float64
	for _, p := range pts {
		sx += p[0]
		sy += p[1]
	}
	n := float64(len(pts))
	return orb.Point{sx / n, sy / n}
}

func sortPoints(pts []orb.Point) {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})
}

// collapseShortEdges removes every edge shorter than min_edge_length and
// unifies its endpoints at the midpoint, rewriting incident edges. Shortest
// first, so cascades resolve deterministically.
func collapseShortEdges(g *Graph, cfg Config) int {
	collapsed := 0
	for {
		victim := -1
		bestLen := cfg.MinEdgeLength
		for _, id := range g.SortedEdgeIDs() {
			e := g.Edges[id]
			if e.Length < bestLen {
				victim = id
				bestLen = e.Length
			}
		}
		if victim == -1 {
			return collapsed
		}

		e := g.Edges[victim]
		a, b := e.A, e.B
		mid := snapPoint(orb.Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}, cfg.SnapTolerance)
		g.RemoveEdge(victim)
		collapsed++

		for _, p := range []orb.Point{a, b} {
			for _, id := range g.IncidentEdges(p) {
				moveTerminal(g, id, p, mid)
			}
		}
	}
}

// moveTerminal re-inserts an edge with one endpoint moved to a new position.
func moveTerminal(g *Graph, edgeID int, from, to orb.Point) {
	e, ok := g.Edges[edgeID]
	if !ok || from == to {
		return
	}
	geom := append(orb.LineString(nil), e.Geometry...)
	if e.A == from {
		geom[0] = to
	}
	if e.B == from {
		geom[len(geom)-1] = to
	}
	geom = dedupeConsecutive(geom)

	g.RemoveEdge(edgeID)
	if len(geom) < 2 || polylineLength(geom) == 0 {
		return
	}
	g.AddEdge(geom, e.MinRadius, e.MeanRadius, e.PolygonID)
}

func dedupeConsecutive(ls orb.LineString) orb.LineString {
	if len(ls) < 2 {
		return ls
	}
	out := orb.LineString{ls[0]}
	for _, p := range ls[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
