package main

import (
	"log/slog"

	"github.com/paulmach/orb"
)

// CleanTerminalForks removes Y-shaped and hooked terminal noise left by
// polygon-corner artifacts. From every degree-1 node it walks inward to the
// first fork (degree >= 3) within the walk budget and deletes the traversed
// branch when it hugs the source boundary while the fork's other branches
// run properly inward. A short sharply-bent terminal chain is removed
// outright. Iterated until no branch qualifies, since a deletion can turn a
// fork into a plain pass-through node.
func CleanTerminalForks(g *Graph, cfg Config, boundary *BoundaryIndex, logger *slog.Logger) *Graph {
	out := g.Clone()
	removedForks, removedBends := 0, 0

	for {
		round := 0
		gone := map[int]bool{}

		for _, leaf := range out.LeafNodes() {
			if out.Degree(leaf) != 1 {
				continue
			}
			ch := out.TraceFromLeaf(leaf, cfg.ForkWalkMaxLength)
			if len(ch.EdgeIDs) == 0 || chainTouchesRemoved(ch, gone) {
				continue
			}

			if isSingleBend(out, ch, cfg) {
				removeChain(out, ch, gone)
				removedBends++
				round++
				continue
			}

			if !ch.ReachedJunction || ch.Length > cfg.ForkWalkMaxLength {
				continue
			}
			if !branchHugsBoundary(out, ch, boundary, cfg.TerminalNearBoundary) {
				continue
			}
			if !forkContinuesInward(out, ch, boundary, cfg) {
				continue
			}

			removeChain(out, ch, gone)
			removedForks++
			round++
		}

		if round == 0 {
			break
		}
	}

	logger.Info("terminal forks cleaned",
		"fork_branches", removedForks, "single_bends", removedBends, "edges_out", out.EdgeCount())
	return out
}

// isSingleBend detects the hook variant: a chain with exactly one interior
// node, turning harder than bend_angle_threshold, shorter in total than
// bend_max_length.
func isSingleBend(g *Graph, ch Chain, cfg Config) bool {
	if len(ch.NodePath) != 3 || ch.Length >= cfg.BendMaxLength {
		return false
	}
	mid := ch.NodePath[1]
	if g.Degree(mid) != 2 {
		return false
	}
	return turningAngle(ch.NodePath[0], mid, ch.NodePath[2]) > cfg.BendAngleThreshold
}

// branchHugsBoundary reports whether every traversed edge polyline stays
// within band of the polygon boundary.
func branchHugsBoundary(g *Graph, ch Chain, boundary *BoundaryIndex, band float64) bool {
	for _, id := range ch.EdgeIDs {
		e, ok := g.Edges[id]
		if !ok {
			return false
		}
		if boundary.PolylineMaxDistance(e.Geometry) > band {
			return false
		}
	}
	return true
}

// forkContinuesInward requires at least two branches other than the
// traversed one to leave the fork, each running farther than
// inward_continuation and ending clear of the boundary band.
func forkContinuesInward(g *Graph, ch Chain, boundary *BoundaryIndex, cfg Config) bool {
	lastEdge := ch.EdgeIDs[len(ch.EdgeIDs)-1]

	inward := 0
	for _, id := range g.IncidentEdges(ch.Junction) {
		if id == lastEdge {
			continue
		}
		length, end := traceBranch(g, ch.Junction, id, cfg.InwardContinuation*4)
		if length > cfg.InwardContinuation && boundary.Distance(end) > cfg.TerminalNearBoundary {
			inward++
		}
		if inward >= 2 {
			return true
		}
	}
	return false
}

// traceBranch follows a branch from a junction through degree-2 nodes,
// returning the accumulated length and the stopping point.
func traceBranch(g *Graph, from orb.Point, firstEdgeID int, maxLen float64) (float64, orb.Point) {
	length := 0.0
	current := from
	edge := g.Edges[firstEdgeID]
	visited := map[int]bool{}

	for edge != nil {
		visited[edge.ID] = true
		length += edge.Length
		current = edge.OtherEnd(current)

		if length >= maxLen || g.Degree(current) != 2 {
			break
		}

		var next *Edge
		for _, id := range g.IncidentEdges(current) {
			if !visited[id] {
				next = g.Edges[id]
				break
			}
		}
		edge = next
	}
	return length, current
}
