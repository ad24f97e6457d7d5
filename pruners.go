package main

import (
	"log/slog"
	"sort"
)

// The pruner chain runs on the raw per-polygon skeleton in fixed order:
// Ratio, BoundaryNear, Component, Spur. Each pruner judges whole leaf
// chains (degree-1 node walked inward to the first junction) and is
// iterated to a fixed point, since removing a chain can expose new leaves.
// Eligible chains are removed in ascending (length, leaf x, leaf y) order
// so repeated runs produce identical output.

// PruneSkeleton applies the full pruner chain.
func PruneSkeleton(g *Graph, cfg Config, logger *slog.Logger) {
	ratio := PruneRatio(g, cfg)
	boundary := PruneBoundaryNear(g, cfg)
	components := PruneComponents(g, cfg)
	spurs := PruneSpurs(g, cfg)

	logger.Info("skeleton pruned",
		"ratio_chains", ratio,
		"boundary_chains", boundary,
		"components", components,
		"spur_chains", spurs,
		"edges_left", g.EdgeCount())
}

// PruneRatio removes leaf chains that are short relative to the local road
// half-width. The clearance radius at the junction the chain hangs from is
// the width proxy; the leaf tip's own radius degenerates to zero at polygon
// corners and cannot anchor the test.
func PruneRatio(g *Graph, cfg Config) int {
	removed := 0
	for {
		chains := leafChains(g)
		round := 0
		gone := map[int]bool{}

		for _, ch := range chains {
			if chainTouchesRemoved(ch, gone) {
				continue
			}
			anchor := g.nodeRadius(ch.Junction)
			if anchor <= 0 {
				continue
			}
			if ch.Length < cfg.RatioThreshold*anchor {
				removeChain(g, ch, gone)
				round++
			}
		}

		removed += round
		if round == 0 {
			return removed
		}
	}
}

// PruneBoundaryNear removes leaf chains that run entirely inside the
// boundary noise band: every vertex clearance along the chain is at most
// boundary_near_distance. These are the Voronoi artifacts hugging concave
// boundary kinks.
func PruneBoundaryNear(g *Graph, cfg Config) int {
	removed := 0
	for {
		chains := leafChains(g)
		round := 0
		gone := map[int]bool{}

		for _, ch := range chains {
			if chainTouchesRemoved(ch, gone) {
				continue
			}
			if len(ch.EdgeIDs) == 0 {
				continue
			}
			// The terminating junction belongs to the through-route and
			// does not veto the band test.
			path := ch.NodePath
			if ch.ReachedJunction {
				path = path[:len(path)-1]
			}
			inside := true
			for _, p := range path {
				if g.nodeRadius(p) > cfg.BoundaryNearDistance {
					inside = false
					break
				}
			}
			if inside {
				removeChain(g, ch, gone)
				round++
			}
		}

		removed += round
		if round == 0 {
			return removed
		}
	}
}

// PruneComponents drops connected components whose total edge length falls
// below min_component_length. Isolated micro-skeletons have no road to
// represent.
func PruneComponents(g *Graph, cfg Config) int {
	removed := 0
	for _, comp := range g.Components() {
		total := 0.0
		for _, id := range comp {
			total += g.Edges[id].Length
		}
		if total < cfg.MinComponentLength {
			for _, id := range comp {
				g.RemoveEdge(id)
			}
			removed++
		}
	}
	return removed
}

// PruneSpurs removes any remaining leaf chain shorter than
// spur_absolute_length, regardless of local width.
func PruneSpurs(g *Graph, cfg Config) int {
	removed := 0
	for {
		chains := leafChains(g)
		round := 0
		gone := map[int]bool{}

		for _, ch := range chains {
			if chainTouchesRemoved(ch, gone) {
				continue
			}
			if len(ch.EdgeIDs) == 0 {
				continue
			}
			if ch.Length < cfg.SpurAbsoluteLength {
				removeChain(g, ch, gone)
				round++
			}
		}

		removed += round
		if round == 0 {
			return removed
		}
	}
}

// leafChains traces a chain from every degree-1 node and orders them
// ascending by (length, leaf x, leaf y).
func leafChains(g *Graph) []Chain {
	leaves := g.LeafNodes()
	chains := make([]Chain, 0, len(leaves))
	for _, leaf := range leaves {
		chains = append(chains, g.TraceFromLeaf(leaf, 0))
	}
	sort.SliceStable(chains, func(i, j int) bool {
		if chains[i].Length != chains[j].Length {
			return chains[i].Length < chains[j].Length
		}
		a, b := chains[i].NodePath[0], chains[j].NodePath[0]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		return a[1] < b[1]
	})
	return chains
}

func chainTouchesRemoved(ch Chain, gone map[int]bool) bool {
	for _, id := range ch.EdgeIDs {
		if gone[id] {
			return true
		}
	}
	return false
}

func removeChain(g *Graph, ch Chain, gone map[int]bool) {
	for _, id := range ch.EdgeIDs {
		g.RemoveEdge(id)
		gone[id] = true
	}
}
