package main

import (
	"fmt"
	"log/slog"
)

// ValidationSummary is the read-only QA record produced after the pipeline
// finishes. It never feeds back into the graph.
type ValidationSummary struct {
	Components     int      `json:"components"`
	TerminalNodes  int      `json:"terminal_nodes"`
	GappedTerminal int      `json:"gapped_terminals"`
	Warnings       []string `json:"warnings,omitempty"`
}

// ValidateResult checks network connectivity and terminal closure quality:
// component count, degree-1 nodes, and the boundary gap at each terminal.
// Terminals farther than terminal_gap_warn from any polygon boundary are
// flagged.
func ValidateResult(g *Graph, boundary *BoundaryIndex, cfg Config, logger *slog.Logger) *ValidationSummary {
	summary := &ValidationSummary{
		Components: len(g.Components()),
	}

	for _, p := range g.SortedNodes() {
		if g.Degree(p) != 1 {
			continue
		}
		summary.TerminalNodes++

		gap := boundary.Distance(p)
		if gap > cfg.TerminalGapWarn {
			summary.GappedTerminal++
			if summary.GappedTerminal <= 5 {
				summary.Warnings = append(summary.Warnings,
					fmt.Sprintf("terminal (%.3f, %.3f) is %.3f m from the nearest boundary (allowed %.3f m)",
						p[0], p[1], gap, cfg.TerminalGapWarn))
			}
		}
	}

	if summary.GappedTerminal > 0 {
		logger.Warn("terminal closure suspect",
			"terminals", summary.TerminalNodes, "gapped", summary.GappedTerminal)
	} else {
		logger.Info("validation passed",
			"components", summary.Components, "terminals", summary.TerminalNodes)
	}
	return summary
}

// checkInvariants asserts the structural contracts every stage must
// preserve. A failure is a bug in a stage, not bad input, and aborts the
// pipeline.
func checkInvariants(g *Graph, cfg Config) error {
	for _, id := range g.SortedEdgeIDs() {
		e := g.Edges[id]
		if len(e.Geometry) < 2 {
			return fmt.Errorf("%w: edge %d has %d points", ErrInvariantViolation, id, len(e.Geometry))
		}
		if e.Geometry[0] != e.A || e.Geometry[len(e.Geometry)-1] != e.B {
			return fmt.Errorf("%w: edge %d geometry endpoints detached from its nodes",
				ErrInvariantViolation, id)
		}
		if e.Length < cfg.MinEdgeLength {
			return fmt.Errorf("%w: edge %d length %.6f below minimum %.6f",
				ErrInvariantViolation, id, e.Length, cfg.MinEdgeLength)
		}
	}

	// Planarity: no two distinct edges may share anything but endpoint nodes
	index := NewEdgeIndex(g)
	for _, id := range g.SortedEdgeIDs() {
		e := g.Edges[id]
		for _, otherID := range index.Candidates(e.Geometry, cfg.SnapTolerance) {
			if otherID <= id {
				continue
			}
			o := g.Edges[otherID]
			for i := 0; i+1 < len(e.Geometry); i++ {
				for j := 0; j+1 < len(o.Geometry); j++ {
					if p, ok := segmentIntersection(
						e.Geometry[i], e.Geometry[i+1],
						o.Geometry[j], o.Geometry[j+1],
						cfg.SnapTolerance); ok {
						return fmt.Errorf("%w: edges %d and %d cross at (%.3f, %.3f)",
							ErrInvariantViolation, id, otherID, p[0], p[1])
					}
				}
			}
		}
	}
	return nil
}
