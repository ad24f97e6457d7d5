package main

import (
	"errors"
	"fmt"
	"log/slog"
)

// Sentinel errors for the pipeline. Recoverable per-polygon failures are
// logged and skipped; everything surfaced through these aborts the batch
// except ErrNumericDegenerate, which never escapes the driver.
var (
	// ErrInputInvalid indicates a malformed polygon or empty input.
	ErrInputInvalid = errors.New("centerline: invalid input")

	// ErrNumericDegenerate indicates a Voronoi construction failure on one
	// polygon.
	ErrNumericDegenerate = errors.New("centerline: numeric degeneracy")

	// ErrInvariantViolation indicates a stage broke a structural contract.
	ErrInvariantViolation = errors.New("centerline: invariant violation")

	// ErrCancelled indicates the cancellation predicate fired between stages.
	ErrCancelled = errors.New("centerline: cancelled")

	// ErrConfigInvalid indicates a bad tolerance or ordering constraint.
	ErrConfigInvalid = errors.New("centerline: invalid configuration")
)

// StageKind enumerates the pipeline stages in their fixed execution order.
type StageKind int

const (
	StageSkeleton StageKind = iota
	StagePrune
	StagePlanarize
	StageMergeIntersections
	StageSmooth
	StageCleanForks
	StageSimplify
)

func (s StageKind) String() string {
	switch s {
	case StageSkeleton:
		return "skeleton"
	case StagePrune:
		return "prune"
	case StagePlanarize:
		return "planarize"
	case StageMergeIntersections:
		return "merge_intersections"
	case StageSmooth:
		return "smooth"
	case StageCleanForks:
		return "clean_forks"
	case StageSimplify:
		return "simplify"
	}
	return "unknown"
}

// PipelineContext carries the batch state through the stages. The polygon
// set and config are read-only; the graph is replaced wholesale by each
// stage.
type PipelineContext struct {
	Config   Config
	Polygons []InputPolygon
	Graph    *Graph
	Boundary *BoundaryIndex

	Logger *slog.Logger

	// ShouldCancel is polled between stages only; nil means never.
	ShouldCancel func() bool

	// Snapshots receives intermediate graphs when debug export is on.
	Snapshots SnapshotSink
}

// PipelineResult is the final centerline network with its QA report.
type PipelineResult struct {
	Graph  *Graph
	Report *DiagnosticsReport
}

// RunPipeline executes the full polygon-to-centerline pipeline:
// per-polygon skeletonization and pruning, then planarization, junction
// merging, smoothing, terminal cleaning and simplification on the union,
// finishing with validation and diagnostics.
func RunPipeline(ctx *PipelineContext) (*PipelineResult, error) {
	cfg := ctx.Config
	logger := ctx.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(ctx.Polygons) == 0 {
		return nil, fmt.Errorf("%w: no polygons", ErrInputInvalid)
	}
	for _, ip := range ctx.Polygons {
		if err := ValidateInputPolygon(ip, cfg.SnapTolerance); err != nil {
			return nil, err
		}
	}

	ctx.Boundary = NewBoundaryIndex(ctx.Polygons)

	// Per-polygon stages: skeleton and prune produce disjoint fragments
	union := NewGraph()
	for _, ip := range ctx.Polygons {
		if err := checkCancel(ctx); err != nil {
			return nil, err
		}

		fragment, err := Skeletonize(ip, cfg, logger)
		if err != nil {
			if errors.Is(err, ErrNumericDegenerate) {
				logger.Warn("polygon skipped", "polygon", ip.ID, "reason", err)
				continue
			}
			return nil, err
		}

		PruneSkeleton(fragment, cfg, logger)
		fragment.MergeDegree2Nodes()
		union.Absorb(fragment)
	}
	ctx.Graph = union
	snapshot(ctx, "01_skeleton")

	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	ctx.Graph = Planarize(ctx.Graph, cfg, logger)
	snapshot(ctx, "02_planarized")

	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	ctx.Graph = MergeIntersections(ctx.Graph, cfg, logger)

	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	ctx.Graph = SmoothIntersections(ctx.Graph, cfg, logger)

	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	ctx.Graph = CleanTerminalForks(ctx.Graph, cfg, ctx.Boundary, logger)
	ctx.Graph.MergeDegree2Nodes()
	snapshot(ctx, "03_cleaned")

	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	ctx.Graph = SimplifyNetwork(ctx.Graph, cfg, logger)
	collapseShortEdges(ctx.Graph, cfg)
	snapshot(ctx, "04_final")

	if err := checkInvariants(ctx.Graph, cfg); err != nil {
		return nil, err
	}

	summary := ValidateResult(ctx.Graph, ctx.Boundary, cfg, logger)
	report := Diagnose(ctx.Graph, ctx.Boundary, summary, logger)

	return &PipelineResult{Graph: ctx.Graph, Report: report}, nil
}

func checkCancel(ctx *PipelineContext) error {
	if ctx.ShouldCancel != nil && ctx.ShouldCancel() {
		return ErrCancelled
	}
	return nil
}

func snapshot(ctx *PipelineContext, stage string) {
	if !ctx.Config.DebugExportIntermediate || ctx.Snapshots == nil {
		return
	}
	if err := ctx.Snapshots.Write(stage, ctx.Graph); err != nil {
		logger := ctx.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("snapshot export failed", "stage", stage, "error", err)
	}
}
