package main

import (
	"encoding/json"
	"fmt"
)

// Config holds every tolerance the pipeline consumes. It is built once
// before the pipeline starts and never mutated afterwards; all distances
// are meters in the projected CRS of the input.
type Config struct {
	SegmentizeMaxLength float64 `json:"segmentize_max_length"`
	SnapTolerance       float64 `json:"snap_tolerance"`
	MinPolygonArea      float64 `json:"min_polygon_area"`

	RatioThreshold       float64 `json:"ratio_threshold"`
	BoundaryNearDistance float64 `json:"boundary_near_distance"`
	MinComponentLength   float64 `json:"min_component_length"`
	SpurAbsoluteLength   float64 `json:"spur_absolute_length"`

	MergeThreshold float64 `json:"merge_threshold"`
	MinEdgeLength  float64 `json:"min_edge_length"`

	SmoothingWindow    int     `json:"smoothing_window"`
	SmoothingTolerance float64 `json:"smoothing_tolerance"`

	ForkWalkMaxLength    float64 `json:"fork_walk_max_length"`
	TerminalNearBoundary float64 `json:"terminal_near_boundary"`
	InwardContinuation   float64 `json:"inward_continuation"`
	BendAngleThreshold   float64 `json:"bend_angle_threshold"`
	BendMaxLength        float64 `json:"bend_max_length"`

	SimplifyTolerance    float64 `json:"simplify_tolerance"`
	SimplifyMaxHausdorff float64 `json:"simplify_max_hausdorff"`

	TerminalGapWarn float64 `json:"terminal_gap_warn"`

	DebugExportIntermediate bool `json:"debug_export_intermediate"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		SegmentizeMaxLength:  0.5,
		SnapTolerance:        1e-6,
		MinPolygonArea:       1.0,
		RatioThreshold:       1.2,
		BoundaryNearDistance: 0.3,
		MinComponentLength:   5.0,
		SpurAbsoluteLength:   2.0,
		MergeThreshold:       1.5,
		MinEdgeLength:        0.05,
		SmoothingWindow:      3,
		SmoothingTolerance:   0.25,
		ForkWalkMaxLength:    8.0,
		TerminalNearBoundary: 0.5,
		InwardContinuation:   3.0,
		BendAngleThreshold:   60,
		BendMaxLength:        4.0,
		SimplifyTolerance:    0.35,
		SimplifyMaxHausdorff: 0.70,
		TerminalGapWarn:      2.0,
	}
}

// ConfigFromJSON overlays JSON fields onto the defaults.
func ConfigFromJSON(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(data) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects non-positive tolerances and ordering violations. It runs
// once at pipeline start; a failure aborts the whole batch.
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"segmentize_max_length", c.SegmentizeMaxLength},
		{"snap_tolerance", c.SnapTolerance},
		{"min_polygon_area", c.MinPolygonArea},
		{"ratio_threshold", c.RatioThreshold},
		{"boundary_near_distance", c.BoundaryNearDistance},
		{"min_component_length", c.MinComponentLength},
		{"spur_absolute_length", c.SpurAbsoluteLength},
		{"merge_threshold", c.MergeThreshold},
		{"min_edge_length", c.MinEdgeLength},
		{"smoothing_tolerance", c.SmoothingTolerance},
		{"fork_walk_max_length", c.ForkWalkMaxLength},
		{"terminal_near_boundary", c.TerminalNearBoundary},
		{"inward_continuation", c.InwardContinuation},
		{"bend_angle_threshold", c.BendAngleThreshold},
		{"bend_max_length", c.BendMaxLength},
		{"simplify_tolerance", c.SimplifyTolerance},
		{"simplify_max_hausdorff", c.SimplifyMaxHausdorff},
		{"terminal_gap_warn", c.TerminalGapWarn},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrConfigInvalid, p.name, p.value)
		}
	}

	if c.SmoothingWindow < 1 {
		return fmt.Errorf("%w: smoothing_window must be >= 1, got %d", ErrConfigInvalid, c.SmoothingWindow)
	}
	if c.SimplifyMaxHausdorff < c.SimplifyTolerance {
		return fmt.Errorf("%w: simplify_max_hausdorff (%g) < simplify_tolerance (%g)",
			ErrConfigInvalid, c.SimplifyMaxHausdorff, c.SimplifyTolerance)
	}
	if c.MinEdgeLength >= c.MergeThreshold {
		return fmt.Errorf("%w: min_edge_length (%g) must be below merge_threshold (%g)",
			ErrConfigInvalid, c.MinEdgeLength, c.MergeThreshold)
	}
	return nil
}
