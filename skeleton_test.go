package main

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rectPolygon(id int, x0, y0, x1, y1 float64) InputPolygon {
	return InputPolygon{
		ID: id,
		Polygon: orb.Polygon{
			{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}},
		},
	}
}

func TestSkeletonizeRectangle(t *testing.T) {
	cfg := DefaultConfig()
	g, err := Skeletonize(rectPolygon(0, 0, 0, 30, 5), cfg, testLogger())
	require.NoError(t, err)
	require.Greater(t, g.EdgeCount(), 0)

	// Every skeleton point lies inside the polygon; the bulk of the
	// skeleton tracks the midline.
	poly := rectPolygon(0, 0, 0, 30, 5).Polygon
	midlineNodes := 0
	for _, p := range g.SortedNodes() {
		assert.True(t, pointInPolygon(p, poly) || distanceToRings(p, poly) < 1e-6,
			"skeleton node (%v) escaped the polygon", p)
		if p[1] > 2.4 && p[1] < 2.6 {
			midlineNodes++
		}
	}
	assert.Greater(t, midlineNodes, 10)

	// Radii reflect clearance: the midline clearance is half the width
	for _, p := range g.SortedNodes() {
		r := g.nodeRadius(p)
		assert.Greater(t, r, 0.0)
		assert.LessOrEqual(t, r, 2.5+1e-6)
	}
}

func TestSkeletonizeDegeneratePolygonSkipped(t *testing.T) {
	cfg := DefaultConfig()
	g, err := Skeletonize(rectPolygon(0, 0, 0, 0.5, 0.5), cfg, testLogger())
	require.NoError(t, err)
	assert.Zero(t, g.EdgeCount(), "area below min_polygon_area yields an empty skeleton")
}

func TestSkeletonizeAnnotatesSourcePolygon(t *testing.T) {
	g, err := Skeletonize(rectPolygon(7, 0, 0, 30, 5), DefaultConfig(), testLogger())
	require.NoError(t, err)
	for _, e := range g.Edges {
		assert.Equal(t, 7, e.PolygonID)
	}
}

func TestValidateInputPolygon(t *testing.T) {
	tests := []struct {
		name    string
		polygon orb.Polygon
		wantErr bool
	}{
		{"valid rectangle", orb.Polygon{{{0, 0}, {10, 0}, {10, 5}, {0, 5}, {0, 0}}}, false},
		{"no rings", orb.Polygon{}, true},
		{"open ring", orb.Polygon{{{0, 0}, {10, 0}, {10, 5}, {0, 5}}}, true},
		{"too few points", orb.Polygon{{{0, 0}, {10, 0}, {0, 0}}}, true},
		{"self-intersecting", orb.Polygon{{{0, 0}, {10, 10}, {10, 0}, {0, 10}, {0, 0}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputPolygon(InputPolygon{ID: 1, Polygon: tt.polygon}, 1e-9)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInputInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
