package main

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentIntersection(t *testing.T) {
	tests := []struct {
		name           string
		p1, p2, p3, p4 orb.Point
		want           orb.Point
		wantHit        bool
	}{
		{
			name: "proper crossing",
			p1:   orb.Point{-1, 0}, p2: orb.Point{1, 0},
			p3: orb.Point{0, -1}, p4: orb.Point{0, 1},
			want: orb.Point{0, 0}, wantHit: true,
		},
		{
			name: "shared endpoint is not a crossing",
			p1:   orb.Point{0, 0}, p2: orb.Point{1, 0},
			p3: orb.Point{0, 0}, p4: orb.Point{0, 1},
			wantHit: false,
		},
		{
			name: "disjoint",
			p1:   orb.Point{0, 0}, p2: orb.Point{1, 0},
			p3: orb.Point{0, 1}, p4: orb.Point{1, 1},
			wantHit: false,
		},
		{
			name: "t-touch: endpoint on interior",
			p1:   orb.Point{0, 0}, p2: orb.Point{10, 0},
			p3: orb.Point{5, -3}, p4: orb.Point{5, 0},
			want: orb.Point{5, 0}, wantHit: true,
		},
		{
			name: "parallel",
			p1:   orb.Point{0, 0}, p2: orb.Point{5, 0},
			p3: orb.Point{0, 2}, p4: orb.Point{5, 2},
			wantHit: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := segmentIntersection(tt.p1, tt.p2, tt.p3, tt.p4, 1e-9)
			assert.Equal(t, tt.wantHit, hit)
			if tt.wantHit {
				assert.InDelta(t, tt.want[0], got[0], 1e-9)
				assert.InDelta(t, tt.want[1], got[1], 1e-9)
			}
		})
	}
}

func TestDensifyRing(t *testing.T) {
	ring := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	pts := densifyRing(ring, 0.5)

	require.GreaterOrEqual(t, len(pts), 80)
	for i := 0; i+1 < len(pts); i++ {
		d := polylineLength(orb.LineString{pts[i], pts[i+1]})
		assert.LessOrEqual(t, d, 0.5+1e-9)
	}
	// Original corners survive densification
	assert.Contains(t, pts, orb.Point{10, 10})
}

func TestSnapPoint(t *testing.T) {
	a := snapPoint(orb.Point{1.0000004, 2.0000006}, 1e-6)
	b := snapPoint(orb.Point{1.0000004000001, 2.0000005999999}, 1e-6)
	assert.Equal(t, a, b)
}

func TestHausdorffDistance(t *testing.T) {
	a := orb.LineString{{0, 0}, {10, 0}}
	b := orb.LineString{{0, 0}, {5, 1}, {10, 0}}

	d := hausdorffDistance(a, b)
	assert.InDelta(t, 1.0, d, 1e-9)
	assert.Equal(t, d, hausdorffDistance(b, a))
	assert.Zero(t, hausdorffDistance(a, a))
}

func TestTurningAngle(t *testing.T) {
	assert.InDelta(t, 90, turningAngle(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{1, 1}), 1e-9)
	assert.InDelta(t, 0, turningAngle(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{2, 0}), 1e-9)
	assert.InDelta(t, 180, turningAngle(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{0, 0}), 1e-9)
}

func TestRingSelfIntersects(t *testing.T) {
	square := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	assert.False(t, ringSelfIntersects(square, 1e-9))

	bowtie := orb.Ring{{0, 0}, {10, 10}, {10, 0}, {0, 10}, {0, 0}}
	assert.True(t, ringSelfIntersects(bowtie, 1e-9))
}

func TestPointInPolygonWithHole(t *testing.T) {
	poly := orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {4, 6}, {6, 6}, {6, 4}, {4, 4}},
	}
	assert.True(t, pointInPolygon(orb.Point{2, 2}, poly))
	assert.False(t, pointInPolygon(orb.Point{5, 5}, poly), "hole interior is exterior")
	assert.False(t, pointInPolygon(orb.Point{20, 20}, poly))
}

func TestClipSegmentToPolygon(t *testing.T) {
	poly := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}

	t.Run("fully inside", func(t *testing.T) {
		subs := clipSegmentToPolygon(orb.Point{1, 5}, orb.Point{9, 5}, poly)
		require.Len(t, subs, 1)
		assert.InDelta(t, 8, polylineLength(subs[0]), 1e-9)
	})

	t.Run("fully outside", func(t *testing.T) {
		subs := clipSegmentToPolygon(orb.Point{20, 5}, orb.Point{30, 5}, poly)
		assert.Empty(t, subs)
	})

	t.Run("straddling", func(t *testing.T) {
		subs := clipSegmentToPolygon(orb.Point{5, 5}, orb.Point{15, 5}, poly)
		require.Len(t, subs, 1)
		assert.InDelta(t, 5, polylineLength(subs[0]), 1e-9)
	})

	t.Run("crossing a hole", func(t *testing.T) {
		holed := orb.Polygon{
			{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
			{{4, 4}, {4, 6}, {6, 6}, {6, 4}, {4, 4}},
		}
		subs := clipSegmentToPolygon(orb.Point{1, 5}, orb.Point{9, 5}, holed)
		require.Len(t, subs, 2)
	})
}

func TestBoundaryIndexDistance(t *testing.T) {
	poly := InputPolygon{ID: 0, Polygon: orb.Polygon{{{0, 0}, {100, 0}, {100, 5}, {0, 5}, {0, 0}}}}
	bi := NewBoundaryIndex([]InputPolygon{poly})

	assert.InDelta(t, 2.5, bi.Distance(orb.Point{50, 2.5}), 1e-9)
	assert.InDelta(t, 0.2, bi.Distance(orb.Point{50, 0.2}), 1e-9)
	assert.InDelta(t, 2.5, bi.Distance(orb.Point{2.5, 2.5}), 1e-9)

	assert.True(t, bi.Within(orb.Point{50, 0.2}, 0.3))
	assert.False(t, bi.Within(orb.Point{50, 2.5}, 0.3))

	// Cross-check against the brute-force ring distance
	for _, p := range []orb.Point{{10, 1}, {99, 4.9}, {0.3, 0.3}} {
		assert.InDelta(t, distanceToRings(p, poly.Polygon), bi.Distance(p), 1e-9)
	}
}
