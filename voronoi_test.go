package main

import (
	"testing"

	"github.com/fogleman/delaunay"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func delaunayPoint(x, y float64) delaunay.Point {
	return delaunay.Point{X: x, Y: y}
}

func TestVoronoiEdgesLadder(t *testing.T) {
	// Two parallel rows of sites: the shared Voronoi ridge runs midway
	var sites []orb.Point
	for i := 0; i <= 10; i++ {
		sites = append(sites, orb.Point{float64(i), 0})
		sites = append(sites, orb.Point{float64(i), 2})
	}

	edges, err := voronoiEdges(sites)
	require.NoError(t, err)
	require.NotEmpty(t, edges)

	midline := 0
	for _, e := range edges {
		if e.A[1] > 0.9 && e.A[1] < 1.1 && e.B[1] > 0.9 && e.B[1] < 1.1 {
			midline++
		}
	}
	assert.Greater(t, midline, 0, "dual edges between the rows sit near y=1")
}

func TestVoronoiEdgesDegenerate(t *testing.T) {
	t.Run("too few sites", func(t *testing.T) {
		_, err := voronoiEdges([]orb.Point{{0, 0}, {1, 0}})
		assert.ErrorIs(t, err, ErrNumericDegenerate)
	})

	t.Run("collinear sites", func(t *testing.T) {
		sites := []orb.Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}
		_, err := voronoiEdges(sites)
		assert.ErrorIs(t, err, ErrNumericDegenerate)
	})
}

func TestCircumcenter(t *testing.T) {
	c, ok := circumcenter(
		delaunayPoint(0, 0), delaunayPoint(2, 0), delaunayPoint(0, 2))
	require.True(t, ok)
	assert.InDelta(t, 1, c[0], 1e-9)
	assert.InDelta(t, 1, c[1], 1e-9)

	_, ok = circumcenter(delaunayPoint(0, 0), delaunayPoint(1, 0), delaunayPoint(2, 0))
	assert.False(t, ok, "collinear triangle has no circumcenter")
}
