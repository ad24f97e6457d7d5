package main

import (
	"fmt"
	"math"

	"github.com/fogleman/delaunay"
	"github.com/paulmach/orb"
)

// voronoiEdge is one finite ridge of the Voronoi diagram: the segment
// between the circumcenters of two Delaunay triangles sharing an edge.
type voronoiEdge struct {
	A, B orb.Point
}

// voronoiEdges computes the finite edges of the Voronoi diagram over the
// given sites, as the dual of their Delaunay triangulation. Ridges running
// to infinity (hull halfedges) are dropped; the skeleton only needs ridges
// that can lie inside the polygon.
func voronoiEdges(sites []orb.Point) ([]voronoiEdge, error) {
	if len(sites) < 3 {
		return nil, fmt.Errorf("%w: %d boundary sites", ErrNumericDegenerate, len(sites))
	}

	pts := make([]delaunay.Point, len(sites))
	for i, s := range sites {
		pts[i] = delaunay.Point{X: s[0], Y: s[1]}
	}

	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		return nil, fmt.Errorf("%w: triangulation failed: %v", ErrNumericDegenerate, err)
	}
	if len(tri.Triangles) == 0 {
		return nil, fmt.Errorf("%w: empty triangulation", ErrNumericDegenerate)
	}

	numTriangles := len(tri.Triangles) / 3
	centers := make([]orb.Point, numTriangles)
	valid := make([]bool, numTriangles)
	for t := 0; t < numTriangles; t++ {
		a := tri.Points[tri.Triangles[3*t]]
		b := tri.Points[tri.Triangles[3*t+1]]
		c := tri.Points[tri.Triangles[3*t+2]]
		center, ok := circumcenter(a, b, c)
		centers[t] = center
		valid[t] = ok
	}

	var edges []voronoiEdge
	for e, twin := range tri.Halfedges {
		if twin < e {
			continue // hull halfedge (-1) or already emitted from the twin
		}
		t1, t2 := e/3, twin/3
		if !valid[t1] || !valid[t2] {
			continue
		}
		a, b := centers[t1], centers[t2]
		if a == b {
			continue
		}
		edges = append(edges, voronoiEdge{A: a, B: b})
	}
	return edges, nil
}

// circumcenter returns the center of the circle through a, b, c. Nearly
// collinear triangles produce centers far outside any useful range and are
// reported as invalid.
func circumcenter(a, b, c delaunay.Point) (orb.Point, bool) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-12 {
		return orb.Point{}, false
	}
	aSq := a.X*a.X + a.Y*a.Y
	bSq := b.X*b.X + b.Y*b.Y
	cSq := c.X*c.X + c.Y*c.Y
	ux := (aSq*(b.Y-c.Y) + bSq*(c.Y-a.Y) + cSq*(a.Y-b.Y)) / d
	uy := (aSq*(c.X-b.X) + bSq*(a.X-c.X) + cSq*(b.X-a.X)) / d
	if math.IsNaN(ux) || math.IsInf(ux, 0) || math.IsNaN(uy) || math.IsInf(uy, 0) {
		return orb.Point{}, false
	}
	return orb.Point{ux, uy}, true
}
