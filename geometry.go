package main

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// segmentIntersection computes the crossing point of two segments, if any.
// Segments that merely share an endpoint (within tol) do not count as
// crossing; collinear overlaps are ignored.
func segmentIntersection(p1, p2, p3, p4 orb.Point, tol float64) (orb.Point, bool) {
	// Shared endpoints are a legal meeting, not a crossing
	if pointsEqual(p1, p3, tol) || pointsEqual(p1, p4, tol) ||
		pointsEqual(p2, p3, tol) || pointsEqual(p2, p4, tol) {
		return orb.Point{}, false
	}

	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		// Proper crossing: solve for the intersection parameter
		denom := (p2[0]-p1[0])*(p4[1]-p3[1]) - (p2[1]-p1[1])*(p4[0]-p3[0])
		if denom == 0 {
			return orb.Point{}, false
		}
		t := ((p3[0]-p1[0])*(p4[1]-p3[1]) - (p3[1]-p1[1])*(p4[0]-p3[0])) / denom
		return orb.Point{p1[0] + t*(p2[0]-p1[0]), p1[1] + t*(p2[1]-p1[1])}, true
	}

	// Touching cases: an endpoint of one segment lying on the other
	if d1 == 0 && onSegment(p3, p4, p1) {
		return p1, true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return p2, true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return p3, true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return p4, true
	}

	return orb.Point{}, false
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 orb.Point) float64 {
	return (p3[0]-p1[0])*(p2[1]-p1[1]) - (p2[0]-p1[0])*(p3[1]-p1[1])
}

// onSegment checks if point q lies on segment pr
func onSegment(p, r, q orb.Point) bool {
	return q[0] <= math.Max(p[0], r[0]) && q[0] >= math.Min(p[0], r[0]) &&
		q[1] <= math.Max(p[1], r[1]) && q[1] >= math.Min(p[1], r[1])
}

// pointsEqual checks if two points are equal within tolerance
func pointsEqual(a, b orb.Point, tolerance float64) bool {
	return math.Abs(a[0]-b[0]) <= tolerance && math.Abs(a[1]-b[1]) <= tolerance
}

// snapPoint rounds a coordinate onto the snap grid so coincident points
// compare bit-exact as map keys.
func snapPoint(p orb.Point, tol float64) orb.Point {
	if tol <= 0 {
		return p
	}
	return orb.Point{
		math.Round(p[0]/tol) * tol,
		math.Round(p[1]/tol) * tol,
	}
}

// polylineLength returns the Euclidean arc length of a polyline.
func polylineLength(ls orb.LineString) float64 {
	return planar.Length(ls)
}

// pointInPolygon reports whether a point lies inside the polygon interior,
// treating holes as exterior.
func pointInPolygon(p orb.Point, poly orb.Polygon) bool {
	return planar.PolygonContains(poly, p)
}

// distanceToRings returns the distance from p to the nearest point on any
// ring of the polygon boundary.
func distanceToRings(p orb.Point, poly orb.Polygon) float64 {
	best := math.Inf(1)
	for _, ring := range poly {
		for i := 0; i+1 < len(ring); i++ {
			d := planar.DistanceFromSegment(ring[i], ring[i+1], p)
			if d < best {
				best = d
			}
		}
	}
	return best
}

// densifyRing resamples a closed ring so consecutive points are at most
// maxStep apart. The original vertices are always retained.
func densifyRing(ring orb.Ring, maxStep float64) []orb.Point {
	if maxStep <= 0 || len(ring) < 2 {
		return []orb.Point(ring)
	}

	out := make([]orb.Point, 0, len(ring)*2)
	for i := 0; i+1 < len(ring); i++ {
		a, b := ring[i], ring[i+1]
		out = append(out, a)

		segLen := planar.Distance(a, b)
		if segLen <= maxStep {
			continue
		}
		n := int(math.Ceil(segLen / maxStep))
		for k := 1; k < n; k++ {
			t := float64(k) / float64(n)
			out = append(out, orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])})
		}
	}
	return out
}

// distanceToPolyline returns the distance from p to the nearest point of ls.
func distanceToPolyline(p orb.Point, ls orb.LineString) float64 {
	best := math.Inf(1)
	for i := 0; i+1 < len(ls); i++ {
		d := planar.DistanceFromSegment(ls[i], ls[i+1], p)
		if d < best {
			best = d
		}
	}
	return best
}

// hausdorffDistance computes the symmetric Hausdorff distance between two
// polylines, approximated over their vertices and segment midpoints.
func hausdorffDistance(a, b orb.LineString) float64 {
	return math.Max(directedHausdorff(a, b), directedHausdorff(b, a))
}

func directedHausdorff(from, to orb.LineString) float64 {
	worst := 0.0
	consider := func(p orb.Point) {
		if d := distanceToPolyline(p, to); d > worst {
			worst = d
		}
	}
	for i, p := range from {
		consider(p)
		if i+1 < len(from) {
			consider(orb.Point{(p[0] + from[i+1][0]) / 2, (p[1] + from[i+1][1]) / 2})
		}
	}
	return worst
}

// turningAngle returns the absolute deviation from a straight continuation
// at vertex b of the chain a-b-c, in degrees. A collinear chain returns 0.
func turningAngle(a, b, c orb.Point) float64 {
	v1x, v1y := b[0]-a[0], b[1]-a[1]
	v2x, v2y := c[0]-b[0], c[1]-b[1]

	n1 := math.Hypot(v1x, v1y)
	n2 := math.Hypot(v2x, v2y)
	if n1 == 0 || n2 == 0 {
		return 0
	}

	dot := (v1x*v2x + v1y*v2y) / (n1 * n2)
	dot = math.Max(-1, math.Min(1, dot))
	return math.Acos(dot) * 180 / math.Pi
}

// perpendicularDistance calculates perpendicular distance from point to line
func perpendicularDistance(point, lineStart, lineEnd orb.Point) float64 {
	dx := lineEnd[0] - lineStart[0]
	dy := lineEnd[1] - lineStart[1]

	// Normalize
	mag := math.Sqrt(dx*dx + dy*dy)
	if mag > 0 {
		dx /= mag
		dy /= mag
	}

	pvx := point[0] - lineStart[0]
	pvy := point[1] - lineStart[1]

	pvdot := dx*pvx + dy*pvy

	ax := pvx - pvdot*dx
	ay := pvy - pvdot*dy

	return math.Sqrt(ax*ax + ay*ay)
}

// polygonArea returns the polygon area with holes subtracted.
func polygonArea(poly orb.Polygon) float64 {
	return math.Abs(planar.Area(poly))
}

// ringSelfIntersects reports whether any two non-adjacent segments of a
// closed ring cross each other.
func ringSelfIntersects(ring orb.Ring, tol float64) bool {
	n := len(ring) - 1 // closed ring repeats the first point
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // first and last segments are adjacent
			}
			if _, ok := segmentIntersection(ring[i], ring[i+1], ring[j], ring[j+1], tol); ok {
				return true
			}
		}
	}
	return false
}
