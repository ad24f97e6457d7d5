package main

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// Skeletonize extracts the raw medial skeleton of one polygon: densify the
// boundary, take the Voronoi diagram of the boundary sites, clip its edges
// to the polygon interior, and assemble the surviving segments into a graph
// annotated with clearance radii.
//
// A polygon below the area gate yields an empty graph. A Voronoi failure is
// reported as ErrNumericDegenerate so the driver can skip the polygon
// without poisoning the batch.
func Skeletonize(ip InputPolygon, cfg Config, logger *slog.Logger) (*Graph, error) {
	g := NewGraph()

	area := polygonArea(ip.Polygon)
	if area < cfg.MinPolygonArea {
		logger.Warn("skipping degenerate polygon",
			"polygon", ip.ID, "area", area, "min_area", cfg.MinPolygonArea)
		return g, nil
	}

	sites := boundarySites(ip.Polygon, cfg.SegmentizeMaxLength)
	ridges, err := voronoiEdges(sites)
	if err != nil {
		return nil, fmt.Errorf("polygon %d: %w", ip.ID, err)
	}

	boundary := NewBoundaryIndex([]InputPolygon{ip})

	var segs []orb.LineString
	for _, ridge := range ridges {
		for _, sub := range clipSegmentToPolygon(ridge.A, ridge.B, ip.Polygon) {
			a := snapPoint(sub[0], cfg.SnapTolerance)
			b := snapPoint(sub[1], cfg.SnapTolerance)
			if a == b {
				continue
			}
			segs = append(segs, orb.LineString{a, b})
		}
	}

	// Segments below the minimum length become node unifications instead of
	// edges, so near-degenerate Voronoi vertex clusters collapse without
	// breaking chain connectivity.
	uf := newPointUnionFind()
	for _, s := range segs {
		if polylineLength(s) < cfg.MinEdgeLength {
			uf.union(s[0], s[1])
		}
	}

	segments := 0
	seen := map[[2]orb.Point]bool{}
	for _, s := range segs {
		a := uf.find(s[0])
		b := uf.find(s[1])
		if a == b {
			continue
		}
		key := [2]orb.Point{a, b}
		if b[0] < a[0] || (b[0] == a[0] && b[1] < a[1]) {
			key = [2]orb.Point{b, a}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		geom := orb.LineString{a, b}
		if polylineLength(geom) == 0 {
			continue
		}

		ra := boundary.Distance(a)
		rb := boundary.Distance(b)

		e := g.AddEdge(geom, math.Min(ra, rb), (ra+rb)/2, ip.ID)
		if e == nil {
			continue
		}
		g.EnsureNode(a, ra)
		g.EnsureNode(b, rb)
		segments++
	}

	logger.Info("skeleton extracted",
		"polygon", ip.ID, "sites", len(sites), "ridges", len(ridges), "segments", segments)
	return g, nil
}

// pointUnionFind merges coincident-in-practice skeleton vertices. The
// lexicographically smallest member represents each cluster, keeping
// assembly deterministic.
type pointUnionFind struct {
	parent map[orb.Point]orb.Point
}

func newPointUnionFind() *pointUnionFind {
	return &pointUnionFind{parent: map[orb.Point]orb.Point{}}
}

func (u *pointUnionFind) find(p orb.Point) orb.Point {
	root, ok := u.parent[p]
	if !ok || root == p {
		return p
	}
	root = u.find(root)
	u.parent[p] = root
	return root
}

func (u *pointUnionFind) union(a, b orb.Point) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if rb[0] < ra[0] || (rb[0] == ra[0] && rb[1] < ra[1]) {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}

// boundarySites densifies every ring of the polygon and returns the full
// site set for the Voronoi construction.
func boundarySites(poly orb.Polygon, maxStep float64) []orb.Point {
	var sites []orb.Point
	for _, ring := range poly {
		sites = append(sites, densifyRing(ring, maxStep)...)
	}
	return sites
}

// clipSegmentToPolygon intersects segment ab with the polygon interior and
// returns the surviving sub-segments. Holes count as exterior.
func clipSegmentToPolygon(a, b orb.Point, poly orb.Polygon) []orb.LineString {
	ts := []float64{0, 1}
	for _, ring := range poly {
		for i := 0; i+1 < len(ring); i++ {
			if p, ok := segmentIntersection(a, b, ring[i], ring[i+1], 0); ok {
				t := paramAlong(a, b, p)
				if t > 0 && t < 1 {
					ts = append(ts, t)
				}
			}
		}
	}
	sort.Float64s(ts)

	var out []orb.LineString
	for i := 0; i+1 < len(ts); i++ {
		t0, t1 := ts[i], ts[i+1]
		if t1-t0 < 1e-12 {
			continue
		}
		mid := lerp(a, b, (t0+t1)/2)
		if !pointInPolygon(mid, poly) {
			continue
		}
		out = append(out, orb.LineString{lerp(a, b, t0), lerp(a, b, t1)})
	}
	return out
}

// paramAlong returns p's parameter along segment ab, projected on the
// dominant axis for stability.
func paramAlong(a, b, p orb.Point) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	if math.Abs(dx) >= math.Abs(dy) {
		if dx == 0 {
			return 0
		}
		return (p[0] - a[0]) / dx
	}
	return (p[1] - a[1]) / dy
}

func lerp(a, b orb.Point, t float64) orb.Point {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
}

// ValidateInputPolygon rejects rings that are not closed, too short, or
// self-intersecting. These are caller errors, not numeric accidents.
func ValidateInputPolygon(ip InputPolygon, tol float64) error {
	if len(ip.Polygon) == 0 {
		return fmt.Errorf("%w: polygon %d has no rings", ErrInputInvalid, ip.ID)
	}
	for ri, ring := range ip.Polygon {
		if len(ring) < 4 {
			return fmt.Errorf("%w: polygon %d ring %d has %d points, need >= 4",
				ErrInputInvalid, ip.ID, ri, len(ring))
		}
		if ring[0] != ring[len(ring)-1] {
			return fmt.Errorf("%w: polygon %d ring %d is not closed", ErrInputInvalid, ip.ID, ri)
		}
		if ringSelfIntersects(ring, tol) {
			return fmt.Errorf("%w: polygon %d ring %d self-intersects", ErrInputInvalid, ip.ID, ri)
		}
	}
	return nil
}
