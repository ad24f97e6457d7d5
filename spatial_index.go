package main

import (
	"errors"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

var errEmptyPolyline = errors.New("empty polyline")

// rectPad keeps degenerate (axis-aligned) geometry storable: rtreego
// rejects rectangles with non-positive extent.
const rectPad = 1e-9

// segmentEntry wraps one boundary segment for R-tree storage
type segmentEntry struct {
	A, B      orb.Point
	PolygonID int
	bbox      rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (s *segmentEntry) Bounds() rtreego.Rect {
	return s.bbox
}

// BoundaryIndex answers distance-to-boundary queries over the rings of the
// input polygon set.
type BoundaryIndex struct {
	tree    *rtreego.Rtree
	maxSpan float64
}

// NewBoundaryIndex indexes every ring segment of every polygon.
func NewBoundaryIndex(polygons []InputPolygon) *BoundaryIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	span := 0.0
	for _, ip := range polygons {
		for _, ring := range ip.Polygon {
			for i := 0; i+1 < len(ring); i++ {
				a, b := ring[i], ring[i+1]
				rect, err := segmentRect(a, b, 0)
				if err != nil {
					continue
				}
				tree.Insert(&segmentEntry{A: a, B: b, PolygonID: ip.ID, bbox: rect})
				span = math.Max(span, math.Max(math.Abs(b[0]-a[0]), math.Abs(b[1]-a[1])))
			}
		}
		b := ip.Polygon.Bound()
		span = math.Max(span, math.Max(b.Max[0]-b.Min[0], b.Max[1]-b.Min[1]))
	}

	return &BoundaryIndex{tree: tree, maxSpan: math.Max(span, 1)}
}

// Distance returns the distance from p to the nearest indexed boundary
// segment. The search box doubles until candidates appear.
func (bi *BoundaryIndex) Distance(p orb.Point) float64 {
	if bi.tree.Size() == 0 {
		return math.Inf(1)
	}

	for radius := 1.0; ; radius *= 2 {
		results := bi.search(p, radius)
		if len(results) > 0 {
			best := math.Inf(1)
			for _, item := range results {
				seg := item.(*segmentEntry)
				d := pointSegmentDistance(p, seg.A, seg.B)
				if d < best {
					best = d
				}
			}
			// Candidates outside the box may still be closer than the
			// farthest in-box hit; widen once if the best hit is marginal.
			if best <= radius {
				return best
			}
		}
		if radius > bi.maxSpan*2 {
			return bi.bruteforce(p)
		}
	}
}

// Within reports whether p lies within dist of the boundary.
func (bi *BoundaryIndex) Within(p orb.Point, dist float64) bool {
	for _, item := range bi.search(p, dist) {
		seg := item.(*segmentEntry)
		if pointSegmentDistance(p, seg.A, seg.B) <= dist {
			return true
		}
	}
	return false
}

func (bi *BoundaryIndex) search(p orb.Point, radius float64) []rtreego.Spatial {
	rect, err := rtreego.NewRect(
		rtreego.Point{p[0] - radius, p[1] - radius},
		[]float64{2 * radius, 2 * radius},
	)
	if err != nil {
		return nil
	}
	return bi.tree.SearchIntersect(rect)
}

func (bi *BoundaryIndex) bruteforce(p orb.Point) float64 {
	rect, err := rtreego.NewRect(
		rtreego.Point{p[0] - bi.maxSpan*4, p[1] - bi.maxSpan*4},
		[]float64{bi.maxSpan * 8, bi.maxSpan * 8},
	)
	if err != nil {
		return math.Inf(1)
	}
	best := math.Inf(1)
	for _, item := range bi.tree.SearchIntersect(rect) {
		seg := item.(*segmentEntry)
		if d := pointSegmentDistance(p, seg.A, seg.B); d < best {
			best = d
		}
	}
	return best
}

// PolylineMaxDistance returns the largest boundary distance over the
// polyline's vertices and segment midpoints.
func (bi *BoundaryIndex) PolylineMaxDistance(ls orb.LineString) float64 {
	worst := 0.0
	for i, p := range ls {
		if d := bi.Distance(p); d > worst {
			worst = d
		}
		if i+1 < len(ls) {
			mid := orb.Point{(p[0] + ls[i+1][0]) / 2, (p[1] + ls[i+1][1]) / 2}
			if d := bi.Distance(mid); d > worst {
				worst = d
			}
		}
	}
	return worst
}

// PolylineMinDistance returns the smallest boundary distance over the
// polyline's vertices and segment midpoints.
func (bi *BoundaryIndex) PolylineMinDistance(ls orb.LineString) float64 {
	best := math.Inf(1)
	for i, p := range ls {
		if d := bi.Distance(p); d < best {
			best = d
		}
		if i+1 < len(ls) {
			mid := orb.Point{(p[0] + ls[i+1][0]) / 2, (p[1] + ls[i+1][1]) / 2}
			if d := bi.Distance(mid); d < best {
				best = d
			}
		}
	}
	return best
}

// edgeEntry wraps a graph edge's bounding box for R-tree storage
type edgeEntry struct {
	EdgeID int
	bbox   rtreego.Rect
}

func (e *edgeEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// EdgeIndex is an R-tree over edge bounding boxes, used to find crossing
// candidates during planarization and simplification.
type EdgeIndex struct {
	tree *rtreego.Rtree
}

func NewEdgeIndex(g *Graph) *EdgeIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for _, id := range g.SortedEdgeIDs() {
		e := g.Edges[id]
		rect, err := lineRect(e.Geometry, 0)
		if err != nil {
			continue
		}
		tree.Insert(&edgeEntry{EdgeID: id, bbox: rect})
	}
	return &EdgeIndex{tree: tree}
}

// Candidates returns IDs of edges whose bounding boxes intersect the query
// polyline's box expanded by margin.
func (ei *EdgeIndex) Candidates(ls orb.LineString, margin float64) []int {
	rect, err := lineRect(ls, margin)
	if err != nil {
		return nil
	}
	results := ei.tree.SearchIntersect(rect)
	ids := make([]int, 0, len(results))
	for _, item := range results {
		ids = append(ids, item.(*edgeEntry).EdgeID)
	}
	return ids
}

func segmentRect(a, b orb.Point, margin float64) (rtreego.Rect, error) {
	minX := math.Min(a[0], b[0]) - margin
	minY := math.Min(a[1], b[1]) - margin
	w := math.Abs(a[0]-b[0]) + 2*margin + rectPad
	h := math.Abs(a[1]-b[1]) + 2*margin + rectPad
	return rtreego.NewRect(rtreego.Point{minX, minY}, []float64{w, h})
}

func lineRect(ls orb.LineString, margin float64) (rtreego.Rect, error) {
	if len(ls) == 0 {
		return rtreego.Rect{}, errEmptyPolyline
	}
	b := ls.Bound()
	return rtreego.NewRect(
		rtreego.Point{b.Min[0] - margin, b.Min[1] - margin},
		[]float64{b.Max[0] - b.Min[0] + 2*margin + rectPad, b.Max[1] - b.Min[1] + 2*margin + rectPad},
	)
}

func pointSegmentDistance(p, a, b orb.Point) float64 {
	// Degenerate segment
	abx, aby := b[0]-a[0], b[1]-a[1]
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return math.Hypot(p[0]-a[0], p[1]-a[1])
	}
	t := ((p[0]-a[0])*abx + (p[1]-a[1])*aby) / lenSq
	t = math.Max(0, math.Min(1, t))
	cx, cy := a[0]+t*abx, a[1]+t*aby
	return math.Hypot(p[0]-cx, p[1]-cy)
}
