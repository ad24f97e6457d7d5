package main

import (
	"sort"

	"github.com/paulmach/orb"
)

// Node is an edge endpoint. Radius is the clearance to the source polygon
// boundary, computed at skeleton time.
type Node struct {
	Position orb.Point
	Radius   float64
}

// Edge is an undirected polyline between two nodes. The polyline's first and
// last points coincide bit-exact with A and B.
type Edge struct {
	ID         int
	A, B       orb.Point
	Geometry   orb.LineString
	Length     float64
	MinRadius  float64
	MeanRadius float64
	PolygonID  int
}

// OtherEnd returns the endpoint opposite to p. For a loop it returns p.
func (e *Edge) OtherEnd(p orb.Point) orb.Point {
	if e.A == p {
		return e.B
	}
	return e.A
}

// Graph is a multigraph of centerline edges. Parallel edges and loops are
// allowed until the intersection merger runs. Nodes are keyed by their
// snapped position; edges are mutated only by remove-and-insert.
type Graph struct {
	Nodes    map[orb.Point]*Node
	Edges    map[int]*Edge
	incident map[orb.Point][]int
	nextID   int
}

func NewGraph() *Graph {
	return &Graph{
		Nodes:    make(map[orb.Point]*Node),
		Edges:    make(map[int]*Edge),
		incident: make(map[orb.Point][]int),
	}
}

// EnsureNode registers a node at pos, keeping the smallest known radius if
// the node already exists with one.
func (g *Graph) EnsureNode(pos orb.Point, radius float64) *Node {
	if n, ok := g.Nodes[pos]; ok {
		if radius > 0 && (n.Radius == 0 || radius < n.Radius) {
			n.Radius = radius
		}
		return n
	}
	n := &Node{Position: pos, Radius: radius}
	g.Nodes[pos] = n
	return n
}

// AddEdge inserts an edge for the given polyline. The polyline's endpoints
// become (or join) nodes; geometry endpoints are forced onto the node
// positions so the coincidence invariant holds bit-exact.
func (g *Graph) AddEdge(geom orb.LineString, minRadius, meanRadius float64, polygonID int) *Edge {
	if len(geom) < 2 {
		return nil
	}

	a := geom[0]
	b := geom[len(geom)-1]
	g.EnsureNode(a, 0)
	g.EnsureNode(b, 0)

	e := &Edge{
		ID:         g.nextID,
		A:          a,
		B:          b,
		Geometry:   geom,
		Length:     polylineLength(geom),
		MinRadius:  minRadius,
		MeanRadius: meanRadius,
		PolygonID:  polygonID,
	}
	g.nextID++

	g.Edges[e.ID] = e
	g.incident[a] = append(g.incident[a], e.ID)
	if b != a {
		g.incident[b] = append(g.incident[b], e.ID)
	} else {
		// A loop contributes twice to its node's degree
		g.incident[a] = append(g.incident[a], e.ID)
	}
	return e
}

// RemoveEdge deletes an edge and drops endpoint nodes that become isolated.
func (g *Graph) RemoveEdge(id int) {
	e, ok := g.Edges[id]
	if !ok {
		return
	}
	delete(g.Edges, id)

	g.detach(e.A, id)
	if e.B != e.A {
		g.detach(e.B, id)
	}
}

func (g *Graph) detach(p orb.Point, id int) {
	ids := g.incident[p]
	kept := ids[:0]
	for _, x := range ids {
		if x != id {
			kept = append(kept, x)
		}
	}
	if len(kept) == 0 {
		delete(g.incident, p)
		delete(g.Nodes, p)
	} else {
		g.incident[p] = kept
	}
}

// Degree returns the number of edge ends incident to the node at p.
func (g *Graph) Degree(p orb.Point) int {
	return len(g.incident[p])
}

// IncidentEdges returns the IDs of edges touching p, ascending.
func (g *Graph) IncidentEdges(p orb.Point) []int {
	ids := append([]int(nil), g.incident[p]...)
	sort.Ints(ids)
	return ids
}

func (g *Graph) NodeCount() int { return len(g.Nodes) }
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// SortedEdgeIDs returns all edge IDs ascending. Every stage iterates edges
// through this so output is reproducible run to run.
func (g *Graph) SortedEdgeIDs() []int {
	ids := make([]int, 0, len(g.Edges))
	for id := range g.Edges {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SortedNodes returns node positions ordered by x then y.
func (g *Graph) SortedNodes() []orb.Point {
	pts := make([]orb.Point, 0, len(g.Nodes))
	for p := range g.Nodes {
		pts = append(pts, p)
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})
	return pts
}

// LeafNodes returns all degree-1 node positions, ordered.
func (g *Graph) LeafNodes() []orb.Point {
	var leaves []orb.Point
	for _, p := range g.SortedNodes() {
		if g.Degree(p) == 1 {
			leaves = append(leaves, p)
		}
	}
	return leaves
}

// Clone deep-copies the graph, preserving edge IDs.
func (g *Graph) Clone() *Graph {
	out := NewGraph()
	out.nextID = g.nextID
	for p, n := range g.Nodes {
		out.Nodes[p] = &Node{Position: n.Position, Radius: n.Radius}
	}
	for id, e := range g.Edges {
		geom := make(orb.LineString, len(e.Geometry))
		copy(geom, e.Geometry)
		out.Edges[id] = &Edge{
			ID: id, A: e.A, B: e.B, Geometry: geom,
			Length: e.Length, MinRadius: e.MinRadius, MeanRadius: e.MeanRadius,
			PolygonID: e.PolygonID,
		}
	}
	for p, ids := range g.incident {
		out.incident[p] = append([]int(nil), ids...)
	}
	return out
}

// Absorb moves every edge of other into g, renumbering IDs. Used to union
// per-polygon skeleton fragments before planarization.
func (g *Graph) Absorb(other *Graph) {
	for _, id := range other.SortedEdgeIDs() {
		e := other.Edges[id]
		ne := g.AddEdge(e.Geometry, e.MinRadius, e.MeanRadius, e.PolygonID)
		if ne != nil {
			g.EnsureNode(ne.A, other.nodeRadius(e.A))
			g.EnsureNode(ne.B, other.nodeRadius(e.B))
		}
	}
}

func (g *Graph) nodeRadius(p orb.Point) float64 {
	if n, ok := g.Nodes[p]; ok {
		return n.Radius
	}
	return 0
}

// Components groups edge IDs by connected component.
func (g *Graph) Components() [][]int {
	parent := make(map[orb.Point]orb.Point, len(g.Nodes))
	var find func(p orb.Point) orb.Point
	find = func(p orb.Point) orb.Point {
		if parent[p] != p {
			parent[p] = find(parent[p])
		}
		return parent[p]
	}
	for p := range g.Nodes {
		parent[p] = p
	}
	for _, id := range g.SortedEdgeIDs() {
		e := g.Edges[id]
		ra, rb := find(e.A), find(e.B)
		if ra != rb {
			parent[ra] = rb
		}
	}

	byRoot := make(map[orb.Point][]int)
	for _, id := range g.SortedEdgeIDs() {
		root := find(g.Edges[id].A)
		byRoot[root] = append(byRoot[root], id)
	}

	roots := make([]orb.Point, 0, len(byRoot))
	for r := range byRoot {
		roots = append(roots, r)
	}
	sort.Slice(roots, func(i, j int) bool {
		if roots[i][0] != roots[j][0] {
			return roots[i][0] < roots[j][0]
		}
		return roots[i][1] < roots[j][1]
	})

	out := make([][]int, 0, len(roots))
	for _, r := range roots {
		out = append(out, byRoot[r])
	}
	return out
}

// Chain is a run of edges walked from a degree-1 leaf up to the first node
// of degree >= 3 (or a dead end / budget stop).
type Chain struct {
	EdgeIDs         []int
	NodePath        []orb.Point
	Length          float64
	Junction        orb.Point
	ReachedJunction bool
}

// TraceFromLeaf walks inward from a degree-1 node, following degree-2 nodes,
// until it reaches a junction, runs out of graph, or exceeds maxLength
// (maxLength <= 0 means unbounded).
func (g *Graph) TraceFromLeaf(leaf orb.Point, maxLength float64) Chain {
	ch := Chain{NodePath: []orb.Point{leaf}}

	visited := map[int]bool{}
	current := leaf

	for {
		var next *Edge
		for _, id := range g.IncidentEdges(current) {
			if !visited[id] {
				next = g.Edges[id]
				break
			}
		}
		if next == nil {
			ch.Junction = current
			return ch
		}

		visited[next.ID] = true
		ch.EdgeIDs = append(ch.EdgeIDs, next.ID)
		ch.Length += next.Length

		current = next.OtherEnd(current)
		ch.NodePath = append(ch.NodePath, current)

		if g.Degree(current) >= 3 {
			ch.Junction = current
			ch.ReachedJunction = true
			return ch
		}
		if g.Degree(current) == 1 {
			ch.Junction = current
			return ch
		}
		if maxLength > 0 && ch.Length > maxLength {
			ch.Junction = current
			return ch
		}
	}
}

// MergeDegree2Nodes fuses maximal degree-2 runs into single polyline edges so
// each edge spans junction-to-junction or junction-to-terminal. Radius
// statistics are recombined length-weighted.
func (g *Graph) MergeDegree2Nodes() {
	for {
		merged := 0
		for _, p := range g.SortedNodes() {
			if g.Degree(p) != 2 {
				continue
			}
			ids := g.IncidentEdges(p)
			if len(ids) != 2 || ids[0] == ids[1] {
				continue // a loop anchored here stays as-is
			}

			e1 := g.Edges[ids[0]]
			e2 := g.Edges[ids[1]]

			geom := joinAt(e1, e2, p)
			if geom == nil {
				continue
			}

			minR := e1.MinRadius
			if e2.MinRadius < minR {
				minR = e2.MinRadius
			}
			total := e1.Length + e2.Length
			meanR := e1.MeanRadius
			if total > 0 {
				meanR = (e1.MeanRadius*e1.Length + e2.MeanRadius*e2.Length) / total
			}
			polyID := e1.PolygonID

			g.RemoveEdge(e1.ID)
			g.RemoveEdge(e2.ID)
			g.AddEdge(geom, minR, meanR, polyID)
			merged++
		}
		if merged == 0 {
			return
		}
	}
}

// joinAt concatenates the geometries of e1 and e2 through their shared node
// p, oriented away from e1's far end.
func joinAt(e1, e2 *Edge, p orb.Point) orb.LineString {
	g1 := append(orb.LineString(nil), e1.Geometry...)
	g2 := append(orb.LineString(nil), e2.Geometry...)

	if g1[0] == p {
		reverseLine(g1)
	}
	if g1[len(g1)-1] != p {
		return nil
	}
	if g2[len(g2)-1] == p {
		reverseLine(g2)
	}
	if g2[0] != p {
		return nil
	}

	return append(g1, g2[1:]...)
}

func reverseLine(ls orb.LineString) {
	for i, j := 0, len(ls)-1; i < j; i, j = i+1, j-1 {
		ls[i], ls[j] = ls[j], ls[i]
	}
}

// TotalLength sums the length of every edge.
func (g *Graph) TotalLength() float64 {
	total := 0.0
	for _, e := range g.Edges {
		total += e.Length
	}
	return total
}
