package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// CenterlineSink receives the final centerline edges.
type CenterlineSink interface {
	Write(edges []*Edge) error
}

// SnapshotSink receives intermediate graphs when debug export is enabled.
type SnapshotSink interface {
	Write(stage string, g *Graph) error
}

// GeoJSONDir writes centerlines and snapshots as GeoJSON feature
// collections under a directory.
type GeoJSONDir struct {
	Dir  string
	Stem string
}

func (s *GeoJSONDir) Write(edges []*Edge) error {
	fc := geojson.NewFeatureCollection()
	for _, e := range edges {
		fc.Append(edgeFeature(e))
	}
	return s.writeFile(fmt.Sprintf("%s_centerline.geojson", s.Stem), fc)
}

// WriteSnapshot implements SnapshotSink under the stage-prefixed naming the
// debug exports use.
func (s *GeoJSONDir) WriteSnapshot(stage string, g *Graph) error {
	return s.writeFile(fmt.Sprintf("%s_%s.geojson", s.Stem, stage), GraphFeatureCollection(g))
}

func (s *GeoJSONDir) writeFile(name string, fc *geojson.FeatureCollection) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, name), data, 0o644)
}

// snapshotAdapter lets a GeoJSONDir satisfy SnapshotSink.
type snapshotAdapter struct {
	dir *GeoJSONDir
}

func (a snapshotAdapter) Write(stage string, g *Graph) error {
	return a.dir.WriteSnapshot(stage, g)
}

// GraphFeatureCollection converts every edge into a LineString feature
// carrying its length, radii and source polygon.
func GraphFeatureCollection(g *Graph) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, id := range g.SortedEdgeIDs() {
		fc.Append(edgeFeature(g.Edges[id]))
	}
	return fc
}

func edgeFeature(e *Edge) *geojson.Feature {
	geom := make(orb.LineString, len(e.Geometry))
	copy(geom, e.Geometry)

	f := geojson.NewFeature(geom)
	f.Properties = geojson.Properties{
		"length":      e.Length,
		"min_radius":  e.MinRadius,
		"mean_radius": e.MeanRadius,
		"polygon_id":  e.PolygonID,
	}
	return f
}
