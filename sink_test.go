package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoJSONDirWriteAndReload(t *testing.T) {
	dir := t.TempDir()

	g := NewGraph()
	g.AddEdge(orb.LineString{{0, 0}, {10, 0}, {20, 1}}, 1.5, 2, 3)

	sink := &GeoJSONDir{Dir: dir, Stem: "roads"}

	edges := make([]*Edge, 0, g.EdgeCount())
	for _, id := range g.SortedEdgeIDs() {
		edges = append(edges, g.Edges[id])
	}
	require.NoError(t, sink.Write(edges))

	data, err := os.ReadFile(filepath.Join(dir, "roads_centerline.geojson"))
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	f := fc.Features[0]
	ls, ok := f.Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Len(t, ls, 3)
	assert.EqualValues(t, 3, f.Properties["polygon_id"])
}

func TestGeoJSONDirSnapshots(t *testing.T) {
	dir := t.TempDir()

	g := NewGraph()
	g.AddEdge(orb.LineString{{0, 0}, {5, 0}}, 1, 1, 0)

	sink := &GeoJSONDir{Dir: dir, Stem: "roads"}
	adapter := snapshotAdapter{dir: sink}
	require.NoError(t, adapter.Write("01_skeleton", g))

	_, err := os.Stat(filepath.Join(dir, "roads_01_skeleton.geojson"))
	assert.NoError(t, err)
}

func TestGraphFeatureCollectionRoundTrip(t *testing.T) {
	g := NewGraph()
	g.AddEdge(orb.LineString{{0, 0}, {10, 0}}, 2, 2, 0)
	g.AddEdge(orb.LineString{{10, 0}, {10, 10}}, 2, 2, 1)

	fc := GraphFeatureCollection(g)
	require.Len(t, fc.Features, 2)

	data, err := json.Marshal(fc)
	require.NoError(t, err)

	parsed, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	loaded := PolygonsFromFeatureCollection(parsed, 0)
	assert.Empty(t, loaded, "line features are not polygons")
}

func TestDirectoryPolygonSource(t *testing.T) {
	dir := t.TempDir()

	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Polygon{{{0, 0}, {10, 0}, {10, 5}, {0, 5}, {0, 0}}}))
	fc.Append(geojson.NewFeature(orb.MultiPolygon{
		{{{20, 0}, {30, 0}, {30, 5}, {20, 5}, {20, 0}}},
		{{{40, 0}, {50, 0}, {50, 5}, {40, 5}, {40, 0}}},
	}))
	data, err := json.Marshal(fc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roads.geojson"), data, 0o644))

	// A broken file is skipped, not fatal
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.geojson"), []byte("{"), 0o644))

	source := &DirectoryPolygonSource{Dir: dir, Logger: testLogger()}
	polygons, err := source.Load()
	require.NoError(t, err)
	require.Len(t, polygons, 3)

	ids := map[int]bool{}
	for _, p := range polygons {
		ids[p.ID] = true
		assert.NotEmpty(t, p.Polygon)
	}
	assert.Len(t, ids, 3, "sequential IDs are unique")
}
