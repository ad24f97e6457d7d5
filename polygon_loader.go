package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// InputPolygon is one road-surface polygon with its stable source ID.
type InputPolygon struct {
	ID      int
	Polygon orb.Polygon
}

// PolygonSource supplies the input polygon set. The pipeline assumes a
// projected CRS with meter units; no reprojection happens here.
type PolygonSource interface {
	Load() ([]InputPolygon, error)
}

// DirectoryPolygonSource loads every *.geojson file under a directory.
// Unreadable or unparsable files are skipped with a warning, matching the
// per-file tolerance of the rest of the batch.
type DirectoryPolygonSource struct {
	Dir    string
	Logger *slog.Logger
}

func (s *DirectoryPolygonSource) Load() ([]InputPolygon, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	files, err := filepath.Glob(filepath.Join(s.Dir, "*.geojson"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputInvalid, err)
	}

	var all []InputPolygon
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Warn("failed to read polygon file", "file", file, "error", err)
			continue
		}

		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			logger.Warn("failed to parse polygon file", "file", file, "error", err)
			continue
		}

		polygons := PolygonsFromFeatureCollection(fc, len(all))
		logger.Info("loaded polygons", "file", filepath.Base(file), "count", len(polygons))
		all = append(all, polygons...)
	}

	logger.Info("polygon set ready", "total", len(all))
	return all, nil
}

// PolygonsFromFeatureCollection extracts Polygon and MultiPolygon features,
// assigning sequential IDs starting at nextID.
func PolygonsFromFeatureCollection(fc *geojson.FeatureCollection, nextID int) []InputPolygon {
	var out []InputPolygon
	for _, f := range fc.Features {
		switch geom := f.Geometry.(type) {
		case orb.Polygon:
			out = append(out, InputPolygon{ID: nextID + len(out), Polygon: geom})
		case orb.MultiPolygon:
			for _, poly := range geom {
				out = append(out, InputPolygon{ID: nextID + len(out), Polygon: poly})
			}
		}
	}
	return out
}
