package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/paulmach/orb/geojson"
)

var (
	globalResult *PipelineResult
	resultMutex  sync.RWMutex
)

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// ExtractRequest is the POST /extract body: the polygon layer plus
// optional config overrides on top of the defaults.
type ExtractRequest struct {
	Polygons *geojson.FeatureCollection `json:"polygons"`
	Config   json.RawMessage            `json:"config,omitempty"`
}

type ExtractResponse struct {
	Success     bool                       `json:"success"`
	Message     string                     `json:"message,omitempty"`
	Centerlines *geojson.FeatureCollection `json:"centerlines,omitempty"`
	Report      *DiagnosticsReport         `json:"report,omitempty"`
}

func extractHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req ExtractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Polygons == nil {
			http.Error(w, "Missing polygons", http.StatusBadRequest)
			return
		}

		cfg, err := ConfigFromJSON(req.Config)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ExtractResponse{Success: false, Message: err.Error()})
			return
		}

		polygons := PolygonsFromFeatureCollection(req.Polygons, 0)
		logger.Info("extract request", "polygons", len(polygons))

		ctx := &PipelineContext{
			Config:   cfg,
			Polygons: polygons,
			Logger:   logger,
			ShouldCancel: func() bool {
				return r.Context().Err() != nil
			},
		}

		result, err := RunPipeline(ctx)
		if err != nil {
			logger.Error("pipeline failed", "error", err)
			writeJSON(w, http.StatusUnprocessableEntity, ExtractResponse{Success: false, Message: err.Error()})
			return
		}

		resultMutex.Lock()
		globalResult = result
		resultMutex.Unlock()

		writeJSON(w, http.StatusOK, ExtractResponse{
			Success:     true,
			Centerlines: GraphFeatureCollection(result.Graph),
			Report:      result.Report,
		})
	}
}

// GET /health - readiness plus last-run stats
func healthHandler(w http.ResponseWriter, r *http.Request) {
	resultMutex.RLock()
	result := globalResult
	resultMutex.RUnlock()

	status := map[string]interface{}{
		"status":    "ready",
		"hasResult": result != nil,
	}
	if result != nil {
		status["edges"] = result.Report.Edges
		status["components"] = result.Report.Components
	}
	writeJSON(w, http.StatusOK, status)
}

// GET /lastResult - the last extracted centerline network as GeoJSON
func lastResultHandler(w http.ResponseWriter, r *http.Request) {
	resultMutex.RLock()
	result := globalResult
	resultMutex.RUnlock()

	if result == nil {
		http.Error(w, "No extraction has run yet. Call /extract first", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, GraphFeatureCollection(result.Graph))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func main() {
	inputDir := flag.String("input", "", "directory of *.geojson road polygon layers to process at startup")
	outputDir := flag.String("output", "result", "directory for centerline and snapshot output")
	listen := flag.String("listen", ":8080", "HTTP listen address")
	debug := flag.Bool("debug", false, "export intermediate snapshots")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *inputDir != "" {
		source := &DirectoryPolygonSource{Dir: *inputDir, Logger: logger}
		polygons, err := source.Load()
		if err != nil {
			logger.Error("failed to load polygons", "error", err)
			os.Exit(1)
		}

		cfg := DefaultConfig()
		cfg.DebugExportIntermediate = *debug

		sink := &GeoJSONDir{Dir: *outputDir, Stem: "roads"}
		ctx := &PipelineContext{
			Config:    cfg,
			Polygons:  polygons,
			Logger:    logger,
			Snapshots: snapshotAdapter{dir: sink},
		}

		result, err := RunPipeline(ctx)
		if err != nil {
			logger.Error("pipeline failed", "error", err)
			os.Exit(1)
		}

		edges := make([]*Edge, 0, result.Graph.EdgeCount())
		for _, id := range result.Graph.SortedEdgeIDs() {
			edges = append(edges, result.Graph.Edges[id])
		}
		if err := sink.Write(edges); err != nil {
			logger.Error("failed to write centerlines", "error", err)
			os.Exit(1)
		}

		resultMutex.Lock()
		globalResult = result
		resultMutex.Unlock()

		logger.Info("batch extraction complete",
			"edges", result.Report.Edges, "components", result.Report.Components)
	}

	http.HandleFunc("/extract", corsMiddleware(extractHandler(logger)))
	http.HandleFunc("/lastResult", corsMiddleware(lastResultHandler))
	http.HandleFunc("/health", corsMiddleware(healthHandler))

	logger.Info("centerline extractor listening", "addr", *listen)
	if err := http.ListenAndServe(*listen, nil); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
