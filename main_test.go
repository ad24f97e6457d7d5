package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractBody(t *testing.T, cfgJSON string) *bytes.Buffer {
	t.Helper()

	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Polygon{{{0, 0}, {30, 0}, {30, 5}, {0, 5}, {0, 0}}}))

	body := map[string]json.RawMessage{}
	fcData, err := json.Marshal(fc)
	require.NoError(t, err)
	body["polygons"] = fcData
	if cfgJSON != "" {
		body["config"] = json.RawMessage(cfgJSON)
	}

	data, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func TestExtractHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/extract",
		extractBody(t, `{"ratio_threshold": 2.2, "terminal_gap_warn": 3.5}`))
	rec := httptest.NewRecorder()

	extractHandler(testLogger())(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Report)
	assert.Equal(t, 1, resp.Report.Components)
	require.NotNil(t, resp.Centerlines)
	assert.NotEmpty(t, resp.Centerlines.Features)
}

func TestExtractHandlerRejectsBadConfig(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/extract",
		extractBody(t, `{"snap_tolerance": -1}`))
	rec := httptest.NewRecorder()

	extractHandler(testLogger())(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractHandlerRejectsGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/extract", nil)
	rec := httptest.NewRecorder()

	extractHandler(testLogger())(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	healthHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ready", status["status"])
}

func TestCORSMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	rec := httptest.NewRecorder()

	corsMiddleware(healthHandler)(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
