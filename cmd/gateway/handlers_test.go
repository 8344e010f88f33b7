package main

import (
	"bytes"
	"encoding/json"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"storefront-imagery/internal/artifacts"
	"storefront-imagery/internal/batch"
	"storefront-imagery/internal/config"
	"storefront-imagery/internal/imaging"
)

func newTestGateway(t *testing.T) (*gateway, http.Handler) {
	t.Helper()
	cfg := config.Default()
	cfg.ArtifactsRoot = t.TempDir()
	cfg.Batch.Delay = 0
	synth := imaging.New(imaging.WithIDGenerator(func() string { return "fixed" }))
	g := newGateway(synth, localCatalog{}, artifacts.NewStore(cfg.ArtifactsRoot), cfg, zap.NewNop())
	return g, g.routes()
}

func TestImagesReturnsJPEG(t *testing.T) {
	_, handler := newTestGateway(t)

	body := `{"product_name":"Elegant Silk Saree","category":"Sarees","width":400,"height":200,"seed":3}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/images", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "accurate-sarees-fixed.jpg")
	assert.Equal(t, "Sarees", rec.Header().Get("X-Template"))
	assert.Equal(t, "3", rec.Header().Get("X-Seed"))

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestImagesSaveAndServeArtifact(t *testing.T) {
	g, handler := newTestGateway(t)

	body := `{"name":"Temple Gold Jhumkas","category":"Jewelry","save":"products"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/images", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, filepath.Join(g.store.Root(), "products", "accurate-jewelry-fixed.jpg"), rec.Header().Get("X-Artifact-Path"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/artifacts/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Artifacts []string `json:"artifacts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, []string{"accurate-jewelry-fixed.jpg"}, listing.Artifacts)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/artifacts/products/accurate-jewelry-fixed.jpg", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	_, err := jpeg.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	assert.NoError(t, err)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/artifacts/products/missing.jpg", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/artifacts/thumbnails", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestImagesRejectsBadInput(t *testing.T) {
	_, handler := newTestGateway(t)

	cases := map[string]string{
		"json":    `{not-json`,
		"format":  `{"category":"Sarees","format":"gif"}`,
		"size":    `{"category":"Sarees","width":100000}`,
		"quality": `{"category":"Sarees","quality":101}`,
		"kind":    `{"category":"Sarees","save":"thumbnails"}`,
	}
	for name, body := range cases {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/images", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/images", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestBatchLifecycle(t *testing.T) {
	g, handler := newTestGateway(t)

	body := `{"kind":"patterns","width":200,"height":200,"delay_ms":0,"products":[["Bridal Lehenga","Lehengas"],{"name":"Mystery","category":"Handbags"}]}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/batches", strings.NewReader(body)))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var submitted jobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	require.NotEmpty(t, submitted.JobID)

	require.Eventually(t, func() bool {
		job, ok := g.runner.Status(submitted.JobID)
		return ok && job.Done()
	}, 5*time.Second, 10*time.Millisecond)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/jobs/"+submitted.JobID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var job batch.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, batch.StateCompleted, job.State)
	assert.Equal(t, 2, job.Succeeded)
	assert.Equal(t, artifacts.Patterns, job.Kind)

	names, err := g.store.List(artifacts.Patterns)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"accurate-lehengas-fixed.jpg", "accurate-handbags-fixed.jpg"}, names)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), submitted.JobID)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/jobs/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchRejectsBadInput(t *testing.T) {
	_, handler := newTestGateway(t)

	for _, body := range []string{`{not-json`, `{"products":[]}`, `{"kind":"thumbnails","products":["A"]}`, `{"format":"gif","products":["A"]}`} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/batches", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestCategories(t *testing.T) {
	_, handler := newTestGateway(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Categories []imaging.CategoryInfo `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, imaging.Describe(), resp.Categories)
}

func TestCORSPreflight(t *testing.T) {
	_, handler := newTestGateway(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/v1/images", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := config.Default()
	cfg.ArtifactsRoot = t.TempDir()
	g := newGateway(imaging.New(), localCatalog{}, artifacts.NewStore(cfg.ArtifactsRoot), cfg, zap.New(core))

	rec := httptest.NewRecorder()
	g.writeJSON(rec, http.StatusOK, map[string]any{"c": make(chan int)})

	assert.Equal(t, http.StatusOK, rec.Code)
	entries := logs.FilterMessage("json encode error").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap(), "error")
}
