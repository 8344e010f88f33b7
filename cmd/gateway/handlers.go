package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront-imagery/internal/artifacts"
	"storefront-imagery/internal/batch"
	"storefront-imagery/internal/config"
	"storefront-imagery/internal/imaging"
)

const maxBodyBytes = 1 << 20

type categoryLister interface {
	ListCategories(ctx context.Context) ([]imaging.CategoryInfo, error)
}

type jobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type imageRequest struct {
	ProductName string `json:"product_name"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Quality     int    `json:"quality"`
	Format      string `json:"format"`
	Seed        int64  `json:"seed"`
	Save        string `json:"save"`
}

type gateway struct {
	synth   batch.Synthesizer
	catalog categoryLister
	store   *artifacts.Store
	runner  *batch.Runner
	cfg     *config.Config
	logger  *zap.Logger
}

func newGateway(synth batch.Synthesizer, catalog categoryLister, store *artifacts.Store, cfg *config.Config, logger *zap.Logger) *gateway {
	return &gateway{
		synth:   synth,
		catalog: catalog,
		store:   store,
		runner:  batch.NewRunner(synth, store, logger.Named("batch"), 30*time.Second),
		cfg:     cfg,
		logger:  logger,
	}
}

func (g *gateway) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", g.handleHealth)
	mux.HandleFunc("/v1/categories", g.handleCategories)
	mux.HandleFunc("/v1/images", g.handleImages)
	mux.HandleFunc("/v1/batches", g.handleBatches)
	mux.HandleFunc("/v1/jobs/", g.handleJob)
	mux.HandleFunc("/v1/jobs", g.handleJobIndex)
	mux.HandleFunc("/v1/artifacts/", g.handleArtifacts)
	return logRequests(g.logger, withCORS(mux))
}

func (g *gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *gateway) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	infos, err := g.catalog.ListCategories(ctx)
	if err != nil {
		g.logger.Warn("list categories failed", zap.Error(err))
		http.Error(w, "failed to load categories", http.StatusBadGateway)
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]any{"categories": infos})
}

func (g *gateway) handleImages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	payload, ok := readBody(w, r)
	if !ok {
		return
	}

	var body imageRequest
	if err := json.Unmarshal(payload, &body); err != nil {
		g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	format, err := imaging.ParseFormat(firstNonEmpty(body.Format, g.cfg.Output.Format))
	if err != nil {
		g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	req := imaging.Request{
		ProductName: firstNonEmpty(body.ProductName, body.Name),
		Category:    body.Category,
		Width:       firstPositive(body.Width, g.cfg.Output.Width),
		Height:      firstPositive(body.Height, g.cfg.Output.Height),
		Quality:     firstPositive(body.Quality, g.cfg.Output.Quality),
		Format:      format,
		Seed:        body.Seed,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	artifact, err := g.synth.Synthesize(ctx, req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, imaging.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		g.logger.Warn("synthesize failed", zap.String("category", req.Category), zap.Error(err))
		g.writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	if body.Save != "" {
		kind, err := artifacts.ParseKind(body.Save)
		if err != nil {
			g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		path, err := g.store.Save(kind, artifact.Filename, artifact.Data)
		if err != nil {
			g.logger.Error("save artifact failed", zap.String("file", artifact.Filename), zap.Error(err))
			http.Error(w, "failed to save artifact", http.StatusInternalServerError)
			return
		}
		w.Header().Set("X-Artifact-Path", path)
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+artifact.Filename+`"`)
	w.Header().Set("X-Category", artifact.Category)
	w.Header().Set("X-Template", artifact.Template)
	w.Header().Set("X-Color", artifact.Color)
	w.Header().Set("X-Seed", strconv.FormatInt(artifact.Seed, 10))
	w.Header().Set("X-Postprocessed", strconv.FormatBool(artifact.Postprocessed))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

func (g *gateway) handleBatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	payload, ok := readBody(w, r)
	if !ok {
		return
	}

	var items []batch.Item
	if len(strings.TrimSpace(string(payload))) == 0 {
		items = batch.FromProducts(g.cfg.Batch.Products)
	} else {
		parsed, err := batch.ParseItems(payload)
		if err != nil {
			g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		items = parsed
	}

	opts := batch.ParseOptions(payload, batch.Options{
		Kind:    g.cfg.Batch.Kind,
		Width:   g.cfg.Output.Width,
		Height:  g.cfg.Output.Height,
		Quality: g.cfg.Output.Quality,
		Format:  g.cfg.Output.Format,
		DelayMS: int(time.Duration(g.cfg.Batch.Delay) / time.Millisecond),
	})
	format, err := imaging.ParseFormat(opts.Format)
	if err != nil {
		g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	jobID, err := g.runner.Submit(batch.Batch{
		Kind:    artifacts.Kind(opts.Kind),
		Items:   items,
		Delay:   time.Duration(opts.DelayMS) * time.Millisecond,
		Width:   opts.Width,
		Height:  opts.Height,
		Quality: opts.Quality,
		Format:  format,
	})
	if err != nil {
		g.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	g.writeJSON(w, http.StatusAccepted, jobResponse{JobID: jobID, Status: batch.StateQueued})
}

func (g *gateway) handleJobIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	g.writeJSON(w, http.StatusOK, map[string]any{"jobs": g.runner.Jobs()})
}

func (g *gateway) handleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/jobs/")
	if id == "" {
		http.Error(w, "missing job id", http.StatusBadRequest)
		return
	}
	job, ok := g.runner.Status(id)
	if !ok {
		g.writeJSON(w, http.StatusNotFound, errorResponse{Error: "job not found"})
		return
	}
	g.writeJSON(w, http.StatusOK, job)
}

// handleArtifacts serves /v1/artifacts/{kind} as a listing and
// /v1/artifacts/{kind}/{name} as the file itself.
func (g *gateway) handleArtifacts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/artifacts/"), "/")
	kindName, name, _ := strings.Cut(rest, "/")
	kind, err := artifacts.ParseKind(kindName)
	if err != nil {
		g.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	if name == "" {
		names, err := g.store.List(kind)
		if err != nil {
			g.logger.Error("list artifacts failed", zap.String("kind", string(kind)), zap.Error(err))
			http.Error(w, "failed to list artifacts", http.StatusInternalServerError)
			return
		}
		if names == nil {
			names = []string{}
		}
		g.writeJSON(w, http.StatusOK, map[string]any{"kind": kind, "artifacts": names})
		return
	}

	path, err := g.store.Path(kind, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, artifacts.ErrBadName) {
			http.Error(w, "artifact not found", http.StatusNotFound)
			return
		}
		g.logger.Error("artifact lookup failed", zap.String("name", name), zap.Error(err))
		http.Error(w, "failed to read artifact", http.StatusInternalServerError)
		return
	}
	http.ServeFile(w, r, path)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	defer r.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}
	if int64(len(payload)) > maxBodyBytes {
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return nil, false
	}
	return payload, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func (g *gateway) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		g.logger.Warn("json encode error", zap.Error(err))
	}
}

func logRequests(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Artifact-Path, X-Category, X-Template, X-Color, X-Seed, X-Postprocessed")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
