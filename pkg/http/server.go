// Package http exposes a recording session's datasets and queries over
// HTTP. Ingested arrays are wrapped into the pkg/observe types at this
// boundary; queries arrive as JSON requests or HCL query files.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/leowmjw/go-obs-query/pkg/engine"
	queryhcl "github.com/leowmjw/go-obs-query/pkg/hcl"
	"github.com/leowmjw/go-obs-query/pkg/observe"
)

// Server serves a Store over HTTP.
type Server struct {
	logger *slog.Logger
	store  *engine.Store
	addr   string
}

// NewServer creates a new HTTP server around the given store.
func NewServer(logger *slog.Logger, store *engine.Store, addr string) *Server {
	return &Server{
		logger: logger,
		store:  store,
		addr:   addr,
	}
}

// Handler returns the route table with logging middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /datasets/{name}/continuous", s.handleIngestContinuous)
	mux.HandleFunc("POST /datasets/{name}/points", s.handleIngestPoints)
	mux.HandleFunc("GET /datasets", s.handleListDatasets)
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.loggingMiddleware(mux)
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr)

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// continuousPayload is the wire form of a continuous dataset.
type continuousPayload struct {
	Timestamps   []float64    `json:"timestamps"`
	Samples      [][]float64  `json:"samples,omitempty"`
	Values       []float64    `json:"values,omitempty"` // scalar shorthand for samples
	ObsIntervals [][2]float64 `json:"obs_intervals,omitempty"`
	InferGaps    bool         `json:"infer_gaps,omitempty"`
	GapFactor    float64      `json:"gap_factor,omitempty"`
}

func (s *Server) handleIngestContinuous(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var payload continuousPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	samples := payload.Samples
	if samples == nil && payload.Values != nil {
		samples = observe.Column(payload.Values)
	}

	var data observe.ContinuousData
	var err error
	switch {
	case payload.InferGaps:
		data, err = observe.NewContinuousDataInferGaps(samples, payload.Timestamps, payload.GapFactor)
	case payload.ObsIntervals != nil:
		var obs observe.TimeIntervals
		if obs, err = observe.NewTimeIntervals(payload.ObsIntervals); err == nil {
			data, err = observe.NewContinuousDataWithObs(samples, payload.Timestamps, obs)
		}
	default:
		data, err = observe.NewContinuousData(samples, payload.Timestamps)
	}
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	info := s.store.PutContinuous(name, data)
	s.logger.Info("Stored continuous dataset", "name", name, "samples", info.Len, "fingerprint", info.Fingerprint)
	s.respondJSON(w, http.StatusCreated, info)
}

// pointsPayload is the wire form of a point dataset.
type pointsPayload struct {
	EventTimes   []float64    `json:"event_times"`
	Marks        [][]float64  `json:"marks,omitempty"`
	ObsIntervals [][2]float64 `json:"obs_intervals"`
}

func (s *Server) handleIngestPoints(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var payload pointsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	obs, err := observe.NewTimeIntervals(payload.ObsIntervals)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := observe.NewMarkedPointData(payload.EventTimes, obs, payload.Marks)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	info := s.store.PutPoints(name, data)
	s.logger.Info("Stored point dataset", "name", name, "events", info.Len, "fingerprint", info.Fingerprint)
	s.respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.store.Datasets())
}

// queryResponse labels one result; the name is empty for bare JSON
// requests.
type queryResponse struct {
	Name   string         `json:"name,omitempty"`
	Result *engine.Result `json:"result"`
}

// handleQuery accepts either a single JSON engine request or an HCL query
// file holding any number of named query blocks.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	var requests []engine.NamedRequest
	var request engine.Request
	if jsonErr := json.Unmarshal(body, &request); jsonErr == nil {
		requests = []engine.NamedRequest{{Request: request}}
	} else if queryhcl.IsHCL(body) {
		requests, err = queryhcl.ParseQueries(body, "query.hcl")
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		s.respondError(w, http.StatusBadRequest, "body is neither valid JSON nor HCL")
		return
	}
	if len(requests) == 0 {
		s.respondError(w, http.StatusBadRequest, "no queries in body")
		return
	}

	responses := make([]queryResponse, 0, len(requests))
	for _, req := range requests {
		result, err := s.store.Execute(req.Request)
		if err != nil {
			s.logger.Error("Query failed", "name", req.Name, "dataset", req.Dataset, "error", err)
			s.respondError(w, statusForError(err), err.Error())
			return
		}
		responses = append(responses, queryResponse{Name: req.Name, Result: result})
	}

	s.logger.Info("Query completed", "queries", len(responses))
	s.respondJSON(w, http.StatusOK, responses)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, observe.ErrShape),
		errors.Is(err, observe.ErrValidation),
		errors.Is(err, observe.ErrCapability):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Middleware for request logging
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		s.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
