// Package api serves the claim pipeline over HTTP: the Lex fulfillment hook,
// the REST intake routes, and the health and metrics endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dental-claims/internal/common/errors"
	"dental-claims/internal/common/logger"
	"dental-claims/internal/models"
	buildresponse "dental-claims/internal/workers/infrastructure/build-response"
	normalizeevent "dental-claims/internal/workers/infrastructure/normalize-event"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultMaxBodyBytes = 1 << 20

// Pipeline runs claim intents. *processclaimintent.Handler implements it.
type Pipeline interface {
	HandleEvent(ctx context.Context, raw []byte) interface{}
	Respond(ctx context.Context, intent *models.Intent) *buildresponse.LexResponse
}

// RecordLister reads the audit trail of a session.
type RecordLister interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.ClaimRecord, error)
}

// ReadinessCheck reports whether a backing service is reachable.
type ReadinessCheck func(ctx context.Context) error

type Config struct {
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

type Server struct {
	config   Config
	pipeline Pipeline
	records  RecordLister
	checks   map[string]ReadinessCheck
	logger   logger.Logger
	mux      *http.ServeMux
}

// NewServer builds the router. records and checks may be nil.
func NewServer(config Config, pipeline Pipeline, records RecordLister, checks map[string]ReadinessCheck, log logger.Logger) *Server {
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = defaultMaxBodyBytes
	}
	s := &Server{
		config:   config,
		pipeline: pipeline,
		records:  records,
		checks:   checks,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /lex", s.handleLexEvent)
	for _, path := range []string{"/api/intents", "/api/pre-approval", "/api/reimbursement", "/api/dentists"} {
		s.mux.HandleFunc("POST "+path, s.handleIntent)
	}
	s.mux.HandleFunc("GET /api/claims/{sessionId}", s.handleListClaims)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ready", s.handleReady)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("request panic recovered", map[string]interface{}{
				"path":  r.URL.Path,
				"panic": fmt.Sprint(p),
			})
			writeJSON(rec, http.StatusInternalServerError, buildresponse.CriticalErrorResponse(nil))
		}
		s.logger.Debug("request served", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"durationMs": time.Since(start).Milliseconds(),
		})
	}()

	setCORSHeaders(rec.Header())
	if r.Method == http.MethodOptions {
		rec.WriteHeader(http.StatusNoContent)
		return
	}

	if s.config.RequestTimeout > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
		defer cancel()
		r = r.WithContext(ctx)
	}
	s.mux.ServeHTTP(rec, r)
}

// handleLexEvent accepts a raw Lex or API Gateway proxy event.
func (s *Server) handleLexEvent(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	switch reply := s.pipeline.HandleEvent(r.Context(), body).(type) {
	case *buildresponse.APIGatewayResponse:
		for k, v := range reply.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(reply.StatusCode)
		_, _ = io.WriteString(w, reply.Body)
	default:
		writeJSON(w, http.StatusOK, reply)
	}
}

// handleIntent accepts a custom intake body. The route path supplies the
// intent when the body names none.
func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	intent, err := normalizeevent.NormalizeBody(r.URL.Path, body)
	if err != nil {
		s.logger.Warn("intake body rejected", map[string]interface{}{
			"path":  r.URL.Path,
			"error": err.Error(),
		})
		writeJSON(w, http.StatusBadRequest, buildresponse.BuildLexResponse(&models.ResultEnvelope{
			Status:  string(errors.KindInvalidEventStructure),
			Message: errors.KindInvalidEventStructure.Message(),
		}, nil))
		return
	}

	writeJSON(w, http.StatusOK, s.pipeline.Respond(r.Context(), intent))
}

func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	if s.records == nil {
		http.NotFound(w, r)
		return
	}

	sessionID := r.PathValue("sessionId")
	records, err := s.records.ListBySession(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("failed to list claim records", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "claim records unavailable"})
		return
	}
	if records == nil {
		records = []models.ClaimRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"records":   records,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	report := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			report[name] = err.Error()
			continue
		}
		report[name] = "ok"
	}
	writeJSON(w, status, map[string]interface{}{
		"ready":  status == http.StatusOK,
		"checks": report,
	})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
		return nil, false
	}
	return body, true
}

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
