package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/aacflow/internal/logging"
	"github.com/aretw0/aacflow/internal/presentation/graph"
	"github.com/aretw0/aacflow/internal/runtime"
	"github.com/aretw0/aacflow/pkg/domain"
	"github.com/aretw0/aacflow/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds request bodies; token lists are short.
const maxBodyBytes = 64 << 10

// Server exposes a Composer over HTTP.
type Server struct {
	Engine  ports.Composer
	Streams *StreamManager

	logger         *slog.Logger
	metrics        http.Handler
	requestTimeout time.Duration
	version        string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used for request errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStreams attaches the stream manager fed by the engine's hooks.
// Without it /v1/events is not served.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetricsHandler overrides the handler mounted on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithRequestTimeout bounds each composition request. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.requestTimeout = d
	}
}

// WithVersion sets the version reported by /healthz.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// TokensRequest is the body accepted by the sentence and phrase endpoints.
type TokensRequest struct {
	Tokens []string `json:"tokens"`
}

// ErrorResponse is written for every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	NodeID string `json:"node_id,omitempty"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Composer, opts ...Option) http.Handler {
	s := &Server{
		Engine:  engine,
		logger:  logging.NewNop(),
		metrics: promhttp.Handler(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.GetHealth)
	r.Handle("/metrics", s.metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/graph", s.GetGraph)
		r.Post("/users/{userID}/sentence", s.ComposeSentence)
		r.Post("/users/{userID}/phrases", s.RecordPhrases)
		if s.Streams != nil {
			r.Get("/events", s.SubscribeEvents)
		}
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if s.version != "" {
		resp["version"] = s.version
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetGraph handles GET /v1/graph. ?format=mermaid returns a diagram instead of JSON.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	g := s.Engine.Graph()
	if r.URL.Query().Get("format") == "mermaid" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, graph.GenerateMermaid(g, nil))
		return
	}
	s.writeJSON(w, http.StatusOK, g.Describe())
}

// ComposeSentence handles POST /v1/users/{userID}/sentence.
// A body with tokens composes from them; an empty body reads the phrase store.
func (s *Server) ComposeSentence(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	req, err := decodeTokens(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	var res *domain.Result
	if hasTokens(req.Tokens) {
		res, err = s.Engine.Compose(ctx, userID, req.Tokens)
	} else {
		res, err = s.Engine.Run(ctx, userID)
	}
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

// RecordPhrases handles POST /v1/users/{userID}/phrases.
func (s *Server) RecordPhrases(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	req, err := decodeTokens(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if !hasTokens(req.Tokens) {
		s.writeError(w, r, http.StatusBadRequest, errors.New("tokens are required"))
		return
	}

	if err := s.Engine.Record(r.Context(), userID, req.Tokens...); err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeTokens(r *http.Request) (TokensRequest, error) {
	var req TokensRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}

func statusFor(err error) int {
	var nodeErr *runtime.NodeError
	switch {
	case errors.Is(err, domain.ErrEmptyUserID), domain.IsInvalidToken(err):
		return http.StatusBadRequest
	case errors.Is(err, ports.ErrNoRecorder):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &nodeErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var nodeErr *runtime.NodeError
	if errors.As(err, &nodeErr) {
		resp.NodeID = nodeErr.NodeID
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err,
	)

	s.writeJSON(w, status, resp)
}

// hasTokens reports whether any token survives trimming.
func hasTokens(tokens []string) bool {
	for _, t := range tokens {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}
