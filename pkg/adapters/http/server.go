package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/sideeye"
	"github.com/aretw0/sideeye/internal/dto"
	"github.com/aretw0/sideeye/internal/logging"
	"github.com/aretw0/sideeye/pkg/domain"
	"github.com/aretw0/sideeye/pkg/ports"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds POST /trials request bodies.
const maxBodyBytes = 8 << 20

// Server exposes an Analyzer over HTTP.
type Server struct {
	Analyzer ports.Analyzer
	Streams  *StreamManager

	spec     *openapi3.T
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager whose Hooks are registered on the analyzer,
// so that GET /events sees the analyzer's trial events.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithGatherer sets the Prometheus registry served at /metrics (default: the global one).
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the analyzer.
func NewHandler(analyzer ports.Analyzer, opts ...Option) (http.Handler, error) {
	spec, err := LoadSpec()
	if err != nil {
		return nil, err
	}

	server := &Server{
		Analyzer: analyzer,
		spec:     spec,
		gatherer: prometheus.DefaultGatherer,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Streams == nil {
		server.Streams = NewStreamManager(server.logger)
	}

	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/events", server.SubscribeEvents)

	r.Route("/trials", func(r chi.Router) {
		r.Get("/", server.ListTrials)
		r.Post("/", server.BuildTrial)
		r.Get("/{key}", server.GetTrial)
		r.Delete("/{key}", server.DeleteTrial)
		r.Post("/{key}/measures", server.MeasureTrial)
	})
	r.Route("/items", func(r chi.Router) {
		r.Get("/", server.ListItems)
		r.Get("/{number}", server.GetItem)
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>sideeye API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// BuildTrial handles the POST /trials request.
func (s *Server) BuildTrial(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validateBody(s.spec, "TrialInput", body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		s.logger.Warn("BuildTrial: Invalid request body", "err", err)
		return
	}

	var in dto.TrialInput
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req := in.ToRequest()
	trial, err := s.Analyzer.Build(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, "BuildTrial", err)
		return
	}

	key := sideeye.StorageKey(req, trial)
	w.Header().Set("Location", "/trials/"+key)
	writeJSON(w, http.StatusCreated, trialResponse{Key: key, Trial: trial})
}

// ListTrials handles the GET /trials request.
func (s *Server) ListTrials(w http.ResponseWriter, r *http.Request) {
	keys, err := s.Analyzer.Trials(r.Context())
	if err != nil {
		s.writeDomainError(w, "ListTrials", err)
		return
	}
	writeJSON(w, http.StatusOK, keyList{Keys: nonNil(keys)})
}

// GetTrial handles the GET /trials/{key} request.
func (s *Server) GetTrial(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	trial, err := s.Analyzer.Trial(r.Context(), key)
	if err != nil {
		s.writeDomainError(w, "GetTrial", err)
		return
	}
	writeJSON(w, http.StatusOK, trialResponse{Key: key, Trial: trial})
}

// DeleteTrial handles the DELETE /trials/{key} request.
func (s *Server) DeleteTrial(w http.ResponseWriter, r *http.Request) {
	if err := s.Analyzer.DeleteTrial(r.Context(), chi.URLParam(r, "key")); err != nil {
		s.writeDomainError(w, "DeleteTrial", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MeasureTrial handles the POST /trials/{key}/measures request.
func (s *Server) MeasureTrial(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	trial, err := s.Analyzer.Measure(r.Context(), key)
	if err != nil {
		s.writeDomainError(w, "MeasureTrial", err)
		return
	}
	writeJSON(w, http.StatusOK, trialResponse{Key: key, Trial: trial})
}

// ListItems handles the GET /items request.
func (s *Server) ListItems(w http.ResponseWriter, r *http.Request) {
	numbers, err := s.Analyzer.Items(r.Context())
	if err != nil {
		s.writeDomainError(w, "ListItems", err)
		return
	}
	writeJSON(w, http.StatusOK, keyList{Keys: nonNil(numbers)})
}

// GetItem handles the GET /items/{number} request.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.Analyzer.Item(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		s.writeDomainError(w, "GetItem", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if s.spec.Info != nil {
		apiVersion = s.spec.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "sideeye-http",
		"version":     strings.TrimSpace(sideeye.Version),
		"api_version": apiVersion,
	})
}

// -- Helpers --

type trialResponse struct {
	Key   string        `json:"key"`
	Trial *domain.Trial `json:"trial"`
}

type keyList struct {
	Keys []string `json:"keys"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps domain sentinels to status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrTrialNotFound), errors.Is(err, domain.ErrItemNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error(op+" failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
