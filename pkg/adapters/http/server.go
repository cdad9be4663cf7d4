package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/tapevm"
	"github.com/aretw0/tapevm/pkg/domain"
	"github.com/aretw0/tapevm/pkg/ports"
	"github.com/aretw0/tapevm/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
)

// MaxBodySize bounds request bodies (program text plus token).
const MaxBodySize = 1 << 20

// ExecuteRequest is the JSON envelope of POST /v1/execute.
type ExecuteRequest struct {
	ProgramCode     string  `json:"program_code"`
	SerializedState string  `json:"serialized_state,omitempty"`
	Stdin           *string `json:"stdin,omitempty"`
}

// ExecuteResponse is the JSON body of a successful POST /v1/execute.
type ExecuteResponse struct {
	ProgramCode     string         `json:"program_code"`
	Stdout          string         `json:"stdout"`
	SerializedState string         `json:"serialized_state"`
	ExpectingInput  bool           `json:"expecting_input"`
	Outcome         domain.Outcome `json:"outcome"`
	Steps           uint64         `json:"steps"`
	Cached          bool           `json:"cached,omitempty"`
}

type ValidateRequest struct {
	ProgramCode string `json:"program_code"`
}

type ValidateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ErrorResponse carries the stable error kind next to the message.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Server serves the tapevm API.
type Server struct {
	Engine  ports.Executor
	Metrics http.Handler
	Logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Executor, opts ...Option) http.Handler {
	server := &Server{Engine: engine, Logger: slog.Default()}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/v1/execute", server.Execute)
	r.Post("/v1/validate", server.Validate)
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	if server.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.Metrics)
	}

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

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>tapevm API</title>
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

// Execute handles the POST /v1/execute request.
func (s *Server) Execute(w http.ResponseWriter, r *http.Request) {
	var maxSteps *int64
	if err := runtime.BindQueryParameter("form", true, false, "max_steps", r.URL.Query(), &maxSteps); err != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid max_steps: %v", err))
		return
	}
	if maxSteps != nil && *maxSteps < 1 {
		s.fail(w, http.StatusBadRequest, "bad_request", "max_steps must be positive")
		return
	}

	var body ExecuteRequest
	if !s.decode(w, r, "ExecuteRequest", &body) {
		return
	}

	if body.Stdin != nil {
		if err := runner.CheckInput(*body.Stdin); err != nil {
			s.fail(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("invalid stdin: %v", err))
			return
		}
	}

	req := ports.Request{
		Program:    body.ProgramCode,
		PriorState: body.SerializedState,
		Input:      body.Stdin,
	}
	if maxSteps != nil {
		req.MaxSteps = uint64(*maxSteps)
	}

	resp, err := s.Engine.Execute(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			s.Logger.Error("Execute failed", "error", err)
		} else {
			s.Logger.Debug("Execute rejected", "error", err, "status", status)
		}
		s.fail(w, status, domain.Kind(err), err.Error())
		return
	}

	s.respond(w, http.StatusOK, ExecuteResponse{
		ProgramCode:     resp.Program,
		Stdout:          resp.Output,
		SerializedState: resp.NextState,
		ExpectingInput:  resp.AwaitingInput,
		Outcome:         resp.Outcome,
		Steps:           resp.Steps,
		Cached:          resp.Cached,
	})
}

// Validate handles the POST /v1/validate request.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	var body ValidateRequest
	if !s.decode(w, r, "ValidateRequest", &body) {
		return
	}

	resp := ValidateResponse{Valid: true}
	if err := s.Engine.Validate(body.ProgramCode); err != nil {
		resp = ValidateResponse{Valid: false, Error: err.Error()}
	}
	s.respond(w, http.StatusOK, resp)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	s.respond(w, http.StatusOK, map[string]string{
		"app":         "tapevm-http",
		"version":     tapevm.Version,
		"api_version": apiVersion,
	})
}

// decode reads the body, checks it against the named schema and unmarshals it into dst.
// It writes the error response itself and reports whether the caller may continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, schema string, dst any) bool {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	if err := validateBody(schema, data); err != nil {
		s.Logger.Warn("Invalid request body", "schema", schema, "error", err)
		s.fail(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.fail(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, kind, msg string) {
	s.respond(w, status, ErrorResponse{Error: msg, Kind: kind})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidProgram),
		errors.Is(err, domain.ErrUnmatchedBracket),
		errors.Is(err, domain.ErrPointerOutOfRange),
		errors.Is(err, domain.ErrStepLimit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
