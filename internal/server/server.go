package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"

	"github.com/v0xg/streamchapters/internal/browser"
	"github.com/v0xg/streamchapters/internal/chapter"
	"github.com/v0xg/streamchapters/internal/controller"
	"github.com/v0xg/streamchapters/internal/events"
	"github.com/v0xg/streamchapters/internal/logging"
	"github.com/v0xg/streamchapters/internal/store"
)

// DefaultKeepAlive is the interval between SSE keepalive comments
const DefaultKeepAlive = 30 * time.Second

// Runner is the part of the controller the HTTP surface drives
type Runner interface {
	Start(ctx context.Context, jobs []chapter.Job, settings chapter.Settings, target controller.Invoker) error
	Stop()
	State() controller.RunState
}

// TargetResolver finds the page a run should execute in
type TargetResolver interface {
	Resolve(ctx context.Context, match string) (controller.Invoker, error)
	Pages(ctx context.Context) ([]browser.PageInfo, error)
}

// Deps wires the server to the rest of the application
type Deps struct {
	Runner  Runner
	Runs    *store.RunStore
	Bus     *events.Bus
	Targets TargetResolver
	Logger  *logging.Logger

	// RunContext outlives individual requests and bounds started runs
	RunContext  context.Context
	HTTPLogPath string
	KeepAlive   time.Duration
}

// Server is the command and observer surface over HTTP
type Server struct {
	deps   Deps
	logger *logging.Logger
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	if deps.RunContext == nil {
		deps.RunContext = context.Background()
	}
	if deps.KeepAlive <= 0 {
		deps.KeepAlive = DefaultKeepAlive
	}
	return &Server{deps: deps, logger: deps.Logger.WithComponent("http")}
}

// Routes builds the router
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	s.setupHTTPLogging(r)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.state)
		r.Get("/presets", s.presets)
		r.Get("/pages", s.pages)
		r.Delete("/input", s.clearInput)
		r.Post("/runs", s.startRun)
		r.Post("/runs/stop", s.stopRun)
		r.Get("/events", s.streamEvents)
	})
	return r
}

func (s *Server) setupHTTPLogging(r *chi.Mux) {
	if s.deps.HTTPLogPath == "" {
		return
	}

	logFile, err := os.OpenFile(s.deps.HTTPLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		s.logger.Error("Failed to open HTTP log file", "error", err, "path", s.deps.HTTPLogPath)
		return
	}
	// logFile stays open for the server lifetime

	httpLogger := httplog.NewLogger("streamchapters", httplog.Options{
		Writer: logFile,
		JSON:   true,
	})
	r.Use(httplog.RequestLogger(httpLogger))

	s.logger.Info("HTTP request logging enabled", "path", s.deps.HTTPLogPath)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"subscribers": s.deps.Bus.Subscribers(),
	})
}

type stateResponse struct {
	Persisted store.Snapshot      `json:"persisted"`
	Live      controller.RunState `json:"live"`
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Runs.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("Failed to read persisted state", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{Persisted: snap, Live: s.deps.Runner.State()})
}

func (s *Server) presets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default": chapter.DefaultPreset,
		"presets": chapter.Presets(),
	})
}

func (s *Server) pages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.deps.Targets.Pages(r.Context())
	if err != nil {
		s.logger.Error("Failed to list pages", "error", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

// clearInput forgets the remembered job list; settings are kept
func (s *Server) clearInput(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Runs.ClearJobData(r.Context()); err != nil {
		s.logger.Error("Failed to clear job data", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("Job data cleared")
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	if k := chapter.KindOf(err); k != chapter.KindUnknown {
		resp.Kind = k.String()
	}
	writeJSON(w, status, resp)
}

// statusFor maps a domain error to an HTTP status
func statusFor(err error) int {
	switch chapter.KindOf(err) {
	case chapter.KindInvalidInput, chapter.KindInvalidTime, chapter.KindNoJobs:
		return http.StatusBadRequest
	case chapter.KindNoTarget:
		return http.StatusNotFound
	case chapter.KindAlreadyRunning:
		return http.StatusConflict
	case chapter.KindBoundaryUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
