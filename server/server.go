// Package server exposes batch simulation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/handlers"
	"github.com/sirupsen/logrus"

	"github.com/signalnine/warsim/game"
	"github.com/signalnine/warsim/report"
	"github.com/signalnine/warsim/simulation"
	"github.com/signalnine/warsim/store"
)

// DefaultMaxGames bounds the games in one request
const DefaultMaxGames = 1000000

// ErrPersistenceDisabled is returned when a request needs a store and none is configured
var ErrPersistenceDisabled = errors.New("persistence not configured")

// RunStore is the subset of *store.DB the server needs
type RunStore interface {
	SaveRun(ctx context.Context, s report.Summary, records []simulation.GameRecord) (string, error)
	LoadRun(ctx context.Context, id string) (*report.Summary, error)
	LoadGames(ctx context.Context, id string) ([]simulation.GameRecord, error)
	ListRuns(ctx context.Context, limit int) ([]report.Summary, error)
}

// Options configures a Server
type Options struct {
	Store         RunStore // nil disables persistence
	Logger        logrus.FieldLogger
	MaxGames      int // <= 0 uses DefaultMaxGames
	Workers       int // default pool size for requests that do not name one
	MaxWorkers    int // largest pool a request may ask for; <= 0 uses runtime.NumCPU()
	MaxIterations int // largest per-game cap a request may ask for; <= 0 uses game.DefaultMaxIterations
}

// Server serves the simulation API
type Server struct {
	store    RunStore
	log      logrus.FieldLogger
	maxGames int
	workers  int
	maxWork  int
	maxIter  int
	router   chi.Router
	handler  http.Handler
}

// New creates a server and registers its routes
func New(opts Options) *Server {
	s := &Server{
		store:    opts.Store,
		log:      opts.Logger,
		maxGames: opts.MaxGames,
		workers:  opts.Workers,
		maxWork:  opts.MaxWorkers,
		maxIter:  opts.MaxIterations,
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	if s.maxGames <= 0 {
		s.maxGames = DefaultMaxGames
	}
	if s.maxWork <= 0 {
		s.maxWork = runtime.NumCPU()
	}
	if s.maxIter <= 0 {
		s.maxIter = game.DefaultMaxIterations
	}
	s.router = s.NewRouter()
	s.handler = s.wrap(s.router)
	return s
}

// NewRouter builds the route table
func (s *Server) NewRouter() chi.Router {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/simulations", s.handleSimulate)
		r.Get("/simulations/stream", s.handleStream)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/games.csv", s.handleGetRunCSV)
	})
	return r
}

// Handler returns the router wrapped with recovery, CORS and request logging
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) wrap(h http.Handler) http.Handler {
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(s.log), handlers.PrintRecoveryStack(true))(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	return handlers.CombinedLoggingHandler(logWriter{s.log}, h)
}

// ServeHTTP serves http
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe runs the API on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}

// SimulationRequest is the body of POST /api/simulations
type SimulationRequest struct {
	Games         int    `json:"games"`
	Policy        string `json:"policy"`
	Seed          int64  `json:"seed"` // 0 picks a time-based seed
	Workers       int    `json:"workers"`
	MaxIterations int    `json:"max_iterations"` // 0 uses the server's cap
	Persist       bool   `json:"persist"`
}

// batchConfig validates the request and turns it into a batch config
func (s *Server) batchConfig(req SimulationRequest) (simulation.Config, error) {
	if req.Games <= 0 || req.Games > s.maxGames {
		return simulation.Config{}, fmt.Errorf("%w: games must be between 1 and %d, got %d",
			simulation.ErrInvalidGames, s.maxGames, req.Games)
	}
	if req.Policy == "" {
		req.Policy = game.Shuffled{}.String()
	}
	policy, err := game.ParsePolicy(req.Policy)
	if err != nil {
		return simulation.Config{}, err
	}
	if req.MaxIterations < 0 || req.MaxIterations > s.maxIter {
		return simulation.Config{}, fmt.Errorf("max_iterations must be between 0 and %d, got %d",
			s.maxIter, req.MaxIterations)
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = s.maxIter
	}
	if req.Workers > s.maxWork {
		return simulation.Config{}, fmt.Errorf("workers must be at most %d, got %d", s.maxWork, req.Workers)
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}
	workers := req.Workers
	if workers <= 0 {
		workers = s.workers
	}
	if workers <= 0 || workers > s.maxWork {
		workers = s.maxWork
	}
	return simulation.Config{
		Games:         req.Games,
		Policy:        policy,
		Seed:          req.Seed,
		Workers:       workers,
		MaxIterations: req.MaxIterations,
		Logger:        s.log,
	}, nil
}

func summarize(cfg simulation.Config, records []simulation.GameRecord, elapsed time.Duration) report.Summary {
	return report.Summary{
		Policy:        cfg.Policy.String(),
		Seed:          cfg.Seed,
		Games:         cfg.Games,
		MaxIterations: cfg.EffectiveMaxIterations(),
		Elapsed:       elapsed,
		Stats:         simulation.Aggregate(records),
		Timestamp:     time.Now(),
		Version:       report.SummaryVersion,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "persistence": s.store != nil})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Persist && s.store == nil {
		writeError(w, http.StatusBadRequest, ErrPersistenceDisabled)
		return
	}
	cfg, err := s.batchConfig(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	records, err := simulation.RunBatchParallel(r.Context(), cfg)
	if err != nil {
		s.log.WithError(err).Warn("simulation aborted")
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	summary := summarize(cfg, records, time.Since(start))

	if req.Persist {
		id, err := s.store.SaveRun(r.Context(), summary, records)
		if err != nil {
			s.log.WithError(err).Error("failed to save run")
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		summary.RunID = id
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, ErrPersistenceDisabled)
		return
	}
	runs, err := s.store.ListRuns(r.Context(), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []report.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, ErrPersistenceDisabled)
		return
	}
	run, err := s.store.LoadRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetRunCSV(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, ErrPersistenceDisabled)
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.store.LoadRun(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	records, err := s.store.LoadGames(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "war_results_"+id+".csv"))
	if err := report.WriteCSV(w, records); err != nil {
		s.log.WithError(err).Warn("failed to stream csv")
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// logWriter feeds gorilla/handlers access log lines into logrus
type logWriter struct{ log logrus.FieldLogger }

func (lw logWriter) Write(p []byte) (int, error) {
	lw.log.Info(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
