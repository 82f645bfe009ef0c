package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/sitechecker/internal/config"
	"github.com/hamed0406/sitechecker/internal/domain"
	apimw "github.com/hamed0406/sitechecker/internal/httpapi/middleware"
	"github.com/hamed0406/sitechecker/internal/repo"
	"github.com/hamed0406/sitechecker/internal/report"
	"github.com/hamed0406/sitechecker/internal/scheduler"
)

const maxBody = 1 << 20

// Per-request overrides are capped so one call cannot pin the server.
const (
	maxWorkers   = 256
	maxRetries   = 10
	maxTimeoutMS = 60_000
)

// PoolFactory builds the pool for one request.
type PoolFactory func(cfg config.PoolConfig) (*scheduler.Pool, error)

type Server struct {
	Logger   *zap.Logger
	Defaults config.PoolConfig
	Runs     repo.RunStore // optional archive
	NewPool  PoolFactory

	mu     sync.RWMutex
	latest *repo.Run
}

func NewServer(l *zap.Logger, defaults config.PoolConfig, runs repo.RunStore) *Server {
	return &Server{
		Logger:   l,
		Defaults: defaults,
		Runs:     runs,
		NewPool: func(cfg config.PoolConfig) (*scheduler.Pool, error) {
			return scheduler.NewPool(l, cfg, nil)
		},
	}
}

// Router serves the API. keys gate /api/checks; perMin and burst limit
// check runs per client IP (perMin <= 0 disables the limit).
func (s *Server) Router(keys []string, perMin, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireKey(keys))
		r.With(apimw.RateLimit(perMin, burst)).Post("/api/checks", s.handleRunChecks)
		r.Get("/api/checks/latest", s.handleLatest)
	})

	return r
}

type checkPayload struct {
	URLs      []string `json:"urls"`
	Workers   *int     `json:"workers"`
	TimeoutMS *int     `json:"timeout_ms"`
	Retries   *int     `json:"retries"`
}

var (
	errTooManyWorkers = fmt.Errorf("workers must be at most %d", maxWorkers)
	errTooManyRetries = fmt.Errorf("retries must be at most %d", maxRetries)
	errTimeoutTooLong = fmt.Errorf("timeout_ms must be at most %d", maxTimeoutMS)
)

// limits rejects overrides above the API caps. Lower bounds are left to
// PoolConfig.Validate.
func (p checkPayload) limits() error {
	var err error
	if p.Workers != nil && *p.Workers > maxWorkers {
		err = multierr.Append(err, errTooManyWorkers)
	}
	if p.TimeoutMS != nil && *p.TimeoutMS > maxTimeoutMS {
		err = multierr.Append(err, errTimeoutTooLong)
	}
	if p.Retries != nil && *p.Retries > maxRetries {
		err = multierr.Append(err, errTooManyRetries)
	}
	return err
}

func (p checkPayload) poolConfig(def config.PoolConfig) config.PoolConfig {
	cfg := def
	if p.Workers != nil {
		cfg.Workers = *p.Workers
	}
	if p.TimeoutMS != nil {
		cfg.Timeout = time.Duration(*p.TimeoutMS) * time.Millisecond
	}
	if p.Retries != nil {
		cfg.Retries = *p.Retries
	}
	return cfg
}

func (s *Server) handleRunChecks(w http.ResponseWriter, r *http.Request) {
	var p checkPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}

	targets := make([]domain.Target, 0, len(p.URLs))
	for _, u := range p.URLs {
		if u == "" {
			writeError(w, http.StatusBadRequest, "empty url")
			return
		}
		targets = append(targets, domain.Target(u))
	}

	if err := p.limits(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pool, err := s.NewPool(p.poolConfig(s.Defaults))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run := &repo.Run{StartedAt: time.Now().UTC()}
	run.Outcomes = pool.Run(r.Context(), targets)
	run.FinishedAt = time.Now().UTC()

	s.mu.Lock()
	s.latest = run
	s.mu.Unlock()
	s.archive(run)

	s.Logger.Info("api_run_finished",
		zap.Int("targets", len(targets)),
		zap.Duration("took", run.FinishedAt.Sub(run.StartedAt)),
	)
	writeJSON(w, http.StatusOK, report.Build(run.Outcomes))
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	run := s.latest
	s.mu.RUnlock()

	if run == nil && s.Runs != nil {
		var err error
		run, err = s.Runs.LatestRun(r.Context())
		if err != nil {
			s.Logger.Warn("latest_run_error", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "latest run unavailable")
			return
		}
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "no runs yet")
		return
	}
	writeJSON(w, http.StatusOK, report.Build(run.Outcomes))
}

// archive is best effort; a failure is logged and the request still succeeds.
func (s *Server) archive(run *repo.Run) {
	if s.Runs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Runs.SaveRun(ctx, run); err != nil && !errors.Is(err, context.Canceled) {
		s.Logger.Warn("archive_run_failed", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
