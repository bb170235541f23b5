// Package health serves liveness, readiness and the Prometheus scrape
// endpoint for long-running engine processes.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/matchup-engine/internal/metrics"
)

const (
	defaultPort  = "8080"
	checkTimeout = 3 * time.Second
	stopTimeout  = 5 * time.Second
)

// Checker reports whether a dependency is reachable.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

// Ping implements Checker.
func (f CheckerFunc) Ping(ctx context.Context) error { return f(ctx) }

// RedisChecker pings a Redis client.
func RedisChecker(client redis.Cmdable) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// Status is the body of /health and /live.
type Status struct {
	Status  string    `json:"status"`
	Service string    `json:"service"`
	Version string    `json:"version,omitempty"`
	Commit  string    `json:"commit,omitempty"`
	Time    time.Time `json:"time"`
}

// Readiness is the body of /ready. Checks maps dependency name to "ok" or
// the ping error.
type Readiness struct {
	Status     string            `json:"status"`
	Service    string            `json:"service"`
	Checks     map[string]string `json:"checks"`
	DurationMs float64           `json:"duration_ms"`
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	// Port falls back to MATCHUP_ENGINE_HEALTH_PORT, then 8080.
	Port   string
	Logger *logrus.Logger
	// Checks are pinged on /ready, keyed by dependency name.
	Checks map[string]Checker
}

// Server answers probe requests. It reports not ready until SetReady(true).
type Server struct {
	cfg    Config
	log    *logrus.Entry
	ready  atomic.Bool
	mu     sync.Mutex
	server *http.Server
}

// NewServer creates a health server. Nil checkers are dropped.
func NewServer(cfg Config) *Server {
	if cfg.Port == "" {
		cfg.Port = os.Getenv("MATCHUP_ENGINE_HEALTH_PORT")
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	checks := make(map[string]Checker, len(cfg.Checks))
	for name, c := range cfg.Checks {
		if c != nil {
			checks[name] = c
		}
	}
	cfg.Checks = checks

	base := cfg.Logger
	if base == nil {
		base = logrus.New()
	}
	return &Server{
		cfg: cfg,
		log: base.WithFields(logrus.Fields{"component": "health", "service": cfg.ServiceName}),
	}
}

// SetReady toggles the readiness gate.
func (s *Server) SetReady(ready bool) { s.ready.Store(ready) }

// IsReady reports the readiness gate, ignoring dependency checks.
func (s *Server) IsReady() bool { return s.ready.Load() }

// Handler returns the endpoint mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleStatus)
	mux.HandleFunc("/live", s.handleStatus)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// Start listens in the background until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.server != nil {
		s.mu.Unlock()
		return errors.New("health server already started")
	}
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       time.Minute,
	}
	s.server = srv
	s.mu.Unlock()

	go func() {
		s.log.WithField("port", s.cfg.Port).Info("Health server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("Health server stopped unexpectedly")
		}
	}()
	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			s.log.WithError(err).Warn("Health server shutdown")
		}
	}()
	return nil
}

// Shutdown stops the listener, waiting briefly for in-flight probes.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Status{
		Status:  "ok",
		Service: s.cfg.ServiceName,
		Version: s.cfg.Version,
		Commit:  s.cfg.Commit,
		Time:    time.Now().UTC(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks, healthy := s.runChecks(r.Context())

	resp := Readiness{
		Status:     "ok",
		Service:    s.cfg.ServiceName,
		Checks:     checks,
		DurationMs: float64(time.Since(start).Microseconds()) / 1000,
	}
	code := http.StatusOK
	if !healthy || !s.IsReady() {
		resp.Status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// runChecks pings every dependency concurrently.
func (s *Server) runChecks(ctx context.Context) (map[string]string, bool) {
	var (
		mu      sync.Mutex
		results = make(map[string]string, len(s.cfg.Checks))
		healthy = true
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, c := range s.cfg.Checks {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, checkTimeout)
			defer cancel()
			err := c.Ping(pctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				results[name] = "error: " + err.Error()
				healthy = false
				return nil
			}
			results[name] = "ok"
			return nil
		})
	}
	_ = g.Wait()
	return results, healthy
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
