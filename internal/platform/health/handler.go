// Package health exposes liveness, readiness and status probes. Readiness
// reflects the optional dependencies (Postgres, Redis, Kafka) actually wired
// at startup; a gateway running on the in-memory store registers no checks
// and is always ready.
package health

import (
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"member-gateway/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// CheckFunc probes one dependency, returning nil when it is usable.
type CheckFunc func() error

// Handler serves the probe endpoints.
type Handler struct {
	startTime   time.Time
	environment string

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

func New(environment string) *Handler {
	return &Handler{
		startTime:   time.Now(),
		environment: environment,
		checks:      make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named dependency check to the readiness probe.
func (h *Handler) RegisterCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// Register mounts the probe routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

// HandleLiveness answers 200 whenever the process is serving requests.
func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HandleReadiness runs every registered check and answers 503 if any
// dependency is down, with the per-dependency verdicts in the body.
// Checks run concurrently; each dials a real dependency with its own
// timeout, and the probe should not pay for them serially.
func (h *Handler) HandleReadiness(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	checks := make(map[string]CheckFunc, len(h.checks))
	maps.Copy(checks, h.checks)
	h.mu.RUnlock()

	resp := readinessResponse{
		Status: "ready",
		Checks: make(map[string]string, len(checks)),
	}
	status := http.StatusOK

	var g errgroup.Group
	var mu sync.Mutex
	for name, check := range checks {
		g.Go(func() error {
			err := check()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				resp.Checks[name] = "down: " + err.Error()
				resp.Status = "not_ready"
				status = http.StatusServiceUnavailable
				return nil
			}
			resp.Checks[name] = "up"
			return nil
		})
	}
	_ = g.Wait()

	httputil.WriteJSON(w, status, resp)
}

type statusResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Timestamp     string `json:"timestamp"`
}

// HandleStatus reports version, environment and uptime.
func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, statusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}
