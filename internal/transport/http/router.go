// Package httptransport assembles the gateway's HTTP surface.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	memberhandler "member-gateway/internal/member/handler"
	"member-gateway/internal/platform/health"
	"member-gateway/internal/platform/middleware"
)

// requestTimeout bounds one registration end to end. It must cover the
// propagation delay plus the full backoff schedule, or the timeout handler
// would cut off submissions the retry loop was about to rescue.
const requestTimeout = 60 * time.Second

// NewRouter wires all endpoints with the shared middleware stack.
func NewRouter(members *memberhandler.Handler, healthHandler *health.Handler, requireAdmin func(http.Handler) http.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)

	members.Register(r, requireAdmin)
	healthHandler.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
