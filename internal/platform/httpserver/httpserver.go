// Package httpserver provides the configured http.Server for the gateway.
package httpserver

import (
	"net/http"
	"time"
)

// Timeouts are generous because a registration request may legitimately hold
// the connection through the propagation delay and the full retry schedule.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 90 * time.Second
	idleTimeout       = 120 * time.Second
)

// New returns an http.Server with the gateway's timeout settings applied.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
