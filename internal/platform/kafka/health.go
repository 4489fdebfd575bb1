package kafka

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

const dialTimeout = 5 * time.Second

// HealthChecker reports Kafka broker reachability for the health endpoint.
// It dials the brokers directly instead of going through the producer so a
// wedged producer cannot mask a healthy cluster, or the reverse.
type HealthChecker struct {
	brokers []string
}

// NewHealthChecker creates a checker for a comma-separated broker list.
func NewHealthChecker(brokers string) *HealthChecker {
	var list []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			list = append(list, b)
		}
	}
	return &HealthChecker{brokers: list}
}

// Check returns nil when at least one broker accepts a TCP connection.
func (h *HealthChecker) Check(ctx context.Context) error {
	if len(h.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	dialer := net.Dialer{Timeout: dialTimeout}
	var lastErr error
	for _, broker := range h.brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		conn.Close()
		return nil
	}
	return fmt.Errorf("no kafka brokers reachable: %w", lastErr)
}

// Name returns the check name for health reporting.
func (h *HealthChecker) Name() string {
	return "kafka"
}
