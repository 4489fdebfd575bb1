package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures everything main needs to wire the gateway.
type Server struct {
	Addr          string
	JWTSigningKey string

	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string

	// Identity subsystem endpoint. Empty means the in-process fake is used,
	// which is the local development mode.
	IdentityBaseURL string
	IdentityAPIKey  string

	// Workflow tuning. The propagation delay is an empirical constant;
	// deployments adjust it from the propagation latency histogram.
	PropagationDelay time.Duration
	MaxAttempts      int

	// BackoffSchedule overrides the per-attempt retry delays. Empty means
	// the orchestrator's built-in schedule.
	BackoffSchedule []time.Duration

	// OrgPrefix is the organization code carried in administrator-created
	// member numbers.
	OrgPrefix string
}

const (
	defaultAddr             = ":8080"
	defaultPropagationDelay = 2 * time.Second
	defaultMaxAttempts      = 4
	defaultOrgPrefix        = "SOA"
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:             envOr("MEMBER_GATEWAY_ADDR", defaultAddr),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		IdentityBaseURL:  os.Getenv("IDENTITY_BASE_URL"),
		IdentityAPIKey:   os.Getenv("IDENTITY_API_KEY"),
		OrgPrefix:        envOr("ORG_PREFIX", defaultOrgPrefix),
		PropagationDelay: defaultPropagationDelay,
		MaxAttempts:      defaultMaxAttempts,
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if v := os.Getenv("PROPAGATION_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.PropagationDelay = d
		}
	}
	if v := os.Getenv("MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			cfg.MaxAttempts = n
		}
	}
	if v := os.Getenv("BACKOFF_SCHEDULE"); v != "" {
		// Comma-separated durations, e.g. "1s,2s,3s,5s". A malformed entry
		// invalidates the whole schedule rather than silently truncating it.
		var schedule []time.Duration
		valid := true
		for _, part := range strings.Split(v, ",") {
			d, err := time.ParseDuration(strings.TrimSpace(part))
			if err != nil || d < 0 {
				valid = false
				break
			}
			schedule = append(schedule, d)
		}
		if valid && len(schedule) > 0 {
			cfg.BackoffSchedule = schedule
		}
	}

	cfg.JWTSigningKey = os.Getenv("JWT_SIGNING_KEY")
	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
