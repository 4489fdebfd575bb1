package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"member-gateway/internal/audit"
	"member-gateway/internal/identity"
	memberhandler "member-gateway/internal/member/handler"
	"member-gateway/internal/member/store"
	"member-gateway/internal/platform/config"
	"member-gateway/internal/platform/database"
	"member-gateway/internal/platform/health"
	"member-gateway/internal/platform/httpserver"
	"member-gateway/internal/platform/kafka"
	"member-gateway/internal/platform/kafka/producer"
	"member-gateway/internal/platform/logger"
	"member-gateway/internal/platform/metrics"
	"member-gateway/internal/platform/middleware"
	platformredis "member-gateway/internal/platform/redis"
	"member-gateway/internal/provisioning"
	httptransport "member-gateway/internal/transport/http"
	id "member-gateway/pkg/domain"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing member-gateway",
		"addr", cfg.Addr,
		"org_prefix", cfg.OrgPrefix,
		"propagation_delay", cfg.PropagationDelay.String(),
		"max_attempts", cfg.MaxAttempts,
	)

	healthHandler := health.New(envName())
	m := metrics.New()

	// Membership store: PostgreSQL when configured, otherwise in-memory for
	// local development.
	pool, err := database.New(database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}

	var memberStore store.Store
	var memStore *store.InMemoryStore
	if pool != nil {
		memberStore = store.NewPostgres(pool.DB())
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
		defer pool.Close()
	} else {
		log.Warn("DATABASE_URL not set, using in-memory member store")
		memStore = store.NewMemory()
		memberStore = memStore
	}

	// Identity subsystem: real HTTP client when configured, otherwise the
	// in-process fake. The fake emulates the propagation gap by marking
	// identities visible in the memory store only after the configured delay.
	var identityClient identity.Client
	if cfg.IdentityBaseURL != "" {
		identityClient = identity.NewHTTPClient(cfg.IdentityBaseURL, cfg.IdentityAPIKey, nil, log)
	} else {
		log.Warn("IDENTITY_BASE_URL not set, using in-process fake identity subsystem")
		fake := identity.NewFake()
		if memStore != nil {
			delay := cfg.PropagationDelay
			fake.OnCreate(func(identityID id.IdentityID) {
				time.AfterFunc(delay, func() {
					memStore.MarkIdentityVisible(identityID)
				})
			})
		}
		identityClient = fake
	}

	opts := []provisioning.Option{
		provisioning.WithLogger(log),
		provisioning.WithMetrics(m),
	}

	redisClient, err := platformredis.New(platformredis.Config{URL: cfg.RedisURL})
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		opts = append(opts, provisioning.WithRecentCache(
			provisioning.NewRedisRecentCache(redisClient, 0, log)))
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		})
		defer redisClient.Close()
	}

	if len(cfg.KafkaBrokers) > 0 {
		brokers := strings.Join(cfg.KafkaBrokers, ",")
		kafkaProducer, err := producer.New(producer.Config{
			Brokers:         brokers,
			Acks:            kafka.DefaultProducerConfig().Acks,
			Retries:         kafka.DefaultProducerConfig().Retries,
			DeliveryTimeout: kafka.DefaultProducerConfig().DeliveryTimeout,
		}, log)
		if err != nil {
			log.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		opts = append(opts, provisioning.WithAuditPublisher(audit.NewPublisher(kafkaProducer, log)))
		kafkaHealth := kafka.NewHealthChecker(brokers)
		healthHandler.RegisterCheck("kafka", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return kafkaHealth.Check(ctx)
		})
		defer kafkaProducer.Close()
	}

	svc := provisioning.NewService(
		memberStore,
		identity.NewSelfService(identityClient),
		identity.NewAdmin(identityClient),
		provisioning.Config{
			MaxAttempts:      cfg.MaxAttempts,
			Backoff:          cfg.BackoffSchedule,
			PropagationDelay: cfg.PropagationDelay,
			OrgPrefix:        cfg.OrgPrefix,
		},
		opts...,
	)

	router := httptransport.NewRouter(
		memberhandler.New(svc, log),
		healthHandler,
		middleware.RequireAdmin(cfg.JWTSigningKey, log),
		log,
	)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

func envName() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	return "development"
}
