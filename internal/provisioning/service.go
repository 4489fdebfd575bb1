// Package provisioning implements the member provisioning workflow: the path
// from a validated registration request to a durable authentication identity
// plus a consistent membership record, across two independently-consistent
// backing stores.
package provisioning

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"member-gateway/internal/audit"
	"member-gateway/internal/identity"
	"member-gateway/internal/member/models"
	"member-gateway/internal/member/store"
	"member-gateway/internal/platform/metrics"
	id "member-gateway/pkg/domain"
	dErrors "member-gateway/pkg/domain-errors"
	"member-gateway/pkg/sentinel"
	"member-gateway/pkg/validation"
)

// Variant names the two provisioning entry points. Both run the same
// orchestration, parameterized only by the identity provisioner strategy.
type Variant string

const (
	VariantSelfService Variant = "self_service"
	VariantAdmin       Variant = "admin"
)

// Config tunes the workflow. The propagation delay is deliberately
// configurable: it is an empirical constant, and deployments should tune it
// from the propagation latency histogram rather than trust the default.
type Config struct {
	MaxAttempts      int
	Backoff          []time.Duration
	PropagationDelay time.Duration
	OrgPrefix        string
}

const defaultMaxAttempts = 4

// Service coordinates the full workflow: duplicate guard, identity
// provisioner, propagation waiter, membership registrar under retry, and
// result reporting.
type Service struct {
	store       store.Store
	selfService identity.Provisioner
	admin       identity.Provisioner
	guard       *Guard
	waiter      *Waiter
	orch        *Orchestrator
	reporter    *Reporter

	orgPrefix string
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option configures the Service.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Publisher
	cache   RecentCache
	sleeper Sleeper
	now     func() time.Time
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(o *options) { o.audit = p }
}

// WithRecentCache installs the advisory recently-registered cache consulted by
// the duplicate guard.
func WithRecentCache(c RecentCache) Option {
	return func(o *options) { o.cache = c }
}

// WithSleeper replaces wall-clock delays; tests use it to observe backoff
// without real time passing.
func WithSleeper(s Sleeper) Option {
	return func(o *options) { o.sleeper = s }
}

// WithClock replaces time.Now for deterministic member numbers in tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewService wires the workflow. The two provisioner strategies are injected
// so the admin and self-service flows share every other component.
func NewService(memberStore store.Store, selfService, admin identity.Provisioner, cfg Config, opts ...Option) *Service {
	o := &options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if len(cfg.Backoff) == 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.PropagationDelay < 0 {
		cfg.PropagationDelay = DefaultPropagationDelay
	}

	return &Service{
		store:       memberStore,
		selfService: selfService,
		admin:       admin,
		guard:       NewGuard(memberStore, o.cache, o.logger),
		waiter:      NewWaiter(cfg.PropagationDelay, o.sleeper, o.logger),
		orch:        NewOrchestrator(cfg.MaxAttempts, cfg.Backoff, o.sleeper, o.logger),
		reporter:    NewReporter(o.metrics, o.audit, o.cache, o.logger),
		orgPrefix:   cfg.OrgPrefix,
		logger:      o.logger,
		metrics:     o.metrics,
		now:         o.now,
	}
}

// SubmitSelfService runs the workflow for a person registering themselves.
func (s *Service) SubmitSelfService(ctx context.Context, req *models.RegistrationRequest, onProgress ProgressFunc) (*Outcome, error) {
	return s.submit(ctx, req, s.selfService, VariantSelfService, onProgress)
}

// SubmitAdmin runs the workflow for an administrator registering someone else.
// The outcome carries the generated temporary credential for secure hand-off.
func (s *Service) SubmitAdmin(ctx context.Context, req *models.RegistrationRequest, onProgress ProgressFunc) (*Outcome, error) {
	return s.submit(ctx, req, s.admin, VariantAdmin, onProgress)
}

// submit is the single orchestration both variants share.
//
// Ordering guarantees: the registrar is never called before the provisioner
// succeeds; the guard precedes both as a best-effort short-circuit but does
// not gate correctness. Every suspend point takes ctx, so navigating away can
// abort in-flight work deterministically.
func (s *Service) submit(ctx context.Context, req *models.RegistrationRequest, prov identity.Provisioner, variant Variant, onProgress ProgressFunc) (*Outcome, error) {
	started := s.now()

	req.Normalize()
	if err := validation.Validate(req); err != nil {
		return nil, s.reporter.Failure(ctx, variant, req, err)
	}

	orgID, err := id.ParseOrgID(req.OrgID)
	if err != nil {
		return nil, s.reporter.Failure(ctx, variant, req, err)
	}
	var regionID *id.RegionID
	if req.RegionID != "" {
		parsed, err := id.ParseRegionID(req.RegionID)
		if err != nil {
			return nil, s.reporter.Failure(ctx, variant, req, err)
		}
		regionID = &parsed
	}

	// Stage 1: duplicate guard, before any identity is created.
	if err := s.guard.Check(ctx, orgID, req.Email, req.NationalID); err != nil {
		return nil, s.reporter.Failure(ctx, variant, req, err)
	}

	// Stage 2: identity provisioning, retried on transport failures. A
	// duplicate rejection here is terminal: the identity subsystem is the
	// authority on one-identity-per-email.
	var provisioned *identity.Provisioned
	_, err = s.orch.Run(ctx, "identity_provision", nil, func(ctx context.Context, _ Attempt) error {
		var provErr error
		provisioned, provErr = prov.Provision(ctx, req)
		return provErr
	})
	if err != nil {
		return nil, s.reporter.Failure(ctx, variant, req, err)
	}
	identityCreatedAt := s.now()
	if s.metrics != nil {
		s.metrics.IdentitiesCreated.Inc()
	}
	s.logger.InfoContext(ctx, "identity provisioned",
		"variant", string(variant),
		"identity_id", provisioned.IdentityID.String(),
	)

	// Stage 3: settle across the propagation gap. Best effort; the retry
	// loop below restores correctness when the delay was not enough.
	if err := s.waiter.Wait(ctx); err != nil {
		return nil, s.reporter.Failure(ctx, variant, req, err)
	}

	// Stage 4: membership registration under bounded retry. The member
	// number is generated once and reused across attempts, which is what the
	// registrar's idempotency contract keys on; it is regenerated only when
	// the store reports a number collision.
	memberNumber, err := s.newMemberNumber(variant, req)
	if err != nil {
		return nil, s.reporter.Failure(ctx, variant, req, dErrors.Wrap(err, dErrors.CodeInternal, "generate member number"))
	}

	status := models.MemberStatus(req.Status)
	if status == "" {
		status = models.StatusPendingVerification
	}

	var result *store.RegisterResult
	finalAttempt, err := s.orch.Run(ctx, "register_member", onProgress, func(ctx context.Context, _ Attempt) error {
		res, regErr := s.store.RegisterMember(ctx, s.registerParams(req, orgID, regionID, provisioned.IdentityID, memberNumber, status))
		if regErr != nil {
			if errors.Is(regErr, sentinel.ErrConflict) {
				// Advisory sequence collided with an existing record.
				// Draw a fresh number for the next attempt.
				if fresh, genErr := s.newMemberNumber(variant, req); genErr == nil {
					memberNumber = fresh
				}
			}
			return regErr
		}
		result = res
		return nil
	})
	if s.metrics != nil && finalAttempt.Number > 1 {
		s.metrics.RetryAttempts.Add(float64(finalAttempt.Number - 1))
	}
	if err != nil {
		return nil, s.reporter.Failure(ctx, variant, req, err)
	}

	if s.metrics != nil {
		s.metrics.PropagationLatency.Observe(s.now().Sub(identityCreatedAt).Seconds())
		s.metrics.ProvisioningLatency.WithLabelValues(string(variant)).Observe(s.now().Sub(started).Seconds())
	}

	return s.reporter.Success(ctx, variant, req, result, provisioned, finalAttempt.Number), nil
}

func (s *Service) newMemberNumber(variant Variant, req *models.RegistrationRequest) (string, error) {
	if variant == VariantAdmin {
		return models.NewAdminMemberNumber(s.orgPrefix, req.RegionCode, s.now())
	}
	return models.NewMemberNumber(req.RegionCode, s.now())
}

func (s *Service) registerParams(req *models.RegistrationRequest, orgID id.OrgID, regionID *id.RegionID, identityID id.IdentityID, memberNumber string, status models.MemberStatus) store.RegisterParams {
	var dob *time.Time
	if req.DateOfBirth != "" {
		if parsed, err := time.Parse("2006-01-02", req.DateOfBirth); err == nil {
			dob = &parsed
		}
	}
	return store.RegisterParams{
		IdentityID:   identityID,
		OrgID:        orgID,
		RegionID:     regionID,
		MemberNumber: memberNumber,
		MemberType:   models.MemberType(req.MemberType),
		Tier:         models.Tier(req.Tier),
		Status:       status,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		NationalID:   req.NationalID,
		DateOfBirth:  dob,
		Address:      req.Address,
	}
}
