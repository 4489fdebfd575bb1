package provisioning

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"member-gateway/internal/audit"
	"member-gateway/internal/identity"
	"member-gateway/internal/member/models"
	"member-gateway/internal/member/store"
	"member-gateway/internal/platform/kafka/producer"
	id "member-gateway/pkg/domain"
	dErrors "member-gateway/pkg/domain-errors"
	"member-gateway/pkg/sentinel"
)

// capturingProducer records audit messages per topic.
type capturingProducer struct {
	mu       sync.Mutex
	messages map[string][]audit.Event
}

func newCapturingProducer() *capturingProducer {
	return &capturingProducer{messages: make(map[string][]audit.Event)}
}

func (p *capturingProducer) ProduceAsync(msg *producer.Message) error {
	var event audit.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages[msg.Topic] = append(p.messages[msg.Topic], event)
	return nil
}

func (p *capturingProducer) byTopic(topic string) []audit.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]audit.Event(nil), p.messages[topic]...)
}

// conflictingStore fails the first registration with a member number
// collision, then delegates.
type conflictingStore struct {
	store.Store
	mu      sync.Mutex
	numbers []string
	failed  bool
}

func (c *conflictingStore) RegisterMember(ctx context.Context, params store.RegisterParams) (*store.RegisterResult, error) {
	c.mu.Lock()
	c.numbers = append(c.numbers, params.MemberNumber)
	first := !c.failed
	c.failed = true
	c.mu.Unlock()
	if first {
		return nil, dErrors.Wrap(
			fmt.Errorf("member number already assigned: %w", sentinel.ErrConflict),
			dErrors.CodeRPC, "member number collision")
	}
	return c.Store.RegisterMember(ctx, params)
}

// ServiceSuite tests the provisioning workflow end to end against the
// in-memory store and the fake identity subsystem.
//
// Justification: the workflow's value is the coordination, not any single
// stage, so the suite drives full submissions and asserts on the externally
// observable outcome: identities created, records written, attempt counts,
// backoff consumed, and what the caller is told.
type ServiceSuite struct {
	suite.Suite
	store    *store.InMemoryStore
	fake     *identity.FakeClient
	sleeper  *recordingSleeper
	producer *capturingProducer
	svc      *Service
	ctx      context.Context
	orgID    id.OrgID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = store.NewMemory()
	s.fake = identity.NewFake()
	s.sleeper = &recordingSleeper{}
	s.producer = newCapturingProducer()
	s.ctx = context.Background()
	s.orgID = id.OrgID(uuid.New())

	s.svc = NewService(
		s.store,
		identity.NewSelfService(s.fake),
		identity.NewAdmin(s.fake),
		Config{MaxAttempts: 4, PropagationDelay: 0, OrgPrefix: "SOA"},
		WithLogger(logger),
		WithSleeper(s.sleeper),
		WithAuditPublisher(audit.NewPublisher(s.producer, logger)),
	)
}

// identityVisibleImmediately emulates a store that has already caught up by
// the time the registrar is called.
func (s *ServiceSuite) identityVisibleImmediately() {
	s.fake.OnCreate(func(identityID id.IdentityID) {
		s.store.MarkIdentityVisible(identityID)
	})
}

func (s *ServiceSuite) selfServiceRequest() *models.RegistrationRequest {
	return &models.RegistrationRequest{
		OrgID:           s.orgID.String(),
		RegionCode:      "GP",
		FirstName:       "Thandi",
		LastName:        "Mokoena",
		Email:           "thandi@example.org",
		MemberType:      "regular",
		Tier:            "standard",
		Password:        "Str0ngPass",
		PasswordConfirm: "Str0ngPass",
	}
}

func (s *ServiceSuite) adminRequest() *models.RegistrationRequest {
	req := s.selfServiceRequest()
	req.Email = "sipho@example.org"
	req.FirstName = "Sipho"
	req.LastName = "Dlamini"
	req.Password = ""
	req.PasswordConfirm = ""
	return req
}

func (s *ServiceSuite) TestSelfServiceHappyPath() {
	s.identityVisibleImmediately()

	outcome, err := s.svc.SubmitSelfService(s.ctx, s.selfServiceRequest(), nil)
	s.Require().NoError(err)

	s.Equal(models.ActionCreated, outcome.Action)
	s.Equal(1, outcome.Attempts)
	s.True(models.ValidMemberNumber(outcome.MemberNumber))
	s.False(strings.HasPrefix(outcome.MemberNumber, "SOA-"))
	s.Empty(outcome.TempPassword)
	s.Contains(outcome.Message, outcome.MemberNumber)
	s.Equal(1, s.fake.Calls())
	s.Empty(s.sleeper.recorded())

	record, err := s.store.FindByOrgAndEmail(s.ctx, s.orgID, "thandi@example.org")
	s.Require().NoError(err)
	s.Equal(outcome.MemberNumber, record.MemberNumber)
	s.Equal(models.StatusPendingVerification, record.Status)
}

func (s *ServiceSuite) TestAdminVariantIssuesTempCredentialAndPrefix() {
	s.identityVisibleImmediately()

	outcome, err := s.svc.SubmitAdmin(s.ctx, s.adminRequest(), nil)
	s.Require().NoError(err)

	s.Equal(models.ActionCreated, outcome.Action)
	s.NotEmpty(outcome.TempPassword)
	s.True(strings.HasPrefix(outcome.MemberNumber, "SOA-GP-"))
	s.True(models.ValidMemberNumber(outcome.MemberNumber))
}

func (s *ServiceSuite) TestDuplicateEmailRejectedBeforeIdentityCreation() {
	s.identityVisibleImmediately()
	_, err := s.svc.SubmitSelfService(s.ctx, s.selfServiceRequest(), nil)
	s.Require().NoError(err)
	existing, err := s.store.FindByOrgAndEmail(s.ctx, s.orgID, "thandi@example.org")
	s.Require().NoError(err)

	callsBefore := s.fake.Calls()
	req := s.selfServiceRequest()
	req.FirstName = "Other"
	_, err = s.svc.SubmitSelfService(s.ctx, req, nil)

	s.Require().Error(err)
	s.Equal(dErrors.CodeDuplicateEmail, dErrors.CodeOf(err))
	s.Contains(err.Error(), existing.MemberNumber)
	s.Equal(callsBefore, s.fake.Calls(), "no identity may be created for a rejected duplicate")
}

func (s *ServiceSuite) TestRetriesUntilIdentityPropagates() {
	var created id.IdentityID
	s.fake.OnCreate(func(identityID id.IdentityID) { created = identityID })
	s.sleeper.hook = func(n int) {
		if n == 2 {
			s.store.MarkIdentityVisible(created)
		}
	}

	var progress []int
	outcome, err := s.svc.SubmitSelfService(s.ctx, s.selfServiceRequest(), func(attempt, max int) {
		progress = append(progress, attempt)
	})

	s.Require().NoError(err)
	s.Equal(3, outcome.Attempts)
	s.Equal([]time.Duration{time.Second, 2 * time.Second}, s.sleeper.recorded())
	s.Equal([]int{1, 2, 3}, progress)
	s.Equal(1, s.fake.Calls(), "retries must reuse the identity, never create another")
}

func (s *ServiceSuite) TestPersistentPropagationFailureExhaustsRetries() {
	s.fake.OnCreate(nil)

	_, err := s.svc.SubmitSelfService(s.ctx, s.selfServiceRequest(), nil)

	s.Require().Error(err)
	s.Equal(dErrors.CodeUserNotFound, dErrors.CodeOf(err))
	s.Len(s.sleeper.recorded(), 3)
	s.Equal(1, s.fake.Calls())
}

func (s *ServiceSuite) TestTransientIdentityFailureIsRetried() {
	s.identityVisibleImmediately()
	s.fake.FailNext(1, dErrors.New(dErrors.CodeNetwork, "connection refused"))

	outcome, err := s.svc.SubmitSelfService(s.ctx, s.selfServiceRequest(), nil)
	s.Require().NoError(err)
	s.Equal(models.ActionCreated, outcome.Action)
	s.Equal(2, s.fake.Calls())
}

func (s *ServiceSuite) TestMemberNumberCollisionDrawsFreshNumber() {
	s.identityVisibleImmediately()
	wrapped := &conflictingStore{Store: s.store}
	svc := NewService(
		wrapped,
		identity.NewSelfService(s.fake),
		identity.NewAdmin(s.fake),
		Config{MaxAttempts: 4, PropagationDelay: 0, OrgPrefix: "SOA"},
		WithSleeper(s.sleeper),
	)

	outcome, err := svc.SubmitSelfService(s.ctx, s.selfServiceRequest(), nil)
	s.Require().NoError(err)
	s.Equal(2, outcome.Attempts)
	s.Len(wrapped.numbers, 2)
	s.Equal(outcome.MemberNumber, wrapped.numbers[1])
}

func (s *ServiceSuite) TestValidationFailureBeforeAnySideEffect() {
	req := s.selfServiceRequest()
	req.Email = "not-an-email"

	_, err := s.svc.SubmitSelfService(s.ctx, req, nil)

	s.Require().Error(err)
	s.Equal(dErrors.CodeValidation, dErrors.CodeOf(err))
	s.Zero(s.fake.Calls())
}

func (s *ServiceSuite) TestPasswordMismatchKeepsValidationCode() {
	req := s.selfServiceRequest()
	req.PasswordConfirm = "different1A"

	_, err := s.svc.SubmitSelfService(s.ctx, req, nil)

	s.Require().Error(err)
	s.Equal(dErrors.CodeValidation, dErrors.CodeOf(err))
	s.Zero(s.fake.Calls())
}

func (s *ServiceSuite) TestCancellationAbortsWithoutRetrying() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.svc.SubmitSelfService(ctx, s.selfServiceRequest(), nil)

	s.Require().ErrorIs(err, context.Canceled)
	s.Zero(s.fake.Calls())
}

func (s *ServiceSuite) TestWelcomeNoticeQueuedOnceOnCreation() {
	s.identityVisibleImmediately()

	outcome, err := s.svc.SubmitSelfService(s.ctx, s.selfServiceRequest(), nil)
	s.Require().NoError(err)

	notices := s.producer.byTopic(audit.TopicWelcomeNotices)
	s.Require().Len(notices, 1)
	s.Equal(outcome.MemberNumber, notices[0].MemberNumber)

	events := s.producer.byTopic(audit.TopicAudit)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventMemberCreated), events[0].Action)
}

func (s *ServiceSuite) TestAdminCanSkipWelcomeNotice() {
	s.identityVisibleImmediately()
	req := s.adminRequest()
	req.SkipWelcomeNotice = true

	_, err := s.svc.SubmitAdmin(s.ctx, req, nil)
	s.Require().NoError(err)
	s.Empty(s.producer.byTopic(audit.TopicWelcomeNotices))
}

func (s *ServiceSuite) TestDuplicateRejectionIsAudited() {
	s.identityVisibleImmediately()
	_, err := s.svc.SubmitSelfService(s.ctx, s.selfServiceRequest(), nil)
	s.Require().NoError(err)

	_, err = s.svc.SubmitSelfService(s.ctx, s.selfServiceRequest(), nil)
	s.Require().Error(err)

	events := s.producer.byTopic(audit.TopicAudit)
	s.Require().Len(events, 2)
	s.Equal(string(audit.EventDuplicateRejected), events[1].Action)
	s.Equal("duplicate_email", events[1].Reason)
}
