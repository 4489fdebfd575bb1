package provisioning

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"member-gateway/internal/member/models"
	"member-gateway/internal/member/store"
	id "member-gateway/pkg/domain"
	dErrors "member-gateway/pkg/domain-errors"
)

// failingStore simulates an unreachable relational store.
type failingStore struct {
	store.Store
}

func (failingStore) FindByOrgAndEmail(context.Context, id.OrgID, string) (*models.MembershipRecord, error) {
	return nil, dErrors.New(dErrors.CodeRPC, "store unavailable")
}

func (failingStore) FindByOrgAndNationalID(context.Context, id.OrgID, string) (*models.MembershipRecord, error) {
	return nil, dErrors.New(dErrors.CodeRPC, "store unavailable")
}

type mapCache struct {
	entries map[string]string
	sets    int
}

func (c *mapCache) Get(_ context.Context, orgID id.OrgID, email string) (string, bool) {
	n, ok := c.entries[orgID.String()+"/"+email]
	return n, ok
}

func (c *mapCache) Set(_ context.Context, orgID id.OrgID, email, memberNumber string) {
	c.sets++
	c.entries[orgID.String()+"/"+email] = memberNumber
}

type GuardSuite struct {
	suite.Suite
	store  *store.InMemoryStore
	orgID  id.OrgID
	logger *slog.Logger
	ctx    context.Context
}

func TestGuardSuite(t *testing.T) {
	suite.Run(t, new(GuardSuite))
}

func (s *GuardSuite) SetupTest() {
	s.store = store.NewMemory()
	s.orgID = id.OrgID(uuid.New())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.ctx = context.Background()
}

func (s *GuardSuite) register(email, nationalID, memberNumber string) {
	identityID := id.IdentityID(uuid.New())
	s.store.MarkIdentityVisible(identityID)
	_, err := s.store.RegisterMember(s.ctx, store.RegisterParams{
		IdentityID:   identityID,
		OrgID:        s.orgID,
		MemberNumber: memberNumber,
		MemberType:   models.TypeRegular,
		Tier:         models.TierStandard,
		Status:       models.StatusActive,
		FirstName:    "Sipho",
		LastName:     "Dlamini",
		Email:        email,
		NationalID:   nationalID,
	})
	s.Require().NoError(err)
}

func (s *GuardSuite) TestPassesWhenNoMatch() {
	guard := NewGuard(s.store, nil, s.logger)
	s.NoError(guard.Check(s.ctx, s.orgID, "new@example.org", ""))
}

func (s *GuardSuite) TestRejectsExistingEmailWithMemberNumber() {
	s.register("sipho@example.org", "", "GP-25-00042")
	guard := NewGuard(s.store, nil, s.logger)

	err := guard.Check(s.ctx, s.orgID, "sipho@example.org", "")
	s.Require().Error(err)
	s.Equal(dErrors.CodeDuplicateEmail, dErrors.CodeOf(err))
	s.Equal("GP-25-00042", dErrors.HintOf(err))
}

func (s *GuardSuite) TestRejectsExistingNationalID() {
	s.register("sipho@example.org", "8001015009087", "GP-25-00042")
	guard := NewGuard(s.store, nil, s.logger)

	err := guard.Check(s.ctx, s.orgID, "other@example.org", "8001015009087")
	s.Require().Error(err)
	s.Equal(dErrors.CodeDuplicateIdentity, dErrors.CodeOf(err))
	s.Equal("GP-25-00042", dErrors.HintOf(err))
}

func (s *GuardSuite) TestSkipsNationalIDWhenAbsent() {
	s.register("sipho@example.org", "8001015009087", "GP-25-00042")
	guard := NewGuard(s.store, nil, s.logger)

	s.NoError(guard.Check(s.ctx, s.orgID, "other@example.org", ""))
}

func (s *GuardSuite) TestCacheHitShortCircuitsStoreLookup() {
	cache := &mapCache{entries: map[string]string{}}
	cache.Set(s.ctx, s.orgID, "sipho@example.org", "GP-25-00042")
	guard := NewGuard(failingStore{}, cache, s.logger)

	err := guard.Check(s.ctx, s.orgID, "sipho@example.org", "")
	s.Require().Error(err)
	s.Equal(dErrors.CodeDuplicateEmail, dErrors.CodeOf(err))
	s.Equal("GP-25-00042", dErrors.HintOf(err))
}

// An unreachable store must not block registration: the guard is advisory and
// the store's unique constraints remain the authority.
func (s *GuardSuite) TestStoreFailureDegradesToNoOp() {
	guard := NewGuard(failingStore{}, nil, s.logger)
	s.NoError(guard.Check(s.ctx, s.orgID, "sipho@example.org", "8001015009087"))
}
