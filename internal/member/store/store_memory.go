package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"member-gateway/internal/member/models"
	id "member-gateway/pkg/domain"
	dErrors "member-gateway/pkg/domain-errors"
	"member-gateway/pkg/sentinel"
)

// InMemoryStore keeps membership records in memory for tests and local runs.
// It reproduces the relational store's semantics, including the propagation
// gap: RegisterMember fails with user_not_found until the linked identity has
// been marked visible via MarkIdentityVisible.
type InMemoryStore struct {
	mu         sync.RWMutex
	records    map[id.MemberID]*models.MembershipRecord
	identities map[id.IdentityID]bool
}

// NewMemory constructs an empty in-memory member store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		records:    make(map[id.MemberID]*models.MembershipRecord),
		identities: make(map[id.IdentityID]bool),
	}
}

// MarkIdentityVisible records that an identity has propagated to this store.
// In production this happens through replication from the identity subsystem;
// tests and the dev fake call it explicitly, usually after a delay.
func (s *InMemoryStore) MarkIdentityVisible(identityID id.IdentityID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identityID] = true
}

func (s *InMemoryStore) RegisterMember(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Idempotency: an identity that already holds a membership in this
	// organization rejoins the existing record.
	for _, rec := range s.records {
		if rec.OrgID == params.OrgID && rec.IdentityID == params.IdentityID {
			return &RegisterResult{Record: rec, Action: models.ActionExisting}, nil
		}
	}

	if !s.identities[params.IdentityID] {
		return nil, dErrors.Wrap(
			fmt.Errorf("identity %s: %w", params.IdentityID, sentinel.ErrIdentityNotVisible),
			dErrors.CodeUserNotFound, "identity not yet visible to member store")
	}

	for _, rec := range s.records {
		if rec.OrgID != params.OrgID {
			continue
		}
		if strings.EqualFold(rec.Email, params.Email) {
			return nil, dErrors.NewWithHint(dErrors.CodeDuplicateEmail,
				"a member with this email already exists", rec.MemberNumber)
		}
		if params.NationalID != "" && rec.NationalID == params.NationalID {
			return nil, dErrors.NewWithHint(dErrors.CodeDuplicateIdentity,
				"a member with this national ID already exists", rec.MemberNumber)
		}
		if rec.MemberNumber == params.MemberNumber {
			return nil, dErrors.Wrap(
				fmt.Errorf("member number %s: %w", params.MemberNumber, sentinel.ErrConflict),
				dErrors.CodeRPC, "member number collision")
		}
	}

	now := time.Now().UTC()
	rec := &models.MembershipRecord{
		ID:           id.MemberID(uuid.New()),
		OrgID:        params.OrgID,
		RegionID:     params.RegionID,
		IdentityID:   params.IdentityID,
		MemberNumber: params.MemberNumber,
		MemberType:   params.MemberType,
		Tier:         params.Tier,
		Status:       params.Status,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		Phone:        params.Phone,
		NationalID:   params.NationalID,
		DateOfBirth:  params.DateOfBirth,
		Address:      params.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.records[rec.ID] = rec
	return &RegisterResult{Record: rec, Action: models.ActionCreated}, nil
}

func (s *InMemoryStore) FindByOrgAndEmail(_ context.Context, orgID id.OrgID, email string) (*models.MembershipRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.OrgID == orgID && strings.EqualFold(rec.Email, email) {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("member not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByOrgAndNationalID(_ context.Context, orgID id.OrgID, nationalID string) (*models.MembershipRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if nationalID == "" {
		return nil, fmt.Errorf("member not found: %w", sentinel.ErrNotFound)
	}
	for _, rec := range s.records {
		if rec.OrgID == orgID && rec.NationalID == nationalID {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("member not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByOrgAndIdentity(_ context.Context, orgID id.OrgID, identityID id.IdentityID) (*models.MembershipRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.OrgID == orgID && rec.IdentityID == identityID {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("member not found: %w", sentinel.ErrNotFound)
}
