// Package store persists membership records. The store's unique constraints on
// (org, email) and (org, national_id) are the final authority on duplicates;
// the duplicate guard in the provisioning package is only an optimization.
package store

import (
	"context"
	"time"

	"member-gateway/internal/member/models"
	id "member-gateway/pkg/domain"
)

// Error Contract:
// - Find methods return sentinel.ErrNotFound (wrapped) when no record matches.
// - RegisterMember returns domain errors: duplicate_email / duplicate_identity
//   carry the existing member number as hint; user_not_found means the linked
//   identity has not propagated to this store yet; rpc_error wraps everything
//   infrastructural. A member-number collision additionally wraps
//   sentinel.ErrConflict so the workflow can regenerate the number.

// RegisterParams carries everything the registrar needs for one idempotent call.
// Invoking RegisterMember twice with the same identity and organization yields
// exactly one record; the second call reports ActionExisting.
type RegisterParams struct {
	IdentityID   id.IdentityID
	OrgID        id.OrgID
	RegionID     *id.RegionID
	MemberNumber string
	MemberType   models.MemberType
	Tier         models.Tier
	Status       models.MemberStatus

	FirstName   string
	LastName    string
	Email       string
	Phone       string
	NationalID  string
	DateOfBirth *time.Time
	Address     string
}

// RegisterResult is the registrar outcome: the durable record plus whether
// this call created it or found it already present.
type RegisterResult struct {
	Record *models.MembershipRecord
	Action models.Action
}

// Store defines the persistence interface for membership records.
type Store interface {
	RegisterMember(ctx context.Context, params RegisterParams) (*RegisterResult, error)
	FindByOrgAndEmail(ctx context.Context, orgID id.OrgID, email string) (*models.MembershipRecord, error)
	FindByOrgAndNationalID(ctx context.Context, orgID id.OrgID, nationalID string) (*models.MembershipRecord, error)
	FindByOrgAndIdentity(ctx context.Context, orgID id.OrgID, identityID id.IdentityID) (*models.MembershipRecord, error)
}
