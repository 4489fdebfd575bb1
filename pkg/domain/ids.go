// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "member-gateway/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing an IdentityID where a MemberID
// is expected.
type (
	IdentityID uuid.UUID
	MemberID   uuid.UUID
	OrgID      uuid.UUID
	RegionID   uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseIdentityID(s string) (IdentityID, error) {
	id, err := parseUUID(s, "identity ID")
	return IdentityID(id), err
}

func ParseMemberID(s string) (MemberID, error) {
	id, err := parseUUID(s, "member ID")
	return MemberID(id), err
}

func ParseOrgID(s string) (OrgID, error) {
	id, err := parseUUID(s, "organization ID")
	return OrgID(id), err
}

func ParseRegionID(s string) (RegionID, error) {
	id, err := parseUUID(s, "region ID")
	return RegionID(id), err
}

// String methods - for logging and debugging.

func (id IdentityID) String() string { return uuid.UUID(id).String() }
func (id MemberID) String() string   { return uuid.UUID(id).String() }
func (id OrgID) String() string      { return uuid.UUID(id).String() }
func (id RegionID) String() string   { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id IdentityID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id MemberID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id OrgID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id RegionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the shared validation logic.
// Nil UUIDs are allowed here; use IsNil() at the service layer for business
// validation so store lookups can return proper "not found" errors.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+label+" format")
	}
	return id, nil
}
