package models

import (
	"time"

	id "member-gateway/pkg/domain"
)

// This file contains pure domain models for membership: entities that should
// not depend on transport or HTTP-specific concerns.

// MembershipRecord is the durable organization-scoped entity linking a person
// to their authentication identity. This is the only entity the provisioning
// workflow makes durable; approval and suspension belong to other workflows.
type MembershipRecord struct {
	ID           id.MemberID
	OrgID        id.OrgID
	RegionID     *id.RegionID
	IdentityID   id.IdentityID
	MemberNumber string
	MemberType   MemberType
	Tier         Tier
	Status       MemberStatus

	// Profile fields denormalized from the registration request.
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	NationalID  string
	DateOfBirth *time.Time
	Address     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberStatus represents the lifecycle state of a membership.
type MemberStatus string

const (
	StatusPendingVerification MemberStatus = "pending_verification"
	StatusActive              MemberStatus = "active"
	StatusSuspended           MemberStatus = "suspended"
)

func (s MemberStatus) IsValid() bool {
	return s == StatusPendingVerification || s == StatusActive || s == StatusSuspended
}

func (s MemberStatus) String() string {
	return string(s)
}

// MemberType classifies the kind of membership held.
type MemberType string

const (
	TypeRegular  MemberType = "regular"
	TypeStudent  MemberType = "student"
	TypeSenior   MemberType = "senior"
	TypeHonorary MemberType = "honorary"
)

func (t MemberType) IsValid() bool {
	return t == TypeRegular || t == TypeStudent || t == TypeSenior || t == TypeHonorary
}

// Tier is the contribution level within a membership type.
type Tier string

const (
	TierStandard  Tier = "standard"
	TierSupporter Tier = "supporter"
	TierPatron    Tier = "patron"
)

func (t Tier) IsValid() bool {
	return t == TierStandard || t == TierSupporter || t == TierPatron
}

// Action reports whether a registration call created a new record or rejoined
// an existing one. The registrar returns ActionExisting when invoked again for
// an identity that already holds a membership in the organization, which is
// what makes retries after ambiguous network failures safe.
type Action string

const (
	ActionCreated  Action = "created"
	ActionExisting Action = "existing"
)
