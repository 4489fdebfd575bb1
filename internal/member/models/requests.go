package models

import (
	s "member-gateway/pkg/string"
)

// RegistrationRequest is the validated input to the provisioning workflow.
// It is immutable once submitted and never persisted directly.
type RegistrationRequest struct {
	OrgID      string `json:"org_id" validate:"required,uuid"`
	RegionID   string `json:"region_id,omitempty" validate:"omitempty,uuid"`
	RegionCode string `json:"region_code" validate:"required,alpha,uppercase,min=2,max=5"`

	FirstName   string `json:"first_name" validate:"required,notblank,max=100"`
	LastName    string `json:"last_name" validate:"required,notblank,max=100"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,max=30"`
	NationalID  string `json:"national_id,omitempty" validate:"omitempty,max=30"`
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Address     string `json:"address,omitempty" validate:"omitempty,max=500"`

	MemberType string `json:"member_type" validate:"required,oneof=regular student senior honorary"`
	Tier       string `json:"tier" validate:"required,oneof=standard supporter patron"`
	Status     string `json:"status,omitempty" validate:"omitempty,oneof=pending_verification active"`

	// Self-service variant only: the submitting person supplies their own
	// credential. The policy check happens in the provisioner, not here, so
	// the weak-password failure mode keeps its own error code.
	Password        string `json:"password,omitempty"`
	PasswordConfirm string `json:"password_confirm,omitempty"`

	// Administrator-only options.
	WaiveFee          bool `json:"waive_fee,omitempty"`
	SkipWelcomeNotice bool `json:"skip_welcome_notice,omitempty"`
}

// Normalize trims surrounding whitespace from the free-text fields before
// validation. Deliberately not case-folding: the stores compare emails
// case-insensitively, and region codes must arrive upper-case.
func (r *RegistrationRequest) Normalize() {
	s.TrimStrings(
		&r.OrgID, &r.RegionID, &r.RegionCode,
		&r.FirstName, &r.LastName, &r.Email, &r.Phone,
		&r.NationalID, &r.DateOfBirth, &r.Address,
	)
}
