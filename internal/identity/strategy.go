package identity

import (
	"context"

	"member-gateway/internal/member/models"
	dErrors "member-gateway/pkg/domain-errors"
	"member-gateway/pkg/secrets"
)

// SelfServiceProvisioner creates an identity with the credential the
// submitting person chose. The identity is usable for auth immediately but
// starts unverified; the application treats it as pending until the
// confirmation email round-trip completes.
type SelfServiceProvisioner struct {
	client Client
}

func NewSelfService(client Client) *SelfServiceProvisioner {
	return &SelfServiceProvisioner{client: client}
}

func (p *SelfServiceProvisioner) Provision(ctx context.Context, req *models.RegistrationRequest) (*Provisioned, error) {
	if req.Password != req.PasswordConfirm {
		return nil, dErrors.New(dErrors.CodeValidation, "passwords do not match")
	}
	if err := secrets.CheckPasswordPolicy(req.Password); err != nil {
		return nil, err
	}

	identityID, err := p.client.CreateIdentity(ctx, CreateParams{
		Email:    req.Email,
		Password: req.Password,
		Verified: false,
	})
	if err != nil {
		return nil, err
	}
	return &Provisioned{IdentityID: identityID}, nil
}

// AdminProvisioner creates an identity on behalf of an administrator. A
// temporary password is generated server-side and verification is
// pre-satisfied: the administrator is vouching for the person, so no
// confirmation email round-trip is needed.
type AdminProvisioner struct {
	client Client
}

func NewAdmin(client Client) *AdminProvisioner {
	return &AdminProvisioner{client: client}
}

func (p *AdminProvisioner) Provision(ctx context.Context, req *models.RegistrationRequest) (*Provisioned, error) {
	tempPassword, err := secrets.TempPassword()
	if err != nil {
		return nil, err
	}

	identityID, err := p.client.CreateIdentity(ctx, CreateParams{
		Email:    req.Email,
		Password: tempPassword,
		Verified: true,
	})
	if err != nil {
		return nil, err
	}
	return &Provisioned{IdentityID: identityID, TempPassword: tempPassword}, nil
}
