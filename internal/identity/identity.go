// Package identity integrates the external identity/auth subsystem. The
// subsystem owns authentication principals; this package only creates them and
// translates the subsystem's failure modes into the workflow's error taxonomy.
package identity

//go:generate mockgen -source=identity.go -destination=mocks/mocks.go -package=mocks Client,Provisioner

import (
	"context"

	"member-gateway/internal/member/models"
	id "member-gateway/pkg/domain"
)

// CreateParams is the create_identity contract of the identity subsystem.
type CreateParams struct {
	Email    string
	Password string
	Verified bool
}

// Client is the low-level transport to the identity subsystem.
//
// Error Contract: implementations translate subsystem error codes into domain
// errors: email_exists -> duplicate_email, weak_password -> validation_error,
// unauthorized -> unauthorized, transport failures -> network_error.
type Client interface {
	CreateIdentity(ctx context.Context, params CreateParams) (id.IdentityID, error)
}

// Provisioned is the outcome of a provisioning strategy. TempPassword is set
// only by the administrator variant, for secure hand-off to the new member.
type Provisioned struct {
	IdentityID   id.IdentityID
	TempPassword string
}

// Provisioner is the strategy that turns a registration request into an
// authentication identity. Two variants exist: self-service (the person
// supplies their own credential) and administrator-initiated (a temporary
// credential is generated and verification is pre-satisfied).
type Provisioner interface {
	Provision(ctx context.Context, req *models.RegistrationRequest) (*Provisioned, error)
}
