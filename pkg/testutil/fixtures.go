package testutil

import (
	"github.com/google/uuid"

	"member-gateway/internal/member/models"
	id "member-gateway/pkg/domain"
)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	OrgID1      id.OrgID
	OrgID2      id.OrgID
	RegionID1   id.RegionID
	IdentityID1 id.IdentityID
	IdentityID2 id.IdentityID
}{
	OrgID1:      id.OrgID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000001")),
	OrgID2:      id.OrgID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000002")),
	RegionID1:   id.RegionID(uuid.MustParse("bbbb0000-0000-0000-0000-000000000001")),
	IdentityID1: id.IdentityID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	IdentityID2: id.IdentityID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
}

// RegistrationBuilder provides a fluent interface for building registration
// requests.
type RegistrationBuilder struct {
	req *models.RegistrationRequest
}

// NewRegistrationBuilder creates a builder with a valid self-service request.
func NewRegistrationBuilder() *RegistrationBuilder {
	return &RegistrationBuilder{
		req: &models.RegistrationRequest{
			OrgID:           TestIDs.OrgID1.String(),
			RegionCode:      "GP",
			FirstName:       "Thandi",
			LastName:        "Mokoena",
			Email:           "thandi@example.org",
			MemberType:      string(models.TypeRegular),
			Tier:            string(models.TierStandard),
			Password:        "Str0ngPass",
			PasswordConfirm: "Str0ngPass",
		},
	}
}

func (b *RegistrationBuilder) WithOrgID(orgID id.OrgID) *RegistrationBuilder {
	b.req.OrgID = orgID.String()
	return b
}

func (b *RegistrationBuilder) WithRegionCode(code string) *RegistrationBuilder {
	b.req.RegionCode = code
	return b
}

func (b *RegistrationBuilder) WithEmail(email string) *RegistrationBuilder {
	b.req.Email = email
	return b
}

func (b *RegistrationBuilder) WithName(firstName, lastName string) *RegistrationBuilder {
	b.req.FirstName = firstName
	b.req.LastName = lastName
	return b
}

func (b *RegistrationBuilder) WithNationalID(nationalID string) *RegistrationBuilder {
	b.req.NationalID = nationalID
	return b
}

func (b *RegistrationBuilder) WithType(memberType models.MemberType, tier models.Tier) *RegistrationBuilder {
	b.req.MemberType = string(memberType)
	b.req.Tier = string(tier)
	return b
}

func (b *RegistrationBuilder) WithPassword(password string) *RegistrationBuilder {
	b.req.Password = password
	b.req.PasswordConfirm = password
	return b
}

// ForAdmin strips the self-service credential fields.
func (b *RegistrationBuilder) ForAdmin() *RegistrationBuilder {
	b.req.Password = ""
	b.req.PasswordConfirm = ""
	return b
}

func (b *RegistrationBuilder) Build() *models.RegistrationRequest {
	return b.req
}
