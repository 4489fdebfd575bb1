package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	dErrors "member-gateway/pkg/domain-errors"
)

// IDsSuite tests typed identifier parsing at trust boundaries.
//
// Justification: every handler input crosses these parsers; a bad error code
// here would surface as the wrong HTTP status for malformed IDs.
type IDsSuite struct {
	suite.Suite
}

func TestIDsSuite(t *testing.T) {
	suite.Run(t, new(IDsSuite))
}

func (s *IDsSuite) TestParseRoundTrip() {
	raw := uuid.New().String()

	orgID, err := ParseOrgID(raw)
	s.NoError(err)
	s.Equal(raw, orgID.String())

	identityID, err := ParseIdentityID(raw)
	s.NoError(err)
	s.Equal(raw, identityID.String())
}

func (s *IDsSuite) TestParseRejectsEmpty() {
	_, err := ParseOrgID("")
	s.Error(err)
	s.Equal(dErrors.CodeValidation, dErrors.CodeOf(err))
}

func (s *IDsSuite) TestParseRejectsMalformed() {
	_, err := ParseRegionID("not-a-uuid")
	s.Error(err)
	s.Equal(dErrors.CodeValidation, dErrors.CodeOf(err))
}

func (s *IDsSuite) TestIsNil() {
	s.True(MemberID(uuid.Nil).IsNil())
	s.False(MemberID(uuid.New()).IsNil())

	nilID, err := ParseOrgID(uuid.Nil.String())
	s.NoError(err)
	s.True(nilID.IsNil())
}
