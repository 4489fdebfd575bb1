package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

// SecretsSuite tests credential generation and the password policy.
//
// Justification: temporary passwords are handed to real people; they must
// always satisfy the policy the identity subsystem enforces, or the admin
// variant would fail on its own generated credential.
type SecretsSuite struct {
	suite.Suite
}

func TestSecretsSuite(t *testing.T) {
	suite.Run(t, new(SecretsSuite))
}

func (s *SecretsSuite) TestTempPasswordSatisfiesPolicy() {
	for range 50 {
		pw, err := TempPassword()
		s.Require().NoError(err)
		s.Len(pw, TempPasswordLength)
		s.NoError(CheckPasswordPolicy(pw))
	}
}

func (s *SecretsSuite) TestTempPasswordAvoidsAmbiguousGlyphs() {
	for range 20 {
		pw, err := TempPassword()
		s.Require().NoError(err)
		s.False(strings.ContainsAny(pw, "0O1lI"), "ambiguous glyph in %q", pw)
	}
}

func (s *SecretsSuite) TestTempPasswordsAreUnique() {
	seen := make(map[string]bool)
	for range 20 {
		pw, err := TempPassword()
		s.Require().NoError(err)
		s.False(seen[pw], "duplicate temporary password")
		seen[pw] = true
	}
}

func (s *SecretsSuite) TestCheckPasswordPolicy() {
	s.Run("accepts compliant password", func() {
		s.NoError(CheckPasswordPolicy("Sunrise42"))
	})

	s.Run("rejects short password", func() {
		s.Error(CheckPasswordPolicy("Ab1"))
	})

	s.Run("rejects missing upper case", func() {
		s.Error(CheckPasswordPolicy("sunrise42"))
	})

	s.Run("rejects missing lower case", func() {
		s.Error(CheckPasswordPolicy("SUNRISE42"))
	})

	s.Run("rejects missing digit", func() {
		s.Error(CheckPasswordPolicy("SunriseGo"))
	})
}

func (s *SecretsSuite) TestHashAndVerify() {
	hash, err := Hash("Sunrise42")
	s.Require().NoError(err)
	s.NoError(Verify("Sunrise42", hash))
	s.Error(Verify("WrongPass1", hash))
}

func (s *SecretsSuite) TestGenerate() {
	a, err := Generate()
	s.Require().NoError(err)
	b, err := Generate()
	s.Require().NoError(err)
	s.NotEqual(a, b)
	s.NotEmpty(a)
}
