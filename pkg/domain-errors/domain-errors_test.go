package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// Justification: These are core error primitives used at every trust boundary.
// Unit tests ensure invariants like "wrapped domain errors preserve original
// code and hint" and "retryable classification follows the taxonomy" hold.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeDuplicateEmail, Message: "email already registered"}
		s.Equal("email already registered", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeUserNotFound}
		s.Equal("user_not_found", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	s.Run("returns wrapped error", func() {
		inner := errors.New("connection refused")
		err := &Error{Code: CodeNetwork, Message: "identity call failed", Err: inner}
		s.Equal(inner, errors.Unwrap(err))
	})

	s.Run("returns nil when no wrapped error", func() {
		err := &Error{Code: CodeUnknown}
		s.Nil(errors.Unwrap(err))
	})
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeDuplicateEmail, Message: "duplicate at guard"}
		err2 := &Error{Code: CodeDuplicateEmail, Message: "duplicate at store"}
		s.True(errors.Is(err1, err2))
	})

	s.Run("does not match different codes", func() {
		s.False(errors.Is(New(CodeDuplicateEmail, ""), New(CodeDuplicateIdentity, "")))
	})
}

func (s *DomainErrorsSuite) TestWrapPreservesCodeAndHint() {
	s.Run("wrapping a domain error keeps original code", func() {
		inner := New(CodeDuplicateEmail, "email taken")
		wrapped := Wrap(inner, CodeInternal, "registration failed")
		s.Equal(CodeDuplicateEmail, CodeOf(wrapped))
	})

	s.Run("wrapping a domain error keeps the hint", func() {
		inner := NewWithHint(CodeDuplicateEmail, "email taken", "SOA-GP-25-00042")
		wrapped := Wrap(inner, CodeInternal, "registration failed")
		s.Equal("SOA-GP-25-00042", HintOf(wrapped))
	})

	s.Run("wrapping a plain error applies the new code", func() {
		wrapped := Wrap(errors.New("boom"), CodeRPC, "rpc failed")
		s.Equal(CodeRPC, CodeOf(wrapped))
	})
}

func (s *DomainErrorsSuite) TestRetryableClassification() {
	retryable := []Code{CodeUserNotFound, CodeNetwork, CodeRPC}
	terminal := []Code{
		CodeDuplicateEmail, CodeDuplicateIdentity, CodeValidation,
		CodeUnauthorized, CodeUnknown, CodeNotFound, CodeBadRequest, CodeInternal,
	}

	for _, code := range retryable {
		s.Run(fmt.Sprintf("%s is retryable", code), func() {
			s.True(code.Retryable())
			s.True(Retryable(New(code, "")))
		})
	}

	for _, code := range terminal {
		s.Run(fmt.Sprintf("%s is terminal", code), func() {
			s.False(code.Retryable())
			s.False(Retryable(New(code, "")))
		})
	}

	s.Run("plain errors are terminal", func() {
		s.False(Retryable(errors.New("boom")))
	})

	s.Run("retryable survives wrapping", func() {
		err := Wrap(New(CodeUserNotFound, "not visible yet"), CodeInternal, "attempt failed")
		s.True(Retryable(err))
	})
}
