package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"math/big"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	dErrors "member-gateway/pkg/domain-errors"
)

// Temporary password alphabet. Ambiguous glyphs (0/O, 1/l/I) are excluded so
// an administrator can read the credential to a new member over the phone.
const (
	tempUpper  = "ABCDEFGHJKMNPQRSTUVWXYZ"
	tempLower  = "abcdefghjkmnpqrstuvwxyz"
	tempDigits = "23456789"

	// TempPasswordLength is 12 characters over a 54-symbol alphabet,
	// roughly 69 bits of entropy.
	TempPasswordLength = 12
)

// Generate creates a cryptographically secure random secret.
// Returns a base64-encoded string suitable for API keys and similar opaque tokens.
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// TempPassword generates a human-typeable temporary password for
// administrator-initiated identity creation. The result always satisfies the
// password policy (upper, lower, digit present).
func TempPassword() (string, error) {
	alphabet := tempUpper + tempLower + tempDigits

	buf := make([]byte, TempPasswordLength)
	classes := []string{tempUpper, tempLower, tempDigits}
	for i := range buf {
		source := alphabet
		if i < len(classes) {
			// First positions draw from each class so the policy always holds.
			source = classes[i]
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(source))))
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate temporary password")
		}
		buf[i] = source[n.Int64()]
	}

	// Shuffle so the class-guaranteed characters are not predictably placed.
	for i := len(buf) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate temporary password")
		}
		j := n.Int64()
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf), nil
}

// CheckPasswordPolicy validates a user-supplied password against the
// organization policy: at least 8 characters with an upper-case letter, a
// lower-case letter, and a digit.
func CheckPasswordPolicy(password string) error {
	if len(password) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return dErrors.New(dErrors.CodeValidation, "password must contain upper-case, lower-case, and digit characters")
	}
	return nil
}

// Hash creates a bcrypt hash of the provided secret.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", dErrors.New(dErrors.CodeValidation, "secret cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "secret is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash secret")
	}
	return string(hashed), nil
}

// Verify checks if a plaintext secret matches a bcrypt hash.
func Verify(secret, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid secret")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not verify secret")
	}
	return nil
}
