package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

// Member numbers follow {REGION_CODE}-{YY}-{5-digit sequence} for self-service
// registration and {ORG_PREFIX}-{REGION_CODE}-{YY}-{5-digit sequence} for
// administrator creation. The sequence is drawn randomly; uniqueness is
// advisory here and re-validated by the store's unique constraint.

var memberNumberPattern = regexp.MustCompile(`^([A-Z]{2,5}-)?[A-Z]{2,5}-\d{2}-\d{5}$`)

const memberNumberSequenceMax = 100000

// NewMemberNumber generates a member number for self-service registration.
func NewMemberNumber(regionCode string, now time.Time) (string, error) {
	return newMemberNumber("", regionCode, now)
}

// NewAdminMemberNumber generates a member number for administrator-initiated
// creation, carrying the organization prefix.
func NewAdminMemberNumber(orgPrefix, regionCode string, now time.Time) (string, error) {
	if orgPrefix == "" {
		return "", fmt.Errorf("org prefix is required")
	}
	return newMemberNumber(orgPrefix, regionCode, now)
}

func newMemberNumber(orgPrefix, regionCode string, now time.Time) (string, error) {
	if regionCode == "" {
		return "", fmt.Errorf("region code is required")
	}
	n, err := rand.Int(rand.Reader, big.NewInt(memberNumberSequenceMax))
	if err != nil {
		return "", fmt.Errorf("generate member number sequence: %w", err)
	}

	parts := make([]string, 0, 4)
	if orgPrefix != "" {
		parts = append(parts, strings.ToUpper(orgPrefix))
	}
	parts = append(parts,
		strings.ToUpper(regionCode),
		now.UTC().Format("06"),
		fmt.Sprintf("%05d", n.Int64()),
	)
	number := strings.Join(parts, "-")

	if !ValidMemberNumber(number) {
		return "", fmt.Errorf("generated member number %q does not match format", number)
	}
	return number, nil
}

// ValidMemberNumber reports whether a string matches the member number format.
func ValidMemberNumber(s string) bool {
	return memberNumberPattern.MatchString(s)
}
