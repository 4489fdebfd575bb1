// Package string holds small text helpers shared across request handling.
package string

import (
	"strings"
	"unicode"
)

// TrimStrings trims surrounding whitespace from the pointed-to strings in
// place, so request normalization stays a single call site.
func TrimStrings(ss ...*string) {
	for _, s := range ss {
		*s = strings.TrimSpace(*s)
	}
}

// ToSnakeCase converts a CamelCase struct field name to the snake_case form
// used in JSON bodies, so validation messages name the field the caller sent.
// Acronym runs stay together: "OrgID" becomes "org_id", not "org_i_d".
func ToSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
