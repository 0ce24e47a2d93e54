// Package domain provides validated primitives shared across the registration context.
package domain

import (
	"regexp"
	"strings"

	dErrors "regdesk/pkg/domain-errors"
)

// nationalIDPattern is one region letter, a sex digit (1 or 2), then eight digits.
var nationalIDPattern = regexp.MustCompile(`^[A-Z][12][0-9]{8}$`)

// NationalID is a normalized, format-checked national identification number.
// The zero value is invalid.
type NationalID string

// NormalizeNationalID trims surrounding whitespace and upper-cases the input.
// An empty result means the input is unusable and must be treated as invalid.
func NormalizeNationalID(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// ValidNationalID reports whether s matches the national id format. Input case is ignored.
func ValidNationalID(s string) bool {
	if s == "" {
		return false
	}
	return nationalIDPattern.MatchString(strings.ToUpper(s))
}

// ParseNationalID normalizes s and validates the result.
func ParseNationalID(s string) (NationalID, error) {
	normalized := NormalizeNationalID(s)
	if normalized == "" {
		return "", dErrors.New(dErrors.CodeValidation, "national id cannot be empty")
	}
	if !ValidNationalID(normalized) {
		return "", dErrors.New(dErrors.CodeValidation, "invalid national id format")
	}
	return NationalID(normalized), nil
}

func (id NationalID) String() string { return string(id) }

func (id NationalID) IsNil() bool { return id == "" }

// Redacted returns the id with everything but the last four characters hidden,
// for log lines.
func (id NationalID) Redacted() string {
	s := string(id)
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
