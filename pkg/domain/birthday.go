package domain

import (
	"regexp"
	"strings"

	dErrors "regdesk/pkg/domain-errors"
)

// birthdayPattern is a Minguo-era date: three year digits followed by MMDD.
var birthdayPattern = regexp.MustCompile(`^[0-9]{7}$`)

// Birthday is a 7-digit era-encoded date of birth (e.g. 0790412).
// Only the shape is checked; the calendar value is compared as text.
type Birthday string

// ParseBirthday trims s and checks it is exactly seven digits.
func ParseBirthday(s string) (Birthday, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", dErrors.New(dErrors.CodeValidation, "birthday cannot be empty")
	}
	if !birthdayPattern.MatchString(trimmed) {
		return "", dErrors.New(dErrors.CodeValidation, "birthday must be exactly 7 digits")
	}
	return Birthday(trimmed), nil
}

func (b Birthday) String() string { return string(b) }

func (b Birthday) IsNil() bool { return b == "" }
