package handler

import (
	"strings"

	"regdesk/internal/registration/models"
	"regdesk/pkg/domain"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/validation"
)

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	IDNumber       string `json:"id_number" validate:"notblank,nationalid"`
	Birthday       string `json:"birthday"`
	RecaptchaToken string `json:"recaptcha_token"`

	requireBirthday bool
	identity        models.Identity
}

func (r *QueryRequest) Normalize() {
	r.IDNumber = domain.NormalizeNationalID(r.IDNumber)
	r.Birthday = strings.TrimSpace(r.Birthday)
}

func (r *QueryRequest) ValidationMessage(field, tag string) string {
	switch field {
	case "id_number":
		if tag == "nationalid" {
			return models.MsgIDInvalid
		}
		return models.MsgIDRequired
	}
	return ""
}

func (r *QueryRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	identity, err := parseIdentity(r.IDNumber, r.Birthday, r.requireBirthday)
	if err != nil {
		return err
	}
	r.identity = identity
	return nil
}

// CancelRequest is the body of POST /api/cancel. ConfirmText is compared
// byte for byte and is never normalized.
type CancelRequest struct {
	IDNumber    string `json:"id_number" validate:"notblank"`
	CourseName  string `json:"course_name" validate:"notblank,max=200"`
	ConfirmText string `json:"confirm_text" validate:"notblank"`
	Birthday    string `json:"birthday"`

	requireBirthday bool
	identity        models.Identity
}

func (r *CancelRequest) Normalize() {
	r.IDNumber = domain.NormalizeNationalID(r.IDNumber)
	r.Birthday = strings.TrimSpace(r.Birthday)
}

func (r *CancelRequest) ValidationMessage(field, tag string) string {
	if field == "course_name" && tag == "max" {
		return models.MsgCourseTooLong
	}
	return models.MsgCancelIncomplete
}

// Validate checks presence first, then the phrase, then the identity format.
func (r *CancelRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	if r.ConfirmText != models.ConfirmationPhrase {
		return dErrors.New(dErrors.CodeValidation, models.MsgPhraseMismatch)
	}
	identity, err := parseIdentity(r.IDNumber, r.Birthday, r.requireBirthday)
	if err != nil {
		return err
	}
	r.identity = identity
	return nil
}

// ConfirmRequest is the body of POST /api/confirm.
type ConfirmRequest struct {
	IDNumber   string `json:"id_number" validate:"notblank"`
	CourseName string `json:"course_name" validate:"notblank,max=200"`
	Birthday   string `json:"birthday"`

	requireBirthday bool
	identity        models.Identity
}

func (r *ConfirmRequest) Normalize() {
	r.IDNumber = domain.NormalizeNationalID(r.IDNumber)
	r.Birthday = strings.TrimSpace(r.Birthday)
}

func (r *ConfirmRequest) ValidationMessage(field, tag string) string {
	if field == "course_name" && tag == "max" {
		return models.MsgCourseTooLong
	}
	return models.MsgConfirmIncomplete
}

func (r *ConfirmRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	identity, err := parseIdentity(r.IDNumber, r.Birthday, r.requireBirthday)
	if err != nil {
		return err
	}
	r.identity = identity
	return nil
}

// parseIdentity validates the id and, when required, the birthday. A birthday
// sent to a deployment that does not use it is ignored.
func parseIdentity(idNumber, birthday string, requireBirthday bool) (models.Identity, error) {
	id, err := domain.ParseNationalID(idNumber)
	if err != nil {
		return models.Identity{}, dErrors.New(dErrors.CodeValidation, models.MsgIDInvalid)
	}
	if !requireBirthday {
		return models.Identity{IDNumber: id}, nil
	}
	if birthday == "" {
		return models.Identity{}, dErrors.New(dErrors.CodeValidation, models.MsgBirthdayRequired)
	}
	b, err := domain.ParseBirthday(birthday)
	if err != nil {
		return models.Identity{}, dErrors.New(dErrors.CodeValidation, models.MsgBirthdayInvalid)
	}
	return models.Identity{IDNumber: id, Birthday: b}, nil
}
