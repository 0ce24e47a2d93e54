// Package models holds the registration types shared by the store, service
// and handler layers.
package models

import (
	"strings"

	"regdesk/pkg/domain"
)

// Status is the logical state of a registration row.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusConfirmed  Status = "confirmed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) String() string { return string(s) }

// TimestampLayout is the status_changed_at format, rendered in Asia/Taipei.
const TimestampLayout = "2006-01-02 15:04:05"

// ConfirmationPhrase must be typed verbatim to cancel.
const ConfirmationPhrase = "我確定取消"

// Registration is one data row of the backing sheet.
type Registration struct {
	// RowPosition is the 1-based sheet row; the header is row 1.
	RowPosition      int
	IDNumber         domain.NationalID
	Birthday         domain.Birthday
	Name             string
	CourseName       string
	CourseDate       string
	Status           Status
	StatusLabel      string
	StatusChangedAt  string
	ActorIP          string
	ActorUserAgent   string
	HandlerContactID string
}

// IsCancelled is true once the registration reached its terminal state.
func (r Registration) IsCancelled() bool { return r.Status == StatusCancelled }

// IsConfirmed is true when the attendee already confirmed.
func (r Registration) IsConfirmed() bool { return r.Status == StatusConfirmed }

// Identity selects the rows of one person. Birthday is empty unless the
// deployment requires it.
type Identity struct {
	IDNumber domain.NationalID
	Birthday domain.Birthday
}

// Matches reports whether the trimmed id (and birthday, when set) equals the identity.
func (i Identity) Matches(idCell, birthdayCell string) bool {
	if strings.TrimSpace(idCell) != i.IDNumber.String() {
		return false
	}
	if i.Birthday.IsNil() {
		return true
	}
	return strings.TrimSpace(birthdayCell) == i.Birthday.String()
}

// MutationCommand carries one cancel or confirm request.
type MutationCommand struct {
	Identity
	CourseName     string
	ActorIP        string
	ActorUserAgent string
}

// CancellationNotice is the payload sent to the course handler after a cancel.
type CancellationNotice struct {
	Recipient   string
	CourseName  string
	Name        string
	IDNumber    string
	CourseDate  string
	CancelledAt string
}

// StatusLabels are the texts stored in the status column.
type StatusLabels struct {
	Confirmed string
	Cancelled string
}

// Parse maps a status cell to a Status. Blank and unknown cells are registered;
// the English state names are accepted alongside the configured labels.
func (l StatusLabels) Parse(cell string) Status {
	v := strings.TrimSpace(cell)
	switch {
	case v == "":
		return StatusRegistered
	case v == l.Cancelled || strings.EqualFold(v, string(StatusCancelled)):
		return StatusCancelled
	case v == l.Confirmed || strings.EqualFold(v, string(StatusConfirmed)):
		return StatusConfirmed
	default:
		return StatusRegistered
	}
}

// Label returns the text written for s.
func (l StatusLabels) Label(s Status) string {
	switch s {
	case StatusCancelled:
		return l.Cancelled
	case StatusConfirmed:
		return l.Confirmed
	default:
		return ""
	}
}
