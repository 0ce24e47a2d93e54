package audit

import "time"

// Event is the structured record of a registration action. Subject is the
// redacted national id; the full identifier never leaves the service.
type Event struct {
	Timestamp time.Time
	Action    string
	Subject   string
	Course    string
	Outcome   string
	RequestID string
	ClientIP  string
}

// Audit actions.
const (
	EventRegistrationLookedUp  = "registration_looked_up"
	EventRegistrationCancelled = "registration_cancelled"
	EventRegistrationConfirmed = "registration_confirmed"
	EventMutationRejected      = "registration_mutation_rejected"
	EventNotificationSent      = "notification_dispatched"
)
