package domain

import "time"

const (
	ActorSystem   = "system"
	ActorOperator = "operator"
)

const (
	AuditActionCreated       = "booking_created"
	AuditActionStatusChanged = "status_changed"
	AuditActionFieldChanged  = "field_changed"
)

// AuditEntry is an immutable record of one mutation to a booking.
// Entries are append-only: never updated, never deleted.
type AuditEntry struct {
	ID         int64
	BookingID  string
	Action     string
	Actor      string
	FromStatus string
	ToStatus   string
	Detail     string
	CreatedAt  time.Time
}
