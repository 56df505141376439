package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// ActiveStatuses are the statuses under which a booking occupies its slot.
var ActiveStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusInProgress,
}

type Booking struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Date           string // calendar day, YYYY-MM-DD
	TimeSlot       string // start label, e.g. "14:00"
	DurationHours  int
	PartySize      int
	SetupType      string
	ServiceID      string
	ServiceName    string
	ServicePrice   int64
	AddonIDs       []string
	BasePrice      int64
	AddonsTotal    int64
	TotalPrice     int64
	Status         BookingStatus
	PaymentStatus  PaymentStatus
	SpecialRequest string
	Version        int64
	ConfirmedAt    *time.Time
	CancelledAt    *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (b *Booking) IsActive() bool {
	switch b.Status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress:
		return true
	}
	return false
}

func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled
}

var successors = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted:  {},
	BookingStatusCancelled:  {},
}

// CanTransition reports whether to is a legal successor of from.
// Re-requesting the current status is not a transition; callers treat it
// as an idempotent no-op before consulting this table.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range successors[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidStatus(s BookingStatus) bool {
	_, ok := successors[s]
	return ok
}

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}
