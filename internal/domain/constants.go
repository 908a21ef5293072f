package domain

import "time"

// Booking window constants
const (
	// PendingResponseWindow how long a provider has to answer an instant request
	PendingResponseWindow = 30 * time.Minute

	// AcceptedWindowFloor minimum time the client gets to join an accepted call
	AcceptedWindowFloor = 5 * time.Minute
)

// Business validation constants
const (
	MinDurationMinutes = 1
	MaxDurationMinutes = 480 // 8 hours
	MaxNotesLength     = 500
	MaxBankDetailsLength = 500
)

// ActiveBookingStatuses statuses that still occupy the provider's attention
var ActiveBookingStatuses = []BookingStatus{
	BookingPending,
	BookingAccepted,
	BookingConfirmed,
}

// TerminalBookingStatuses statuses from which no transition is defined
var TerminalBookingStatuses = []BookingStatus{
	BookingDeclined,
	BookingExpired,
	BookingCompleted,
	BookingCancelled,
}
