package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus represents the status of a booking request
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingDeclined  BookingStatus = "declined"
	BookingExpired   BookingStatus = "expired"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// bookingTransitions defines the allowed status transitions.
// Statuses missing from the map are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingAccepted, BookingDeclined, BookingExpired, BookingCancelled},
	BookingAccepted:  {BookingConfirmed, BookingExpired, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

// CanTransition returns true if a booking may move from one status to another
func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// BookingRequest represents a client's ask for a provider's service
type BookingRequest struct {
	ID         int64
	ClientID   int64
	ProviderID int64
	ServiceID  int64
	Status     BookingStatus

	RequestedTime   *time.Time // nil until a slot is agreed (pure instant request)
	DurationMinutes int
	Price           decimal.Decimal
	IsInstant       bool
	ExpiresAt       *time.Time // always set for instant requests
	Notes           *string

	// Denormalized data for history
	ServiceName string

	RespondedAt *time.Time // set on first provider response
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsTerminal returns true if no further transition is defined for the booking
func (b *BookingRequest) IsTerminal() bool {
	return len(bookingTransitions[b.Status]) == 0
}

// CanBeResponded returns true if a provider may still accept or decline
func (b *BookingRequest) CanBeResponded() bool {
	return b.Status == BookingPending
}

// CanBeCancelled returns true if the booking can be cancelled by either side
func (b *BookingRequest) CanBeCancelled() bool {
	return b.Status == BookingPending || b.Status == BookingAccepted || b.Status == BookingConfirmed
}

// IsActive returns true if the booking still occupies the provider's attention
func (b *BookingRequest) IsActive() bool {
	return b.Status == BookingPending || b.Status == BookingAccepted || b.Status == BookingConfirmed
}

// PendingExpired returns true if a pending request has outlived its response window
func (b *BookingRequest) PendingExpired(now time.Time) bool {
	if b.Status != BookingPending || b.ExpiresAt == nil {
		return false
	}
	return now.After(*b.ExpiresAt)
}
