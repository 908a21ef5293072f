package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus represents the status of a session
type SessionStatus string

const (
	// SessionScheduled session created from a booking with an agreed time slot
	SessionScheduled SessionStatus = "scheduled"
	// SessionInquiry session created from an instant request with no agreed slot
	SessionInquiry SessionStatus = "inquiry"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionCancelled  SessionStatus = "cancelled"
)

// Session represents a confirmed or in-progress service engagement.
// Created exactly once when a booking request is accepted; its price is
// copied from the originating request and never recomputed.
type Session struct {
	ID         int64
	BookingID  int64
	ClientID   int64
	ProviderID int64
	Status     SessionStatus

	StartTime time.Time
	EndTime   *time.Time // nil until the session ends
	Price     decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFinished returns true if the session reached a final state
func (s *Session) IsFinished() bool {
	return s.Status == SessionCompleted || s.Status == SessionCancelled
}

// CanBeStarted returns true if the client may still join the session
func (s *Session) CanBeStarted() bool {
	return s.Status == SessionScheduled || s.Status == SessionInquiry
}

// CanBeCompleted returns true if the session is running and may be finalized
func (s *Session) CanBeCompleted() bool {
	return s.Status == SessionInProgress
}
