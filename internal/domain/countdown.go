package domain

import "time"

// Countdown policy for instant bookings. Nothing here is persisted: every
// value is derived from stored timestamps and the caller's clock, and must be
// re-derived on each read. Enforcement decisions (expiry sweep, session start
// eligibility) use these same functions, never a client-reported remainder.

// PendingRemaining returns how long a pending request can still be answered.
// Zero means the request is expired for display purposes, even before a
// sweep persists the transition.
func PendingRemaining(createdAt, now time.Time) time.Duration {
	remaining := PendingResponseWindow - now.Sub(createdAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AcceptedCountdownDuration returns the total window the client gets to join
// an accepted call. A provider who takes longer to accept implicitly grants
// the client at least that much grace, with a floor of AcceptedWindowFloor.
func AcceptedCountdownDuration(createdAt, respondedAt time.Time) time.Duration {
	timeToAccept := respondedAt.Sub(createdAt)
	if timeToAccept < AcceptedWindowFloor {
		return AcceptedWindowFloor
	}
	return timeToAccept
}

// AcceptedRemaining returns how long the client still has to join an accepted
// call. Zero means the accepted window has lapsed.
func AcceptedRemaining(createdAt, respondedAt, now time.Time) time.Duration {
	remaining := AcceptedCountdownDuration(createdAt, respondedAt) - now.Sub(respondedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AcceptedWindowRemaining returns the join countdown for this booking, or
// false if the booking has no accepted window (never responded to).
func (b *BookingRequest) AcceptedWindowRemaining(now time.Time) (time.Duration, bool) {
	if b.RespondedAt == nil {
		return 0, false
	}
	return AcceptedRemaining(b.CreatedAt, *b.RespondedAt, now), true
}

// AcceptedWindowLapsed returns true if an accepted booking's join window has
// run out without the call starting
func (b *BookingRequest) AcceptedWindowLapsed(now time.Time) bool {
	if b.Status != BookingAccepted {
		return false
	}
	remaining, ok := b.AcceptedWindowRemaining(now)
	return ok && remaining == 0
}
