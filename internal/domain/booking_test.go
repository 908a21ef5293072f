package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{BookingPending, BookingAccepted, true},
		{BookingPending, BookingDeclined, true},
		{BookingPending, BookingExpired, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingConfirmed, false},
		{BookingPending, BookingCompleted, false},

		{BookingAccepted, BookingConfirmed, true},
		{BookingAccepted, BookingExpired, true},
		{BookingAccepted, BookingCancelled, true},
		{BookingAccepted, BookingDeclined, false},
		{BookingAccepted, BookingPending, false},

		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingExpired, false},

		// Терминальные статусы не имеют исходящих переходов
		{BookingDeclined, BookingPending, false},
		{BookingExpired, BookingAccepted, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingCancelled, BookingPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestBookingPredicates(t *testing.T) {
	for _, status := range []BookingStatus{BookingDeclined, BookingExpired, BookingCompleted, BookingCancelled} {
		b := &BookingRequest{Status: status}
		assert.True(t, b.IsTerminal(), "status %s must be terminal", status)
		assert.False(t, b.IsActive(), "status %s must not be active", status)
		assert.False(t, b.CanBeCancelled(), "status %s must not be cancellable", status)
	}

	for _, status := range []BookingStatus{BookingPending, BookingAccepted, BookingConfirmed} {
		b := &BookingRequest{Status: status}
		assert.False(t, b.IsTerminal(), "status %s must not be terminal", status)
		assert.True(t, b.IsActive(), "status %s must be active", status)
		assert.True(t, b.CanBeCancelled(), "status %s must be cancellable", status)
	}

	assert.True(t, (&BookingRequest{Status: BookingPending}).CanBeResponded())
	assert.False(t, (&BookingRequest{Status: BookingAccepted}).CanBeResponded())
}

func TestPendingExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	deadline := now.Add(30 * time.Minute)

	instant := &BookingRequest{Status: BookingPending, ExpiresAt: &deadline}
	assert.False(t, instant.PendingExpired(deadline))
	assert.True(t, instant.PendingExpired(deadline.Add(time.Second)))

	// Обычная заявка без дедлайна не истекает
	regular := &BookingRequest{Status: BookingPending}
	assert.False(t, regular.PendingExpired(now.Add(24*time.Hour)))

	// Уже разрешённая заявка не истекает задним числом
	resolved := &BookingRequest{Status: BookingAccepted, ExpiresAt: &deadline}
	assert.False(t, resolved.PendingExpired(deadline.Add(time.Hour)))
}
