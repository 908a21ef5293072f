package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPendingRemaining(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		expected time.Duration
	}{
		{
			name:     "full window right after creation",
			now:      createdAt,
			expected: 30 * time.Minute,
		},
		{
			name:     "partially elapsed",
			now:      createdAt.Add(10 * time.Minute),
			expected: 20 * time.Minute,
		},
		{
			name:     "exactly at deadline",
			now:      createdAt.Add(30 * time.Minute),
			expected: 0,
		},
		{
			name:     "past deadline clamps to zero",
			now:      createdAt.Add(31 * time.Minute),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PendingRemaining(createdAt, tt.now))
		})
	}
}

func TestAcceptedCountdownDuration(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		respondedAt time.Time
		expected    time.Duration
	}{
		{
			name:        "instant accept gets the floor",
			respondedAt: createdAt.Add(10 * time.Second),
			expected:    5 * time.Minute,
		},
		{
			name:        "accept in under five minutes gets the floor",
			respondedAt: createdAt.Add(3 * time.Minute),
			expected:    5 * time.Minute,
		},
		{
			name:        "accept at exactly five minutes",
			respondedAt: createdAt.Add(5 * time.Minute),
			expected:    5 * time.Minute,
		},
		{
			name:        "slow accept grants matching grace",
			respondedAt: createdAt.Add(22 * time.Minute),
			expected:    22 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AcceptedCountdownDuration(createdAt, tt.respondedAt))
		})
	}
}

func TestAcceptedRemaining(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	respondedAt := createdAt.Add(2 * time.Minute) // floor applies: window is 5 minutes

	assert.Equal(t, 5*time.Minute, AcceptedRemaining(createdAt, respondedAt, respondedAt))
	assert.Equal(t, 1*time.Second, AcceptedRemaining(createdAt, respondedAt, respondedAt.Add(4*time.Minute+59*time.Second)))
	assert.Equal(t, time.Duration(0), AcceptedRemaining(createdAt, respondedAt, respondedAt.Add(5*time.Minute)))
	assert.Equal(t, time.Duration(0), AcceptedRemaining(createdAt, respondedAt, respondedAt.Add(5*time.Minute+time.Second)))
}

func TestAcceptedWindowLapsed(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	respondedAt := createdAt.Add(10 * time.Minute)

	booking := &BookingRequest{
		Status:      BookingAccepted,
		CreatedAt:   createdAt,
		RespondedAt: &respondedAt,
	}

	// Окно равно времени ответа: 10 минут после responded_at
	assert.False(t, booking.AcceptedWindowLapsed(respondedAt.Add(9*time.Minute)))
	assert.True(t, booking.AcceptedWindowLapsed(respondedAt.Add(10*time.Minute)))

	// Не-accepted заявка не может иметь истёкшее окно
	booking.Status = BookingConfirmed
	assert.False(t, booking.AcceptedWindowLapsed(respondedAt.Add(time.Hour)))

	// Заявка без ответа не имеет окна
	noResponse := &BookingRequest{Status: BookingAccepted, CreatedAt: createdAt}
	assert.False(t, noResponse.AcceptedWindowLapsed(createdAt.Add(time.Hour)))

	remaining, ok := noResponse.AcceptedWindowRemaining(createdAt)
	assert.False(t, ok)
	assert.Zero(t, remaining)
}
