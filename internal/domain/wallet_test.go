package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWalletCanDebit(t *testing.T) {
	w := &Wallet{Balance: decimal.NewFromInt(100)}

	assert.True(t, w.CanDebit(decimal.NewFromInt(100)))
	assert.True(t, w.CanDebit(decimal.NewFromFloat(99.99)))
	assert.False(t, w.CanDebit(decimal.NewFromFloat(100.01)))
}

func TestWalletMinutes(t *testing.T) {
	w := &Wallet{
		AvailableMinutes:      40,
		TotalMinutesPurchased: 100,
		TotalMinutesUsed:      60,
	}

	assert.True(t, w.HasMinutes(40))
	assert.False(t, w.HasMinutes(41))
	assert.True(t, w.MinutesConsistent())

	w.AvailableMinutes = 39
	assert.False(t, w.MinutesConsistent())
}

func TestPayoutIsPending(t *testing.T) {
	assert.True(t, (&PayoutRequest{Status: PayoutPending}).IsPending())
	assert.False(t, (&PayoutRequest{Status: PayoutApproved}).IsPending())
	assert.False(t, (&PayoutRequest{Status: PayoutRejected}).IsPending())
}
