package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds an account's spendable balance and prepaid minute credits.
// One wallet per user, lazily created on first access.
type Wallet struct {
	ID     int64
	UserID int64

	Balance               decimal.Decimal
	AvailableMinutes      int
	TotalMinutesPurchased int
	TotalMinutesUsed      int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanDebit returns true if the balance covers the given amount
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

// HasMinutes returns true if the wallet holds at least the given minute credits
func (w *Wallet) HasMinutes(minutes int) bool {
	return w.AvailableMinutes >= minutes
}

// MinutesConsistent verifies the minute-counter invariant:
// availableMinutes == totalMinutesPurchased - totalMinutesUsed
func (w *Wallet) MinutesConsistent() bool {
	return w.AvailableMinutes == w.TotalMinutesPurchased-w.TotalMinutesUsed
}

// TransactionType represents the kind of ledger entry
type TransactionType string

const (
	TxPurchase   TransactionType = "purchase"
	TxWithdrawal TransactionType = "withdrawal"
	TxRefund     TransactionType = "refund"
	TxEarning    TransactionType = "earning"
)

// TransactionStatus represents the settlement state of a ledger entry
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxFailed    TransactionStatus = "failed"
)

// Transaction is an immutable, append-only ledger entry.
// Amount always carries a positive magnitude; the type encodes direction.
type Transaction struct {
	ID          int64
	WalletID    int64
	Amount      decimal.Decimal
	Type        TransactionType
	Status      TransactionStatus
	Description string
	CreatedAt   time.Time
}

// PayoutStatus represents the state of a payout request
type PayoutStatus string

const (
	PayoutPending  PayoutStatus = "pending"
	PayoutApproved PayoutStatus = "approved"
	PayoutRejected PayoutStatus = "rejected"
)

// PayoutRequest is a provider's ask to withdraw balance to external banking.
// Funds leave the spendable balance the moment the request is created
// (escrow semantics), before admin approval.
type PayoutRequest struct {
	ID          int64
	WalletID    int64
	Amount      decimal.Decimal
	Status      PayoutStatus
	BankDetails string
	// TransactionID links the withdrawal ledger entry written atomically
	// with this request, so approval/rejection leaves a durable trail
	TransactionID int64
	CreatedAt     time.Time
	ProcessedAt   *time.Time
}

// IsPending returns true if the payout still awaits an admin decision
func (p *PayoutRequest) IsPending() bool {
	return p.Status == PayoutPending
}

// MinuteUsage records minute credits consumed by a single session
type MinuteUsage struct {
	ID            int64
	WalletID      int64
	SessionID     int64
	Minutes       int
	RatePerMinute decimal.Decimal
	CreatedAt     time.Time
}
