package events

import "time"

// Ключи маршрутизации уведомлений
const (
	KeyBookingCreated  = "booking.created"
	KeyBookingAccepted = "booking.accepted"
	KeyBookingDeclined = "booking.declined"
	KeyPayoutResolved  = "payout.resolved"
)

// BookingEvent событие жизненного цикла заявки
type BookingEvent struct {
	BookingID  int64     `json:"bookingId"`
	ClientID   int64     `json:"clientId"`
	ProviderID int64     `json:"providerId"`
	ServiceID  int64     `json:"serviceId"`
	Status     string    `json:"status"`
	IsInstant  bool      `json:"isInstant"`
	OccurredAt time.Time `json:"occurredAt"`
}

// PayoutResolvedEvent событие решения по заявке на вывод
type PayoutResolvedEvent struct {
	PayoutID   int64     `json:"payoutId"`
	WalletID   int64     `json:"walletId"`
	Amount     string    `json:"amount"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}
