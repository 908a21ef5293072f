package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену заявки
type CancelBookingRequest struct {
	UserID int64 `json:"userId"`
}

// GetClientBookingsRequest запрос на получение заявок клиента
type GetClientBookingsRequest struct {
	ClientID int64   `json:"clientId"`
	Status   *string `json:"status,omitempty"`
}

// GetProviderBookingsRequest запрос на получение заявок провайдера
type GetProviderBookingsRequest struct {
	ProviderID int64   `json:"providerId"`
	Status     *string `json:"status,omitempty"`
}

// Response модели

// BookingResponse ответ с данными заявки. Поля обратного отсчёта
// вычисляются на момент чтения и не хранятся в БД.
type BookingResponse struct {
	ID              int64           `json:"id"`
	ClientID        int64           `json:"clientId"`
	ProviderID      int64           `json:"providerId"`
	ServiceID       int64           `json:"serviceId"`
	ServiceName     string          `json:"serviceName"`
	Status          string          `json:"status"`
	RequestedTime   *time.Time      `json:"requestedTime,omitempty"`
	DurationMinutes int             `json:"durationMinutes"`
	Price           decimal.Decimal `json:"price"`
	IsInstant       bool            `json:"isInstant"`
	Notes           *string         `json:"notes,omitempty"`
	ExpiresAt       *time.Time      `json:"expiresAt,omitempty"`
	RespondedAt     *time.Time      `json:"respondedAt,omitempty"`

	// Секунды до конца окна ответа (только для pending instant-заявок)
	ResponseSecondsLeft *int64 `json:"responseSecondsLeft,omitempty"`
	// Секунды до конца окна подтверждения (только для accepted-заявок)
	JoinSecondsLeft *int64 `json:"joinSecondsLeft,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком заявок
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO, вычисляя
// обратные отсчёты на переданный момент времени
func FromDomainBooking(b *domain.BookingRequest, now time.Time) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:              b.ID,
		ClientID:        b.ClientID,
		ProviderID:      b.ProviderID,
		ServiceID:       b.ServiceID,
		ServiceName:     b.ServiceName,
		Status:          string(b.Status),
		RequestedTime:   b.RequestedTime,
		DurationMinutes: b.DurationMinutes,
		Price:           b.Price,
		IsInstant:       b.IsInstant,
		Notes:           b.Notes,
		ExpiresAt:       b.ExpiresAt,
		RespondedAt:     b.RespondedAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}

	if b.IsInstant && b.Status == domain.BookingPending {
		seconds := int64(domain.PendingRemaining(b.CreatedAt, now).Seconds())
		resp.ResponseSecondsLeft = &seconds
	}

	if b.Status == domain.BookingAccepted {
		if remaining, ok := b.AcceptedWindowRemaining(now); ok {
			seconds := int64(remaining.Seconds())
			resp.JoinSecondsLeft = &seconds
		}
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.BookingRequest, now time.Time) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking, now); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	validStatuses := []domain.BookingStatus{
		domain.BookingPending,
		domain.BookingAccepted,
		domain.BookingDeclined,
		domain.BookingExpired,
		domain.BookingConfirmed,
		domain.BookingCompleted,
		domain.BookingCancelled,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
