package create_booking

import (
	"time"

	"github.com/shopspring/decimal"

	createBooking "github.com/m04kA/SMC-MarketplaceService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-MarketplaceService/pkg/ptr"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceID       int64            `json:"serviceId"`
	RequestedTime   *time.Time       `json:"requestedTime,omitempty"` // RFC 3339
	DurationMinutes *int             `json:"durationMinutes,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	IsInstant       bool             `json:"isInstant"`
	Notes           *string          `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64           `json:"id"`
	ClientID        int64           `json:"clientId"`
	ProviderID      int64           `json:"providerId"`
	ServiceID       int64           `json:"serviceId"`
	ServiceName     string          `json:"serviceName"`
	Status          string          `json:"status"`
	RequestedTime   *string         `json:"requestedTime,omitempty"`
	DurationMinutes int             `json:"durationMinutes"`
	Price           decimal.Decimal `json:"price"`
	IsInstant       bool            `json:"isInstant"`
	ExpiresAt       *string         `json:"expiresAt,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(clientID int64) *createBooking.Request {
	return &createBooking.Request{
		ClientID:        clientID,
		ServiceID:       r.ServiceID,
		RequestedTime:   r.RequestedTime,
		DurationMinutes: r.DurationMinutes,
		Price:           r.Price,
		IsInstant:       r.IsInstant,
		Notes:           r.Notes,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	out := &BookingResponse{
		ID:              resp.ID,
		ClientID:        resp.ClientID,
		ProviderID:      resp.ProviderID,
		ServiceID:       resp.ServiceID,
		ServiceName:     resp.ServiceName,
		Status:          resp.Status,
		DurationMinutes: resp.DurationMinutes,
		Price:           resp.Price,
		IsInstant:       resp.IsInstant,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}

	if resp.RequestedTime != nil {
		out.RequestedTime = ptr.Ptr(resp.RequestedTime.Format(time.RFC3339))
	}
	if resp.ExpiresAt != nil {
		out.ExpiresAt = ptr.Ptr(resp.ExpiresAt.Format(time.RFC3339))
	}

	return out
}
