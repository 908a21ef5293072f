package respond_booking

import (
	"time"

	"github.com/shopspring/decimal"

	respondBooking "github.com/m04kA/SMC-MarketplaceService/internal/usecase/respond_booking"
)

// RespondBookingRequest HTTP request model
type RespondBookingRequest struct {
	Decision string `json:"decision"` // accepted | declined
}

// SessionResponse данные сессии, созданной при принятии заявки
type SessionResponse struct {
	ID        int64           `json:"id"`
	Status    string          `json:"status"`
	StartTime string          `json:"startTime"`
	EndTime   string          `json:"endTime"`
	Price     decimal.Decimal `json:"price"`
}

// RespondBookingResponse HTTP response model
type RespondBookingResponse struct {
	BookingID   int64            `json:"bookingId"`
	Status      string           `json:"status"`
	RespondedAt string           `json:"respondedAt"`
	Session     *SessionResponse `json:"session,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *respondBooking.Response) *RespondBookingResponse {
	out := &RespondBookingResponse{
		BookingID:   resp.BookingID,
		Status:      resp.Status,
		RespondedAt: resp.RespondedAt.Format(time.RFC3339),
	}

	if resp.Session != nil {
		out.Session = &SessionResponse{
			ID:        resp.Session.ID,
			Status:    resp.Session.Status,
			StartTime: resp.Session.StartTime.Format(time.RFC3339),
			EndTime:   resp.Session.EndTime.Format(time.RFC3339),
			Price:     resp.Session.Price,
		}
	}

	return out
}
