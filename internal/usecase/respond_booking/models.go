package respond_booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// Decision решение провайдера по заявке
type Decision string

const (
	DecisionAccepted Decision = "accepted"
	DecisionDeclined Decision = "declined"
)

// Request модель запроса на ответ провайдера
type Request struct {
	BookingID  int64    // ID заявки
	ProviderID int64    // ID провайдера (из identity-сервиса)
	Decision   Decision // accepted | declined
}

// SessionInfo данные сессии, созданной при принятии заявки
type SessionInfo struct {
	ID        int64
	Status    string
	StartTime time.Time
	EndTime   time.Time
	Price     decimal.Decimal
}

// Response модель ответа: обновлённая заявка и сессия (только при принятии)
type Response struct {
	BookingID   int64
	Status      string
	RespondedAt time.Time
	Session     *SessionInfo
}

// sessionStatusFor определяет начальный статус сессии: scheduled для заявки
// с согласованным слотом, inquiry для instant-заявки без слота
func sessionStatusFor(booking *domain.BookingRequest) domain.SessionStatus {
	if booking.RequestedTime == nil {
		return domain.SessionInquiry
	}
	return domain.SessionScheduled
}
