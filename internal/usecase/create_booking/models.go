package create_booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request модель запроса на создание заявки
type Request struct {
	ClientID        int64            // ID клиента (из identity-сервиса)
	ServiceID       int64            // ID услуги из каталога
	RequestedTime   *time.Time       // Желаемое время (nil для instant-заявки без слота)
	DurationMinutes *int             // Длительность; nil — взять из каталога
	Price           *decimal.Decimal // Цена; nil — взять из каталога
	IsInstant       bool             // Instant-заявка с окном ответа 30 минут
	Notes           *string          // Заметки клиента (опционально)
}

// Response модель ответа с созданной заявкой
type Response struct {
	ID              int64
	ClientID        int64
	ProviderID      int64
	ServiceID       int64
	Status          string
	RequestedTime   *time.Time
	DurationMinutes int
	Price           decimal.Decimal
	IsInstant       bool
	ExpiresAt       *time.Time
	Notes           *string
	ServiceName     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
