package catalogservice

import "github.com/shopspring/decimal"

// Service модель услуги из каталога.
// Единственный источник providerId, базовой цены и длительности для заявки.
type Service struct {
	ID              int64           `json:"id"`
	ProviderID      int64           `json:"provider_id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
	IsActive        bool            `json:"is_active"`
}

// ErrorResponse модель ошибки от CatalogService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
