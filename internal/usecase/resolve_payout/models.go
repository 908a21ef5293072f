package resolve_payout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// Resolution решение администратора по заявке на вывод
type Resolution string

const (
	ResolutionApproved Resolution = "approved"
	ResolutionRejected Resolution = "rejected"
)

// Request запрос на обработку заявки на вывод средств
type Request struct {
	PayoutID   int64
	AdminID    int64
	Resolution Resolution
}

// Response результат обработки заявки
type Response struct {
	PayoutID    int64
	WalletID    int64
	Amount      decimal.Decimal
	Status      domain.PayoutStatus
	ProcessedAt time.Time
}
