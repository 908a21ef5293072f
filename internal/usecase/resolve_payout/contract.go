package resolve_payout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// WalletRepository интерфейс репозитория кошельков
type WalletRepository interface {
	GetPayoutByID(ctx context.Context, id int64) (*domain.PayoutRequest, error)
	ResolvePayout(ctx context.Context, id int64, to domain.PayoutStatus) error
	CreditBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, txID int64, status domain.TransactionStatus) error
}

// EventPublisher интерфейс издателя уведомлений (fire-and-forget)
type EventPublisher interface {
	Publish(ctx context.Context, key string, event interface{}) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
