package complete_session

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// SessionRepository интерфейс репозитория сессий
type SessionRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Session, error)
	Complete(ctx context.Context, id int64, endTime time.Time) error
}

// BookingRepository интерфейс репозитория заявок
type BookingRepository interface {
	UpdateStatusFrom(ctx context.Context, id int64, from, to domain.BookingStatus) error
}

// WalletRepository интерфейс репозитория кошельков
type WalletRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, walletID int64) (*domain.Wallet, error)
	ConsumeMinutes(ctx context.Context, walletID int64, minutes int) error
	CreditBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
	CreateMinuteUsage(ctx context.Context, u *domain.MinuteUsage) (*domain.MinuteUsage, error)
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
