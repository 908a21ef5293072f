package purchase_minutes

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// WalletRepository интерфейс репозитория кошельков
type WalletRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, walletID int64) (*domain.Wallet, error)
	AddMinutes(ctx context.Context, walletID int64, minutes int) error
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
