package wallets

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// WalletRepository интерфейс репозитория кошельков
type WalletRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, walletID int64) ([]*domain.Transaction, error)
	ListPayouts(ctx context.Context, walletID int64) ([]*domain.PayoutRequest, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
