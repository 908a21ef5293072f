package get_wallet_history

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/service/wallets/models"
)

type WalletService interface {
	GetHistory(ctx context.Context, userID int64) (*models.HistoryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
