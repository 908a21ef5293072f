package get_wallet

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/service/wallets/models"
)

type WalletService interface {
	GetWallet(ctx context.Context, userID int64) (*models.WalletResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
