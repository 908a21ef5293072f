package purchase_minutes

import (
	"context"

	purchaseMinutes "github.com/m04kA/SMC-MarketplaceService/internal/usecase/purchase_minutes"
)

type PurchaseMinutesUseCase interface {
	Execute(ctx context.Context, req *purchaseMinutes.Request) (*purchaseMinutes.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
