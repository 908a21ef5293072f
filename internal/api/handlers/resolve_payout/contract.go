package resolve_payout

import (
	"context"

	resolvePayout "github.com/m04kA/SMC-MarketplaceService/internal/usecase/resolve_payout"
)

type ResolvePayoutUseCase interface {
	Execute(ctx context.Context, req *resolvePayout.Request) (*resolvePayout.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
