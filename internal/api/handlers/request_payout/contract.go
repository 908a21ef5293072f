package request_payout

import (
	"context"

	requestPayout "github.com/m04kA/SMC-MarketplaceService/internal/usecase/request_payout"
)

type RequestPayoutUseCase interface {
	Execute(ctx context.Context, req *requestPayout.Request) (*requestPayout.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
