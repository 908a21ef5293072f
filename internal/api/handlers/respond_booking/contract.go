package respond_booking

import (
	"context"

	respondBooking "github.com/m04kA/SMC-MarketplaceService/internal/usecase/respond_booking"
)

type RespondBookingUseCase interface {
	Execute(ctx context.Context, req *respondBooking.Request) (*respondBooking.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
