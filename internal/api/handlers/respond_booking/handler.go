package respond_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	respondBooking "github.com/m04kA/SMC-MarketplaceService/internal/usecase/respond_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnauthorized       = "требуется авторизация"
	msgInvalidBookingID   = "некорректный ID заявки"
	msgInvalidDecision    = "решение должно быть accepted или declined"
	msgBookingNotFound    = "заявка не найдена"
	msgAccessDenied       = "заявка адресована другому провайдеру"
	msgAlreadyResolved    = "по заявке уже принято решение"
	msgBookingExpired     = "окно ответа на заявку истекло"
)

type Handler struct {
	useCase RespondBookingUseCase
	logger  Logger
}

func NewHandler(useCase RespondBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{id}/respond
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	providerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	bookingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	var req RespondBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/%d/respond - Invalid request body: %v", bookingID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	decision := respondBooking.Decision(req.Decision)
	if decision != respondBooking.DecisionAccepted && decision != respondBooking.DecisionDeclined {
		h.logger.Warn("POST /bookings/%d/respond - Invalid decision: %s", bookingID, req.Decision)
		handlers.RespondBadRequest(w, msgInvalidDecision)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &respondBooking.Request{
		BookingID:  bookingID,
		ProviderID: providerID,
		Decision:   decision,
	})
	if err != nil {
		switch {
		case errors.Is(err, respondBooking.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/%d/respond - Booking not found", bookingID)
			handlers.RespondNotFound(w, msgBookingNotFound)

		case errors.Is(err, respondBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/%d/respond - Access denied: provider_id=%d", bookingID, providerID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, respondBooking.ErrBookingExpired):
			h.logger.Warn("POST /bookings/%d/respond - Booking expired", bookingID)
			handlers.RespondError(w, http.StatusGone, msgBookingExpired)

		case errors.Is(err, respondBooking.ErrInvalidState):
			h.logger.Warn("POST /bookings/%d/respond - Already resolved", bookingID)
			handlers.RespondConflict(w, msgAlreadyResolved)

		case errors.Is(err, respondBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings/%d/respond - Invalid input: %v", bookingID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /bookings/%d/respond - Failed: provider_id=%d, error=%v", bookingID, providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/%d/respond - Resolved as %s by provider_id=%d", bookingID, result.Status, providerID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
