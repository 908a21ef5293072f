package resolve_payout

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	resolvePayout "github.com/m04kA/SMC-MarketplaceService/internal/usecase/resolve_payout"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnauthorized       = "требуется авторизация"
	msgInvalidPayoutID    = "некорректный ID заявки на вывод"
	msgInvalidResolution  = "решение должно быть approved или rejected"
	msgPayoutNotFound     = "заявка на вывод не найдена"
	msgAlreadyResolved    = "по заявке уже принято решение"
)

// ResolvePayoutRequest HTTP request model
type ResolvePayoutRequest struct {
	Resolution string `json:"resolution"` // approved | rejected
}

// ResolvePayoutResponse HTTP response model
type ResolvePayoutResponse struct {
	PayoutID    int64           `json:"payoutId"`
	WalletID    int64           `json:"walletId"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	ProcessedAt string          `json:"processedAt"`
}

type Handler struct {
	useCase ResolvePayoutUseCase
	logger  Logger
}

func NewHandler(useCase ResolvePayoutUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/payouts/{id}/resolve
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	payoutID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidPayoutID)
		return
	}

	var req ResolvePayoutRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /admin/payouts/%d/resolve - Invalid request body: %v", payoutID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resolution := resolvePayout.Resolution(req.Resolution)
	if resolution != resolvePayout.ResolutionApproved && resolution != resolvePayout.ResolutionRejected {
		h.logger.Warn("POST /admin/payouts/%d/resolve - Invalid resolution: %s", payoutID, req.Resolution)
		handlers.RespondBadRequest(w, msgInvalidResolution)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &resolvePayout.Request{
		PayoutID:   payoutID,
		AdminID:    adminID,
		Resolution: resolution,
	})
	if err != nil {
		switch {
		case errors.Is(err, resolvePayout.ErrPayoutNotFound):
			h.logger.Warn("POST /admin/payouts/%d/resolve - Payout not found", payoutID)
			handlers.RespondNotFound(w, msgPayoutNotFound)

		case errors.Is(err, resolvePayout.ErrInvalidState):
			h.logger.Warn("POST /admin/payouts/%d/resolve - Already resolved", payoutID)
			handlers.RespondConflict(w, msgAlreadyResolved)

		case errors.Is(err, resolvePayout.ErrInvalidInput):
			h.logger.Warn("POST /admin/payouts/%d/resolve - Invalid input: %v", payoutID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /admin/payouts/%d/resolve - Failed: admin_id=%d, error=%v", payoutID, adminID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/payouts/%d/resolve - Resolved as %s by admin_id=%d", payoutID, result.Status, adminID)
	handlers.RespondJSON(w, http.StatusOK, &ResolvePayoutResponse{
		PayoutID:    result.PayoutID,
		WalletID:    result.WalletID,
		Amount:      result.Amount,
		Status:      string(result.Status),
		ProcessedAt: result.ProcessedAt.Format(time.RFC3339),
	})
}
