package request_payout

import (
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	requestPayout "github.com/m04kA/SMC-MarketplaceService/internal/usecase/request_payout"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgUnauthorized        = "требуется авторизация"
	msgInvalidInput        = "некорректные параметры заявки на вывод"
	msgInsufficientBalance = "недостаточно средств для вывода"
)

// RequestPayoutRequest HTTP request model
type RequestPayoutRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	BankDetails string          `json:"bankDetails"`
}

// RequestPayoutResponse HTTP response model
type RequestPayoutResponse struct {
	PayoutID      int64           `json:"payoutId"`
	WalletID      int64           `json:"walletId"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	Balance       decimal.Decimal `json:"balance"`
	TransactionID int64           `json:"transactionId"`
	CreatedAt     string          `json:"createdAt"`
}

type Handler struct {
	useCase RequestPayoutUseCase
	logger  Logger
}

func NewHandler(useCase RequestPayoutUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/wallet/payouts
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req RequestPayoutRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /wallet/payouts - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &requestPayout.Request{
		UserID:      userID,
		Amount:      req.Amount,
		BankDetails: req.BankDetails,
	})
	if err != nil {
		switch {
		case errors.Is(err, requestPayout.ErrInvalidInput):
			h.logger.Warn("POST /wallet/payouts - Invalid input: user_id=%d: %v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, requestPayout.ErrInsufficientBalance):
			h.logger.Warn("POST /wallet/payouts - Insufficient balance: user_id=%d, amount=%s", userID, req.Amount)
			handlers.RespondUnprocessable(w, msgInsufficientBalance)

		default:
			h.logger.Error("POST /wallet/payouts - Failed: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /wallet/payouts - Payout requested: payout_id=%d, user_id=%d, amount=%s",
		result.PayoutID, userID, req.Amount)
	handlers.RespondJSON(w, http.StatusCreated, &RequestPayoutResponse{
		PayoutID:      result.PayoutID,
		WalletID:      result.WalletID,
		Amount:        result.Amount,
		Status:        result.Status,
		Balance:       result.Balance,
		TransactionID: result.TransactionID,
		CreatedAt:     result.CreatedAt.Format(time.RFC3339),
	})
}
