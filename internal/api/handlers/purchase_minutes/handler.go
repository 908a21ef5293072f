package purchase_minutes

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	purchaseMinutes "github.com/m04kA/SMC-MarketplaceService/internal/usecase/purchase_minutes"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnauthorized       = "требуется авторизация"
	msgInvalidInput       = "некорректные параметры покупки"
)

// PurchaseMinutesRequest HTTP request model
type PurchaseMinutesRequest struct {
	Minutes       int             `json:"minutes"`
	Price         decimal.Decimal `json:"price"`
	PaymentMethod string          `json:"paymentMethod"`
	Confirmed     bool            `json:"confirmed"`
}

// PurchaseMinutesResponse HTTP response model
type PurchaseMinutesResponse struct {
	WalletID              int64  `json:"walletId"`
	AvailableMinutes      int    `json:"availableMinutes"`
	TotalMinutesPurchased int    `json:"totalMinutesPurchased"`
	TransactionID         int64  `json:"transactionId"`
	TransactionStatus     string `json:"transactionStatus"`
}

type Handler struct {
	useCase PurchaseMinutesUseCase
	logger  Logger
}

func NewHandler(useCase PurchaseMinutesUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/wallet/minutes
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req PurchaseMinutesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /wallet/minutes - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &purchaseMinutes.Request{
		UserID:        userID,
		Minutes:       req.Minutes,
		Price:         req.Price,
		PaymentMethod: req.PaymentMethod,
		Confirmed:     req.Confirmed,
	})
	if err != nil {
		if errors.Is(err, purchaseMinutes.ErrInvalidInput) {
			h.logger.Warn("POST /wallet/minutes - Invalid input: user_id=%d: %v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)
			return
		}
		h.logger.Error("POST /wallet/minutes - Failed: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /wallet/minutes - Purchased %d minutes: user_id=%d, wallet_id=%d",
		req.Minutes, userID, result.WalletID)
	handlers.RespondJSON(w, http.StatusCreated, &PurchaseMinutesResponse{
		WalletID:              result.WalletID,
		AvailableMinutes:      result.AvailableMinutes,
		TotalMinutesPurchased: result.TotalMinutesPurchased,
		TransactionID:         result.TransactionID,
		TransactionStatus:     result.TransactionStatus,
	})
}
