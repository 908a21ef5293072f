package complete_session

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	completeSession "github.com/m04kA/SMC-MarketplaceService/internal/usecase/complete_session"
)

const (
	msgUnauthorized        = "требуется авторизация"
	msgInvalidSessionID    = "некорректный ID сессии"
	msgSessionNotFound     = "сессия не найдена"
	msgAccessDenied        = "нет доступа к сессии"
	msgCannotComplete      = "сессия не может быть завершена"
	msgInsufficientMinutes = "недостаточно минут для оплаты сессии"
)

// CompleteSessionResponse HTTP response model
type CompleteSessionResponse struct {
	SessionID      int64           `json:"sessionId"`
	Status         string          `json:"status"`
	EndedAt        string          `json:"endedAt"`
	MinutesUsed    int             `json:"minutesUsed"`
	ProviderEarned decimal.Decimal `json:"providerEarned"`
}

type Handler struct {
	useCase CompleteSessionUseCase
	logger  Logger
}

func NewHandler(useCase CompleteSessionUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/sessions/{id}/complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	sessionID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidSessionID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &completeSession.Request{
		SessionID: sessionID,
		ActorID:   userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, completeSession.ErrSessionNotFound):
			h.logger.Warn("POST /sessions/%d/complete - Session not found", sessionID)
			handlers.RespondNotFound(w, msgSessionNotFound)

		case errors.Is(err, completeSession.ErrAccessDenied):
			h.logger.Warn("POST /sessions/%d/complete - Access denied: user_id=%d", sessionID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, completeSession.ErrInvalidState):
			h.logger.Warn("POST /sessions/%d/complete - Cannot complete", sessionID)
			handlers.RespondConflict(w, msgCannotComplete)

		case errors.Is(err, completeSession.ErrInsufficientMinutes):
			h.logger.Warn("POST /sessions/%d/complete - Insufficient minutes: user_id=%d", sessionID, userID)
			handlers.RespondUnprocessable(w, msgInsufficientMinutes)

		default:
			h.logger.Error("POST /sessions/%d/complete - Failed: user_id=%d, error=%v", sessionID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /sessions/%d/complete - Completed by user_id=%d, minutes_used=%d",
		sessionID, userID, result.MinutesUsed)
	handlers.RespondJSON(w, http.StatusOK, &CompleteSessionResponse{
		SessionID:      result.SessionID,
		Status:         result.Status,
		EndedAt:        result.EndedAt.Format(time.RFC3339),
		MinutesUsed:    result.MinutesUsed,
		ProviderEarned: result.ProviderEarned,
	})
}
