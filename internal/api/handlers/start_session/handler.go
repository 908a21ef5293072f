package start_session

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	startSession "github.com/m04kA/SMC-MarketplaceService/internal/usecase/start_session"
)

const (
	msgUnauthorized     = "требуется авторизация"
	msgInvalidSessionID = "некорректный ID сессии"
	msgSessionNotFound  = "сессия не найдена"
	msgAccessDenied     = "нет доступа к сессии"
	msgCannotStart      = "сессия не может быть начата"
	msgWindowExpired    = "окно подключения к сессии истекло"
)

// StartSessionResponse HTTP response model
type StartSessionResponse struct {
	SessionID     int64  `json:"sessionId"`
	BookingID     int64  `json:"bookingId"`
	Status        string `json:"status"`
	BookingStatus string `json:"bookingStatus"`
	StartedAt     string `json:"startedAt"`
}

type Handler struct {
	useCase StartSessionUseCase
	logger  Logger
}

func NewHandler(useCase StartSessionUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/sessions/{id}/start
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

	result, err := h.useCase.Execute(r.Context(), &startSession.Request{
		SessionID: sessionID,
		ClientID:  userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, startSession.ErrSessionNotFound):
			h.logger.Warn("POST /sessions/%d/start - Session not found", sessionID)
			handlers.RespondNotFound(w, msgSessionNotFound)

		case errors.Is(err, startSession.ErrAccessDenied):
			h.logger.Warn("POST /sessions/%d/start - Access denied: user_id=%d", sessionID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, startSession.ErrWindowExpired):
			h.logger.Warn("POST /sessions/%d/start - Accepted window expired", sessionID)
			handlers.RespondError(w, http.StatusGone, msgWindowExpired)

		case errors.Is(err, startSession.ErrInvalidState):
			h.logger.Warn("POST /sessions/%d/start - Cannot start", sessionID)
			handlers.RespondConflict(w, msgCannotStart)

		default:
			h.logger.Error("POST /sessions/%d/start - Failed: user_id=%d, error=%v", sessionID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /sessions/%d/start - Started by user_id=%d", sessionID, userID)
	handlers.RespondJSON(w, http.StatusOK, &StartSessionResponse{
		SessionID:     result.SessionID,
		BookingID:     result.BookingID,
		Status:        result.Status,
		BookingStatus: result.BookingStatus,
		StartedAt:     result.StartedAt.Format(time.RFC3339),
	})
}
