package start_session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	sessionRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/session"
)

// Request модель запроса на начало сессии
type Request struct {
	SessionID int64 // ID сессии
	ClientID  int64 // ID клиента (из identity-сервиса)
}

// Response модель ответа с обновлённой сессией
type Response struct {
	SessionID     int64
	BookingID     int64
	Status        string
	StartedAt     time.Time
	BookingStatus string
}

// UseCase use case присоединения клиента к принятой сессии
type UseCase struct {
	sessionRepo  SessionRepository
	bookingRepo  BookingRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	sessionRepo SessionRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		sessionRepo:  sessionRepo,
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute начинает сессию: заявка переходит accepted -> confirmed, сессия —
// в in_progress. Право на подключение переоценивается по формуле окна
// принятия на момент вызова.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("StartSession: session=%d, client=%d", req.SessionID, req.ClientID)

	if req.SessionID <= 0 || req.ClientID <= 0 {
		return nil, fmt.Errorf("%w: sessionID and clientID must be positive", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	var (
		session *domain.Session
		booking *domain.BookingRequest
	)

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		var err error
		session, err = uc.sessionRepo.GetByID(txCtx, req.SessionID)
		if err != nil {
			if errors.Is(err, sessionRepo.ErrSessionNotFound) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("%w: failed to get session: %v", ErrInternal, err)
		}

		if session.ClientID != req.ClientID {
			return ErrAccessDenied
		}

		if !session.CanBeStarted() {
			return ErrInvalidState
		}

		booking, err = uc.bookingRepo.GetByID(txCtx, session.BookingID)
		if err != nil {
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		if booking.Status != domain.BookingAccepted {
			return ErrInvalidState
		}

		// Окно подключения истекло: фиксируем истечение вместо старта
		if booking.AcceptedWindowLapsed(now) {
			if err := uc.bookingRepo.UpdateStatusFrom(txCtx, booking.ID, domain.BookingAccepted, domain.BookingExpired); err != nil {
				return fmt.Errorf("%w: failed to expire booking: %v", ErrInternal, err)
			}
			if err := uc.sessionRepo.CancelByBookingID(txCtx, booking.ID); err != nil {
				return fmt.Errorf("%w: failed to cancel session: %v", ErrInternal, err)
			}
			return ErrWindowExpired
		}

		if err := uc.bookingRepo.UpdateStatusFrom(txCtx, booking.ID, domain.BookingAccepted, domain.BookingConfirmed); err != nil {
			return fmt.Errorf("%w: failed to confirm booking: %v", ErrInternal, err)
		}

		startable := []domain.SessionStatus{domain.SessionScheduled, domain.SessionInquiry}
		if err := uc.sessionRepo.UpdateStatusFrom(txCtx, session.ID, startable, domain.SessionInProgress); err != nil {
			if errors.Is(err, sessionRepo.ErrStatusConflict) {
				return ErrInvalidState
			}
			return fmt.Errorf("%w: failed to start session: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("StartSession: session id=%d started, booking id=%d confirmed", session.ID, booking.ID)

	return &Response{
		SessionID:     session.ID,
		BookingID:     booking.ID,
		Status:        string(domain.SessionInProgress),
		StartedAt:     now,
		BookingStatus: string(domain.BookingConfirmed),
	}, nil
}
