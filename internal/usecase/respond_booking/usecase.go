package respond_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
)

// UseCase use case ответа провайдера на заявку
type UseCase struct {
	bookingRepo  BookingRepository
	sessionRepo  SessionRepository
	publisher    EventPublisher
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	sessionRepo SessionRepository,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		sessionRepo:  sessionRepo,
		publisher:    publisher,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет ответ провайдера. Перевод статуса и создание сессии —
// одна сериализуемая транзакция: из двух конкурентных ответов побеждает
// первый закоммиченный, второй получает ErrInvalidState.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RespondBooking: booking=%d, provider=%d, decision=%s", req.BookingID, req.ProviderID, req.Decision)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RespondBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	var (
		booking *domain.BookingRequest
		session *domain.Session
	)

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. Получаем заявку с блокировкой строки
		var err error
		booking, err = uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		// 2. Отвечать может только провайдер, которому адресована заявка
		if booking.ProviderID != req.ProviderID {
			return ErrAccessDenied
		}

		// 3. Ленивая проверка истечения: просроченную pending-заявку
		// переводим в expired вместо применения ответа
		if booking.PendingExpired(now) {
			if err := uc.bookingRepo.UpdateStatusFrom(txCtx, booking.ID, domain.BookingPending, domain.BookingExpired); err != nil {
				return fmt.Errorf("%w: failed to expire booking: %v", ErrInternal, err)
			}
			return ErrBookingExpired
		}

		if !booking.CanBeResponded() {
			return ErrInvalidState
		}

		// 4. CAS-переход из pending: гонка конкурентных ответов закрывается здесь
		target := domain.BookingAccepted
		if req.Decision == DecisionDeclined {
			target = domain.BookingDeclined
		}

		if err := uc.bookingRepo.Respond(txCtx, booking.ID, target, now); err != nil {
			if errors.Is(err, bookingRepo.ErrStatusConflict) {
				return ErrInvalidState
			}
			return fmt.Errorf("%w: failed to respond: %v", ErrInternal, err)
		}

		booking.Status = target
		booking.RespondedAt = &now

		if req.Decision == DecisionDeclined {
			return nil
		}

		// 5. При принятии создаём сессию в той же транзакции.
		// Для instant-заявки без слота эффективное начало — сейчас.
		startTime := now
		if booking.RequestedTime != nil && booking.RequestedTime.After(now) {
			startTime = *booking.RequestedTime
		}
		endTime := startTime.Add(time.Duration(booking.DurationMinutes) * time.Minute)

		session, err = uc.sessionRepo.Create(txCtx, &domain.Session{
			BookingID:  booking.ID,
			ClientID:   booking.ClientID,
			ProviderID: booking.ProviderID,
			Status:     sessionStatusFor(booking),
			StartTime:  startTime,
			EndTime:    &endTime,
			Price:      booking.Price, // копия цены заявки, больше не пересчитывается
		})
		if err != nil {
			return fmt.Errorf("%w: failed to create session: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("RespondBooking: booking id=%d resolved as %s", booking.ID, booking.Status)

	// 6. Уведомление после коммита, fire-and-forget
	eventKey := events.KeyBookingAccepted
	if req.Decision == DecisionDeclined {
		eventKey = events.KeyBookingDeclined
	}
	if err := uc.publisher.Publish(ctx, eventKey, events.BookingEvent{
		BookingID:  booking.ID,
		ClientID:   booking.ClientID,
		ProviderID: booking.ProviderID,
		ServiceID:  booking.ServiceID,
		Status:     string(booking.Status),
		IsInstant:  booking.IsInstant,
		OccurredAt: now,
	}); err != nil {
		uc.logger.Warn("RespondBooking: failed to publish event for booking id=%d: %v", booking.ID, err)
	}

	resp := &Response{
		BookingID:   booking.ID,
		Status:      string(booking.Status),
		RespondedAt: now,
	}

	if session != nil {
		resp.Session = &SessionInfo{
			ID:        session.ID,
			Status:    string(session.Status),
			StartTime: session.StartTime,
			EndTime:   *session.EndTime,
			Price:     session.Price,
		}
	}

	return resp, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}
	if req.Decision != DecisionAccepted && req.Decision != DecisionDeclined {
		return fmt.Errorf("%w: decision must be accepted or declined", ErrInvalidInput)
	}
	return nil
}
