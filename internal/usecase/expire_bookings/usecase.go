package expire_bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
)

// Result итог одного прохода фоновой очистки
type Result struct {
	ExpiredPending  int64 // pending-заявки с истёкшим окном ответа
	ExpiredAccepted int64 // accepted-заявки с истёкшим окном подтверждения
}

// UseCase фоновая очистка просроченных заявок. Прогон идемпотентен:
// повторный запуск над теми же данными ничего не меняет, пустой
// результат — такой же успех, как и непустой.
type UseCase struct {
	bookingRepo  BookingRepository
	sessionRepo  SessionRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	sessionRepo SessionRepository,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		sessionRepo:  sessionRepo,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute переводит просроченные заявки в expired. Pending-заявки с
// истёкшим окном ответа закрываются одним set-based UPDATE. Accepted-заявки,
// у которых клиент не подтвердил начало в отведённое окно, переводятся
// по одной с CAS-защитой, вместе с отменой созданной при accept сессии.
func (uc *UseCase) Execute(ctx context.Context) (*Result, error) {
	now := uc.timeProvider.Now()
	result := &Result{}

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		expired, err := uc.bookingRepo.ExpirePending(txCtx, now)
		if err != nil {
			return fmt.Errorf("%w: failed to expire pending bookings: %v", ErrInternal, err)
		}
		result.ExpiredPending = expired

		lapsed, err := uc.bookingRepo.GetLapsedAccepted(txCtx, now)
		if err != nil {
			return fmt.Errorf("%w: failed to list lapsed accepted bookings: %v", ErrInternal, err)
		}

		for _, b := range lapsed {
			if err := uc.bookingRepo.UpdateStatusFrom(txCtx, b.ID, domain.BookingAccepted, domain.BookingExpired); err != nil {
				// Заявку успели подтвердить или отменить между выборкой и
				// переходом, для очистки это не ошибка.
				if errors.Is(err, bookingRepo.ErrStatusConflict) || errors.Is(err, bookingRepo.ErrBookingNotFound) {
					continue
				}
				return fmt.Errorf("%w: failed to expire booking id=%d: %v", ErrInternal, b.ID, err)
			}
			if err := uc.sessionRepo.CancelByBookingID(txCtx, b.ID); err != nil {
				return fmt.Errorf("%w: failed to cancel session for booking id=%d: %v", ErrInternal, b.ID, err)
			}
			result.ExpiredAccepted++
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	if result.ExpiredPending > 0 || result.ExpiredAccepted > 0 {
		uc.logger.Info("ExpireBookings: expired %d pending, %d accepted", result.ExpiredPending, result.ExpiredAccepted)
	}

	return result, nil
}
