package complete_session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	sessionRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/session"
	walletRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/wallet"
)

// Request модель запроса на завершение сессии
type Request struct {
	SessionID int64 // ID сессии
	ActorID   int64 // клиент или провайдер сессии
}

// Response модель ответа с итогами завершения
type Response struct {
	SessionID      int64
	Status         string
	EndedAt        time.Time
	MinutesUsed    int
	ProviderEarned decimal.Decimal
}

// UseCase use case завершения сессии: фиксация конца, списание минут клиента
// и начисление заработка провайдеру — одна атомарная единица
type UseCase struct {
	sessionRepo  SessionRepository
	bookingRepo  BookingRepository
	walletRepo   WalletRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	sessionRepo SessionRepository,
	bookingRepo BookingRepository,
	walletRepo WalletRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		sessionRepo:  sessionRepo,
		bookingRepo:  bookingRepo,
		walletRepo:   walletRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute завершает сессию
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CompleteSession: session=%d, actor=%d", req.SessionID, req.ActorID)

	if req.SessionID <= 0 || req.ActorID <= 0 {
		return nil, fmt.Errorf("%w: sessionID and actorID must be positive", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	var (
		session     *domain.Session
		minutesUsed int
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

		// Завершить сессию может любая из её сторон
		if session.ClientID != req.ActorID && session.ProviderID != req.ActorID {
			return ErrAccessDenied
		}

		if !session.CanBeCompleted() {
			return ErrInvalidState
		}

		// 1. Фиксируем фактический конец сессии
		if err := uc.sessionRepo.Complete(txCtx, session.ID, now); err != nil {
			if errors.Is(err, sessionRepo.ErrStatusConflict) {
				return ErrInvalidState
			}
			return fmt.Errorf("%w: failed to complete session: %v", ErrInternal, err)
		}

		// 2. Заявка переходит confirmed -> completed
		if err := uc.bookingRepo.UpdateStatusFrom(txCtx, session.BookingID, domain.BookingConfirmed, domain.BookingCompleted); err != nil {
			return fmt.Errorf("%w: failed to complete booking: %v", ErrInternal, err)
		}

		// 3. Списываем минуты клиента по фактической длительности.
		// Округление вверх: начатая минута считается использованной.
		minutesUsed = int(now.Sub(session.StartTime).Minutes())
		if now.Sub(session.StartTime)%time.Minute != 0 {
			minutesUsed++
		}
		if minutesUsed < 1 {
			minutesUsed = 1
		}

		clientWallet, err := uc.walletRepo.GetOrCreateByUserID(txCtx, session.ClientID)
		if err != nil {
			return fmt.Errorf("%w: failed to get client wallet: %v", ErrInternal, err)
		}
		if _, err := uc.walletRepo.GetByIDForUpdate(txCtx, clientWallet.ID); err != nil {
			return fmt.Errorf("%w: failed to lock client wallet: %v", ErrInternal, err)
		}

		if err := uc.walletRepo.ConsumeMinutes(txCtx, clientWallet.ID, minutesUsed); err != nil {
			if errors.Is(err, walletRepo.ErrInsufficientMinutes) {
				// Fail-closed: сессия не может потребить больше минут,
				// чем доступно — транзакция откатывается целиком
				return ErrInsufficientMinutes
			}
			return fmt.Errorf("%w: failed to consume minutes: %v", ErrInternal, err)
		}

		ratePerMinute := decimal.Zero
		if session.Price.IsPositive() && minutesUsed > 0 {
			ratePerMinute = session.Price.DivRound(decimal.NewFromInt(int64(minutesUsed)), 4)
		}

		if _, err := uc.walletRepo.CreateMinuteUsage(txCtx, &domain.MinuteUsage{
			WalletID:      clientWallet.ID,
			SessionID:     session.ID,
			Minutes:       minutesUsed,
			RatePerMinute: ratePerMinute,
		}); err != nil {
			return fmt.Errorf("%w: failed to record minute usage: %v", ErrInternal, err)
		}

		// 4. Начисляем заработок провайдеру: цена сессии, зафиксированная
		// при принятии заявки
		providerWallet, err := uc.walletRepo.GetOrCreateByUserID(txCtx, session.ProviderID)
		if err != nil {
			return fmt.Errorf("%w: failed to get provider wallet: %v", ErrInternal, err)
		}
		if _, err := uc.walletRepo.GetByIDForUpdate(txCtx, providerWallet.ID); err != nil {
			return fmt.Errorf("%w: failed to lock provider wallet: %v", ErrInternal, err)
		}

		if err := uc.walletRepo.CreditBalance(txCtx, providerWallet.ID, session.Price); err != nil {
			return fmt.Errorf("%w: failed to credit provider: %v", ErrInternal, err)
		}

		if _, err := uc.walletRepo.CreateTransaction(txCtx, &domain.Transaction{
			WalletID:    providerWallet.ID,
			Amount:      session.Price,
			Type:        domain.TxEarning,
			Status:      domain.TxCompleted,
			Description: fmt.Sprintf("Earning for session #%d", session.ID),
		}); err != nil {
			return fmt.Errorf("%w: failed to record earning: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CompleteSession: session id=%d completed, minutes=%d, earned=%s",
		session.ID, minutesUsed, session.Price)

	return &Response{
		SessionID:      session.ID,
		Status:         string(domain.SessionCompleted),
		EndedAt:        now,
		MinutesUsed:    minutesUsed,
		ProviderEarned: session.Price,
	}, nil
}
