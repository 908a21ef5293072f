package resolve_payout

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/infra/events"
	walletRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/wallet"
)

// UseCase use case обработки заявки на вывод средств администратором
type UseCase struct {
	walletRepo   WalletRepository
	events       EventPublisher
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	walletRepo WalletRepository,
	eventPublisher EventPublisher,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		walletRepo:   walletRepo,
		events:       eventPublisher,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute обрабатывает решение администратора по заявке. Одобрение переводит
// withdrawal-транзакцию в completed. Отклонение возвращает средства на баланс
// и пишет refund-транзакцию: после отклонения баланс кошелька равен балансу
// до запроса на вывод.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ResolvePayout: payout=%d, admin=%d, resolution=%s", req.PayoutID, req.AdminID, req.Resolution)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ResolvePayout: validation failed: %v", err)
		return nil, err
	}

	var payout *domain.PayoutRequest

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		p, err := uc.walletRepo.GetPayoutByID(txCtx, req.PayoutID)
		if err != nil {
			if errors.Is(err, walletRepo.ErrPayoutNotFound) {
				return ErrPayoutNotFound
			}
			return fmt.Errorf("%w: failed to get payout request: %v", ErrInternal, err)
		}

		if !p.IsPending() {
			return ErrInvalidState
		}

		to := domain.PayoutApproved
		if req.Resolution == ResolutionRejected {
			to = domain.PayoutRejected
		}

		// CAS pending -> approved/rejected: два администратора не могут
		// обработать одну заявку дважды.
		if err := uc.walletRepo.ResolvePayout(txCtx, p.ID, to); err != nil {
			if errors.Is(err, walletRepo.ErrStatusConflict) {
				return ErrInvalidState
			}
			return fmt.Errorf("%w: failed to resolve payout: %v", ErrInternal, err)
		}

		switch to {
		case domain.PayoutApproved:
			if err := uc.walletRepo.UpdateTransactionStatus(txCtx, p.TransactionID, domain.TxCompleted); err != nil {
				return fmt.Errorf("%w: failed to complete withdrawal: %v", ErrInternal, err)
			}
		case domain.PayoutRejected:
			if err := uc.walletRepo.UpdateTransactionStatus(txCtx, p.TransactionID, domain.TxFailed); err != nil {
				return fmt.Errorf("%w: failed to fail withdrawal: %v", ErrInternal, err)
			}
			if err := uc.walletRepo.CreditBalance(txCtx, p.WalletID, p.Amount); err != nil {
				return fmt.Errorf("%w: failed to return escrowed funds: %v", ErrInternal, err)
			}
			if _, err := uc.walletRepo.CreateTransaction(txCtx, &domain.Transaction{
				WalletID:    p.WalletID,
				Amount:      p.Amount,
				Type:        domain.TxRefund,
				Status:      domain.TxCompleted,
				Description: fmt.Sprintf("Payout request %d rejected", p.ID),
			}); err != nil {
				return fmt.Errorf("%w: failed to record refund: %v", ErrInternal, err)
			}
		}

		p.Status = to
		payout = p
		return nil
	})

	if err != nil {
		return nil, err
	}

	now := uc.timeProvider.Now()

	// Уведомление отправляется после фиксации транзакции, ошибка не влияет на результат
	if pubErr := uc.events.Publish(ctx, events.KeyPayoutResolved, &events.PayoutResolvedEvent{
		PayoutID:   payout.ID,
		WalletID:   payout.WalletID,
		Amount:     payout.Amount.String(),
		Status:     string(payout.Status),
		OccurredAt: now,
	}); pubErr != nil {
		uc.logger.Warn("ResolvePayout: failed to publish event for payout id=%d: %v", payout.ID, pubErr)
	}

	uc.logger.Info("ResolvePayout: payout id=%d resolved as %s", payout.ID, payout.Status)

	return &Response{
		PayoutID:    payout.ID,
		WalletID:    payout.WalletID,
		Amount:      payout.Amount,
		Status:      payout.Status,
		ProcessedAt: now,
	}, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.PayoutID <= 0 {
		return fmt.Errorf("%w: payoutID must be positive", ErrInvalidInput)
	}
	if req.Resolution != ResolutionApproved && req.Resolution != ResolutionRejected {
		return fmt.Errorf("%w: resolution must be approved or rejected", ErrInvalidInput)
	}
	return nil
}
