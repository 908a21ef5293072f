package request_payout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	walletRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/wallet"
)

// Request модель запроса на вывод средств
type Request struct {
	UserID      int64           // ID провайдера
	Amount      decimal.Decimal // Сумма вывода
	BankDetails string          // Банковские реквизиты
}

// Response модель ответа с созданной заявкой на вывод
type Response struct {
	PayoutID      int64
	WalletID      int64
	Amount        decimal.Decimal
	Status        string
	Balance       decimal.Decimal // Баланс после эскроу-списания
	TransactionID int64
	CreatedAt     time.Time
}

// UseCase use case запроса на вывод средств. Эскроу-семантика: средства
// покидают доступный баланс в момент запроса, до решения администратора.
type UseCase struct {
	walletRepo WalletRepository
	txManager  TransactionManager
	logger     Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(walletRepo WalletRepository, txManager TransactionManager, logger Logger) *UseCase {
	return &UseCase{
		walletRepo: walletRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

// Execute создает заявку на вывод: списание баланса, withdrawal-транзакция
// и заявка пишутся одной атомарной единицей. Конкурентные запросы по одному
// кошельку сериализуются блокировкой строки и условным декрементом — два
// запроса не могут пройти проверку по одному и тому же устаревшему балансу.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RequestPayout: user=%d, amount=%s", req.UserID, req.Amount)

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RequestPayout: validation failed: %v", err)
		return nil, err
	}

	var (
		wallet *domain.Wallet
		tx     *domain.Transaction
		payout *domain.PayoutRequest
	)

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		w, err := uc.walletRepo.GetOrCreateByUserID(txCtx, req.UserID)
		if err != nil {
			return fmt.Errorf("%w: failed to get wallet: %v", ErrInternal, err)
		}

		if _, err := uc.walletRepo.GetByIDForUpdate(txCtx, w.ID); err != nil {
			return fmt.Errorf("%w: failed to lock wallet: %v", ErrInternal, err)
		}

		// Условное списание: balance = balance - amount WHERE balance >= amount
		if err := uc.walletRepo.DebitBalance(txCtx, w.ID, req.Amount); err != nil {
			if errors.Is(err, walletRepo.ErrInsufficientBalance) {
				return ErrInsufficientBalance
			}
			return fmt.Errorf("%w: failed to debit balance: %v", ErrInternal, err)
		}

		tx, err = uc.walletRepo.CreateTransaction(txCtx, &domain.Transaction{
			WalletID:    w.ID,
			Amount:      req.Amount,
			Type:        domain.TxWithdrawal,
			Status:      domain.TxPending,
			Description: "Payout request",
		})
		if err != nil {
			return fmt.Errorf("%w: failed to record withdrawal: %v", ErrInternal, err)
		}

		payout, err = uc.walletRepo.CreatePayoutRequest(txCtx, &domain.PayoutRequest{
			WalletID:      w.ID,
			Amount:        req.Amount,
			Status:        domain.PayoutPending,
			BankDetails:   req.BankDetails,
			TransactionID: tx.ID,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to create payout request: %v", ErrInternal, err)
		}

		wallet, err = uc.walletRepo.GetByIDForUpdate(txCtx, w.ID)
		if err != nil {
			return fmt.Errorf("%w: failed to reread wallet: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("RequestPayout: payout id=%d created for wallet id=%d, escrowed %s",
		payout.ID, wallet.ID, req.Amount)

	return &Response{
		PayoutID:      payout.ID,
		WalletID:      wallet.ID,
		Amount:        payout.Amount,
		Status:        string(payout.Status),
		Balance:       wallet.Balance,
		TransactionID: tx.ID,
		CreatedAt:     payout.CreatedAt,
	}, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if req.BankDetails == "" {
		return fmt.Errorf("%w: bankDetails are required", ErrInvalidInput)
	}
	if len(req.BankDetails) > domain.MaxBankDetailsLength {
		return fmt.Errorf("%w: bankDetails exceed %d characters", ErrInvalidInput, domain.MaxBankDetailsLength)
	}
	return nil
}
