package purchase_minutes

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("purchase_minutes: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("purchase_minutes: internal error")
)

// Request модель запроса на покупку минут
type Request struct {
	UserID        int64           // ID покупателя
	Minutes       int             // Количество покупаемых минут
	Price         decimal.Decimal // Сумма покупки в ZMW
	PaymentMethod string          // Платёжный метод (mobile money, карта и т.п.)
	Confirmed     bool            // Подтверждена ли оплата платёжным шлюзом
}

// Response модель ответа с обновлёнными счётчиками
type Response struct {
	WalletID              int64
	AvailableMinutes      int
	TotalMinutesPurchased int
	TransactionID         int64
	TransactionStatus     string
}

// UseCase use case покупки минутных кредитов
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

// Execute зачисляет купленные минуты и пишет purchase-транзакцию одной
// атомарной единицей. Статус транзакции отражает подтверждение шлюза:
// pending до внешнего подтверждения, completed после.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("PurchaseMinutes: user=%d, minutes=%d, price=%s, method=%s",
		req.UserID, req.Minutes, req.Price, req.PaymentMethod)

	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}
	if req.Minutes <= 0 {
		return nil, fmt.Errorf("%w: minutes must be positive", ErrInvalidInput)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	var (
		wallet *domain.Wallet
		tx     *domain.Transaction
	)

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		w, err := uc.walletRepo.GetOrCreateByUserID(txCtx, req.UserID)
		if err != nil {
			return fmt.Errorf("%w: failed to get wallet: %v", ErrInternal, err)
		}

		// Блокируем кошелёк: конкурентные покупки сериализуются на строке
		if _, err := uc.walletRepo.GetByIDForUpdate(txCtx, w.ID); err != nil {
			return fmt.Errorf("%w: failed to lock wallet: %v", ErrInternal, err)
		}

		if err := uc.walletRepo.AddMinutes(txCtx, w.ID, req.Minutes); err != nil {
			return fmt.Errorf("%w: failed to add minutes: %v", ErrInternal, err)
		}

		status := domain.TxPending
		if req.Confirmed {
			status = domain.TxCompleted
		}

		tx, err = uc.walletRepo.CreateTransaction(txCtx, &domain.Transaction{
			WalletID:    w.ID,
			Amount:      req.Price,
			Type:        domain.TxPurchase,
			Status:      status,
			Description: fmt.Sprintf("Purchase of %d minutes via %s", req.Minutes, req.PaymentMethod),
		})
		if err != nil {
			return fmt.Errorf("%w: failed to record purchase: %v", ErrInternal, err)
		}

		// Перечитываем счётчики после зачисления
		wallet, err = uc.walletRepo.GetByIDForUpdate(txCtx, w.ID)
		if err != nil {
			return fmt.Errorf("%w: failed to reread wallet: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("PurchaseMinutes: wallet id=%d credited %d minutes, tx id=%d", wallet.ID, req.Minutes, tx.ID)

	return &Response{
		WalletID:              wallet.ID,
		AvailableMinutes:      wallet.AvailableMinutes,
		TotalMinutesPurchased: wallet.TotalMinutesPurchased,
		TransactionID:         tx.ID,
		TransactionStatus:     string(tx.Status),
	}, nil
}
