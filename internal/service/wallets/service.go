package wallets

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-MarketplaceService/internal/service/wallets/models"
)

// Service сервис для чтения состояния кошельков и журнала операций
type Service struct {
	walletRepo WalletRepository
	logger     Logger
}

// NewService создает новый экземпляр сервиса кошельков
func NewService(walletRepo WalletRepository, logger Logger) *Service {
	return &Service{
		walletRepo: walletRepo,
		logger:     logger,
	}
}

// GetWallet получает кошелёк пользователя, создавая его при первом обращении
func (s *Service) GetWallet(ctx context.Context, userID int64) (*models.WalletResponse, error) {
	s.logger.Info("GetWallet: fetching wallet for user=%d", userID)

	wallet, err := s.walletRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("GetWallet: repository error for user=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: GetWallet - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainWallet(wallet), nil
}

// GetHistory получает журнал операций и заявки на вывод по кошельку
// пользователя. Журнал append-only: записи никогда не изменяются и не
// удаляются, сумма по журналу объясняет текущий баланс.
func (s *Service) GetHistory(ctx context.Context, userID int64) (*models.HistoryResponse, error) {
	s.logger.Info("GetHistory: fetching wallet history for user=%d", userID)

	wallet, err := s.walletRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("GetHistory: repository error for user=%d: %v", userID, err)
		return nil, fmt.Errorf("%w: GetHistory - repository error: %v", ErrInternal, err)
	}

	transactions, err := s.walletRepo.ListTransactions(ctx, wallet.ID)
	if err != nil {
		s.logger.Error("GetHistory: failed to list transactions for wallet=%d: %v", wallet.ID, err)
		return nil, fmt.Errorf("%w: GetHistory - failed to list transactions: %v", ErrInternal, err)
	}

	payouts, err := s.walletRepo.ListPayouts(ctx, wallet.ID)
	if err != nil {
		s.logger.Error("GetHistory: failed to list payouts for wallet=%d: %v", wallet.ID, err)
		return nil, fmt.Errorf("%w: GetHistory - failed to list payouts: %v", ErrInternal, err)
	}

	s.logger.Info("GetHistory: wallet=%d has %d transactions, %d payouts", wallet.ID, len(transactions), len(payouts))

	return &models.HistoryResponse{
		WalletID:     wallet.ID,
		Transactions: models.FromDomainTransactions(transactions),
		Payouts:      models.FromDomainPayouts(payouts),
	}, nil
}
