package request_payout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	walletRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/wallet"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

// rollbackTxManager имитирует откат: при ошибке fn восстанавливает кошелёк
// до снимка, как это сделала бы настоящая транзакция БД
type rollbackTxManager struct {
	repo *fakeWalletRepo
}

func (m *rollbackTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := *m.repo.wallet
	txs := len(m.repo.transactions)
	payouts := len(m.repo.payouts)
	if err := fn(ctx); err != nil {
		*m.repo.wallet = snapshot
		m.repo.transactions = m.repo.transactions[:txs]
		m.repo.payouts = m.repo.payouts[:payouts]
		return err
	}
	return nil
}

type fakeWalletRepo struct {
	wallet       *domain.Wallet
	transactions []*domain.Transaction
	payouts      []*domain.PayoutRequest
}

func (r *fakeWalletRepo) GetOrCreateByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	return r.wallet, nil
}

func (r *fakeWalletRepo) GetByIDForUpdate(ctx context.Context, walletID int64) (*domain.Wallet, error) {
	return r.wallet, nil
}

func (r *fakeWalletRepo) DebitBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error {
	if r.wallet.Balance.LessThan(amount) {
		return walletRepo.ErrInsufficientBalance
	}
	r.wallet.Balance = r.wallet.Balance.Sub(amount)
	return nil
}

func (r *fakeWalletRepo) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	tx.ID = int64(len(r.transactions) + 1)
	r.transactions = append(r.transactions, tx)
	return tx, nil
}

func (r *fakeWalletRepo) CreatePayoutRequest(ctx context.Context, p *domain.PayoutRequest) (*domain.PayoutRequest, error) {
	p.ID = int64(len(r.payouts) + 1)
	r.payouts = append(r.payouts, p)
	return p, nil
}

func newTestUseCase(repo *fakeWalletRepo) *UseCase {
	return NewUseCase(repo, &rollbackTxManager{repo: repo}, nopLogger{})
}

func TestExecute_EscrowsFunds(t *testing.T) {
	repo := &fakeWalletRepo{
		wallet: &domain.Wallet{ID: 1, UserID: 42, Balance: decimal.NewFromInt(500)},
	}
	uc := newTestUseCase(repo)

	resp, err := uc.Execute(context.Background(), &Request{
		UserID:      42,
		Amount:      decimal.NewFromInt(200),
		BankDetails: "ZANACO 0123456789",
	})
	require.NoError(t, err)

	// Средства покидают баланс в момент запроса, до решения администратора
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(300)), "balance = %s", resp.Balance)
	assert.Equal(t, string(domain.PayoutPending), resp.Status)

	// Withdrawal-транзакция записана как pending и связана с заявкой
	require.Len(t, repo.transactions, 1)
	tx := repo.transactions[0]
	assert.Equal(t, domain.TxWithdrawal, tx.Type)
	assert.Equal(t, domain.TxPending, tx.Status)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(200)))

	require.Len(t, repo.payouts, 1)
	assert.Equal(t, tx.ID, repo.payouts[0].TransactionID)
	assert.Equal(t, resp.TransactionID, tx.ID)
}

func TestExecute_InsufficientBalanceLeavesNoTrace(t *testing.T) {
	repo := &fakeWalletRepo{
		wallet: &domain.Wallet{ID: 1, UserID: 42, Balance: decimal.NewFromInt(100)},
	}
	uc := newTestUseCase(repo)

	_, err := uc.Execute(context.Background(), &Request{
		UserID:      42,
		Amount:      decimal.NewFromInt(200),
		BankDetails: "ZANACO 0123456789",
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Отказ полный: баланс не тронут, журнал и заявки пусты
	assert.True(t, repo.wallet.Balance.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, repo.transactions)
	assert.Empty(t, repo.payouts)
}

func TestExecute_Validation(t *testing.T) {
	repo := &fakeWalletRepo{wallet: &domain.Wallet{ID: 1, Balance: decimal.NewFromInt(100)}}
	uc := newTestUseCase(repo)

	tests := []struct {
		name string
		req  *Request
	}{
		{"zero amount", &Request{UserID: 1, Amount: decimal.Zero, BankDetails: "x"}},
		{"negative amount", &Request{UserID: 1, Amount: decimal.NewFromInt(-5), BankDetails: "x"}},
		{"missing bank details", &Request{UserID: 1, Amount: decimal.NewFromInt(10)}},
		{"bad user", &Request{UserID: 0, Amount: decimal.NewFromInt(10), BankDetails: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	assert.Empty(t, repo.transactions)
}
