package resolve_payout

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/infra/events"
	walletRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/wallet"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeTxManager struct{}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePublisher struct {
	keys []string
}

func (p *fakePublisher) Publish(ctx context.Context, key string, event interface{}) error {
	p.keys = append(p.keys, key)
	return nil
}

type fakeWalletRepo struct {
	payout     *domain.PayoutRequest
	balance    decimal.Decimal
	txStatuses map[int64]domain.TransactionStatus
	refunds    []*domain.Transaction
}

func (r *fakeWalletRepo) GetPayoutByID(ctx context.Context, id int64) (*domain.PayoutRequest, error) {
	if r.payout == nil || r.payout.ID != id {
		return nil, walletRepo.ErrPayoutNotFound
	}
	p := *r.payout
	return &p, nil
}

func (r *fakeWalletRepo) ResolvePayout(ctx context.Context, id int64, to domain.PayoutStatus) error {
	if r.payout.Status != domain.PayoutPending {
		return walletRepo.ErrStatusConflict
	}
	r.payout.Status = to
	return nil
}

func (r *fakeWalletRepo) CreditBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error {
	r.balance = r.balance.Add(amount)
	return nil
}

func (r *fakeWalletRepo) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	tx.ID = 1000
	r.refunds = append(r.refunds, tx)
	return tx, nil
}

func (r *fakeWalletRepo) UpdateTransactionStatus(ctx context.Context, txID int64, status domain.TransactionStatus) error {
	r.txStatuses[txID] = status
	return nil
}

func pendingPayout() *domain.PayoutRequest {
	return &domain.PayoutRequest{
		ID:            5,
		WalletID:      1,
		Amount:        decimal.NewFromInt(200),
		Status:        domain.PayoutPending,
		TransactionID: 9,
	}
}

func newTestUseCase(repo *fakeWalletRepo, pub *fakePublisher, now time.Time) *UseCase {
	return NewUseCase(repo, pub, fakeTxManager{}, &fakeClock{now: now}, nopLogger{})
}

func TestExecute_Approve(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	repo := &fakeWalletRepo{
		payout:     pendingPayout(),
		balance:    decimal.NewFromInt(300), // баланс после эскроу-списания
		txStatuses: map[int64]domain.TransactionStatus{},
	}
	pub := &fakePublisher{}
	uc := newTestUseCase(repo, pub, now)

	resp, err := uc.Execute(context.Background(), &Request{PayoutID: 5, AdminID: 1, Resolution: ResolutionApproved})
	require.NoError(t, err)

	assert.Equal(t, domain.PayoutApproved, resp.Status)
	assert.Equal(t, now, resp.ProcessedAt)

	// Withdrawal-транзакция закрыта, баланс не меняется
	assert.Equal(t, domain.TxCompleted, repo.txStatuses[9])
	assert.True(t, repo.balance.Equal(decimal.NewFromInt(300)))
	assert.Empty(t, repo.refunds)

	assert.Equal(t, []string{events.KeyPayoutResolved}, pub.keys)
}

func TestExecute_RejectRestoresBalance(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	repo := &fakeWalletRepo{
		payout:     pendingPayout(),
		balance:    decimal.NewFromInt(300),
		txStatuses: map[int64]domain.TransactionStatus{},
	}
	uc := newTestUseCase(repo, &fakePublisher{}, now)

	resp, err := uc.Execute(context.Background(), &Request{PayoutID: 5, AdminID: 1, Resolution: ResolutionRejected})
	require.NoError(t, err)

	assert.Equal(t, domain.PayoutRejected, resp.Status)

	// Отклонение возвращает баланс ровно к состоянию до запроса на вывод
	assert.True(t, repo.balance.Equal(decimal.NewFromInt(500)), "balance = %s", repo.balance)
	assert.Equal(t, domain.TxFailed, repo.txStatuses[9])

	require.Len(t, repo.refunds, 1)
	refund := repo.refunds[0]
	assert.Equal(t, domain.TxRefund, refund.Type)
	assert.Equal(t, domain.TxCompleted, refund.Status)
	assert.True(t, refund.Amount.Equal(decimal.NewFromInt(200)))
}

func TestExecute_AlreadyResolved(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	payout := pendingPayout()
	payout.Status = domain.PayoutApproved
	repo := &fakeWalletRepo{payout: payout, txStatuses: map[int64]domain.TransactionStatus{}}
	uc := newTestUseCase(repo, &fakePublisher{}, now)

	_, err := uc.Execute(context.Background(), &Request{PayoutID: 5, AdminID: 1, Resolution: ResolutionRejected})
	assert.ErrorIs(t, err, ErrInvalidState)

	// Повторное решение ничего не меняет
	assert.Empty(t, repo.txStatuses)
	assert.Empty(t, repo.refunds)
}

func TestExecute_NotFound(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	repo := &fakeWalletRepo{txStatuses: map[int64]domain.TransactionStatus{}}
	uc := newTestUseCase(repo, &fakePublisher{}, now)

	_, err := uc.Execute(context.Background(), &Request{PayoutID: 5, AdminID: 1, Resolution: ResolutionApproved})
	assert.ErrorIs(t, err, ErrPayoutNotFound)
}

func TestExecute_InvalidResolution(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeWalletRepo{txStatuses: map[int64]domain.TransactionStatus{}}, &fakePublisher{}, now)

	_, err := uc.Execute(context.Background(), &Request{PayoutID: 5, AdminID: 1, Resolution: "maybe"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
