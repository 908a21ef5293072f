package wallet

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/psqlbuilder"
)

const pgUniqueViolation = "23505"

var walletColumns = []string{
	"id",
	"user_id",
	"balance",
	"available_minutes",
	"total_minutes_purchased",
	"total_minutes_used",
	"created_at",
	"updated_at",
}

// Repository репозиторий кошельков: баланс, минутные кредиты,
// append-only журнал транзакций и заявки на вывод
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория кошельков
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetOrCreateByUserID возвращает кошелёк пользователя, создавая его с нулевыми
// балансами при первом обращении. Для существующего кошелька побочных
// эффектов нет. Гонка двух первых обращений разрешается уникальным индексом
// по user_id: проигравший insert перечитывает существующую строку.
func (r *Repository) GetOrCreateByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	w, err := r.GetByUserID(ctx, userID)
	if err == nil {
		return w, nil
	}
	if err != ErrWalletNotFound {
		return nil, err
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("wallets").
		Columns("user_id", "balance", "available_minutes", "total_minutes_purchased", "total_minutes_used").
		Values(userID, decimal.Zero, 0, 0, 0).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOrCreateByUserID - build insert query: %v", ErrBuildQuery, err)
	}

	created := &domain.Wallet{UserID: userID, Balance: decimal.Zero}
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(&created.ID, &createdAt, &updatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pgUniqueViolation {
			// Кошелёк успел создать конкурентный запрос
			return r.GetByUserID(ctx, userID)
		}
		return nil, fmt.Errorf("%w: GetOrCreateByUserID - execute insert: %v", ErrExecQuery, err)
	}

	created.CreatedAt = createdAt.Time
	created.UpdatedAt = updatedAt.Time

	return created, nil
}

// GetByUserID получает кошелёк по ID пользователя
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	return r.getWallet(ctx, squirrel.Eq{"user_id": userID}, false)
}

// GetByUserIDForUpdate получает кошелёк по ID пользователя с блокировкой строки.
// Используется внутри транзакций, сериализующих операции над одним кошельком.
func (r *Repository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*domain.Wallet, error) {
	return r.getWallet(ctx, squirrel.Eq{"user_id": userID}, true)
}

// GetByIDForUpdate получает кошелёк по ID с блокировкой строки
func (r *Repository) GetByIDForUpdate(ctx context.Context, walletID int64) (*domain.Wallet, error) {
	return r.getWallet(ctx, squirrel.Eq{"id": walletID}, true)
}

func (r *Repository) getWallet(ctx context.Context, where squirrel.Eq, forUpdate bool) (*domain.Wallet, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(walletColumns...).
		From("wallets").
		Where(where)

	if forUpdate {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getWallet - build select query: %v", ErrBuildQuery, err)
	}

	var w domain.Wallet
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&w.ID,
		&w.UserID,
		&w.Balance,
		&w.AvailableMinutes,
		&w.TotalMinutesPurchased,
		&w.TotalMinutesUsed,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getWallet - scan wallet: %v", ErrScanRow, err)
	}

	w.CreatedAt = createdAt.Time
	w.UpdatedAt = updatedAt.Time

	return &w, nil
}

// DebitBalance списывает amount с баланса условным декрементом:
// UPDATE ... SET balance = balance - amount WHERE balance >= amount.
// Ноль обновлённых строк означает недостаточный баланс — классическая
// гонка read-then-write закрыта на уровне запроса.
func (r *Repository) DebitBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("wallets").
		Set("balance", squirrel.Expr("balance - ?", amount)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": walletID}).
		Where(squirrel.Expr("balance >= ?", amount)).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DebitBalance - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DebitBalance - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DebitBalance - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, err := r.getWallet(ctx, squirrel.Eq{"id": walletID}, false); err != nil {
			return err
		}
		return ErrInsufficientBalance
	}

	return nil
}

// CreditBalance зачисляет amount на баланс
func (r *Repository) CreditBalance(ctx context.Context, walletID int64, amount decimal.Decimal) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("wallets").
		Set("balance", squirrel.Expr("balance + ?", amount)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": walletID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: CreditBalance - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: CreditBalance - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: CreditBalance - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrWalletNotFound
	}

	return nil
}

// AddMinutes зачисляет купленные минуты: оба счётчика меняются одним UPDATE,
// инвариант available == purchased - used сохраняется в любой момент
func (r *Repository) AddMinutes(ctx context.Context, walletID int64, minutes int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("wallets").
		Set("total_minutes_purchased", squirrel.Expr("total_minutes_purchased + ?", minutes)).
		Set("available_minutes", squirrel.Expr("available_minutes + ?", minutes)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": walletID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AddMinutes - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: AddMinutes - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: AddMinutes - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrWalletNotFound
	}

	return nil
}

// ConsumeMinutes списывает минуты условным декрементом: ноль обновлённых
// строк означает, что минут меньше, чем списывается (fail-closed)
func (r *Repository) ConsumeMinutes(ctx context.Context, walletID int64, minutes int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("wallets").
		Set("total_minutes_used", squirrel.Expr("total_minutes_used + ?", minutes)).
		Set("available_minutes", squirrel.Expr("available_minutes - ?", minutes)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": walletID}).
		Where(squirrel.Expr("available_minutes >= ?", minutes)).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ConsumeMinutes - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ConsumeMinutes - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: ConsumeMinutes - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, err := r.getWallet(ctx, squirrel.Eq{"id": walletID}, false); err != nil {
			return err
		}
		return ErrInsufficientMinutes
	}

	return nil
}

// CreateTransaction добавляет запись в append-only журнал транзакций.
// После записи amount/type/wallet_id никогда не меняются.
func (r *Repository) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("transactions").
		Columns("wallet_id", "amount", "type", "status", "description").
		Values(tx.WalletID, tx.Amount, tx.Type, tx.Status, tx.Description).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateTransaction - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&tx.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateTransaction - execute insert: %v", ErrExecQuery, err)
	}

	tx.CreatedAt = createdAt.Time

	return tx, nil
}

// UpdateTransactionStatus переводит транзакцию из pending в completed/failed.
// Переход допускается ровно один раз.
func (r *Repository) UpdateTransactionStatus(ctx context.Context, txID int64, status domain.TransactionStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("transactions").
		Set("status", status).
		Where(squirrel.Eq{"id": txID, "status": domain.TxPending}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateTransactionStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateTransactionStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateTransactionStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

// ListTransactions возвращает журнал транзакций кошелька, новые первыми
func (r *Repository) ListTransactions(ctx context.Context, walletID int64) ([]*domain.Transaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "wallet_id", "amount", "type", "status", "description", "created_at").
		From("transactions").
		Where(squirrel.Eq{"wallet_id": walletID}).
		OrderBy("created_at DESC, id DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListTransactions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListTransactions - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0)
	for rows.Next() {
		var tx domain.Transaction
		var createdAt sql.NullTime

		err := rows.Scan(&tx.ID, &tx.WalletID, &tx.Amount, &tx.Type, &tx.Status, &tx.Description, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("%w: ListTransactions - scan row: %v", ErrScanRow, err)
		}

		tx.CreatedAt = createdAt.Time
		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListTransactions - rows error: %v", ErrScanRow, err)
	}

	return transactions, nil
}

// CreatePayoutRequest создает заявку на вывод средств
func (r *Repository) CreatePayoutRequest(ctx context.Context, p *domain.PayoutRequest) (*domain.PayoutRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("payout_requests").
		Columns("wallet_id", "amount", "status", "bank_details", "transaction_id").
		Values(p.WalletID, p.Amount, p.Status, p.BankDetails, p.TransactionID).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreatePayoutRequest - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreatePayoutRequest - execute insert: %v", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time

	return p, nil
}

// GetPayoutByID получает заявку на вывод. Внутри транзакции строка блокируется:
// конкурентные решения по одной заявке сериализуются на ней.
func (r *Repository) GetPayoutByID(ctx context.Context, id int64) (*domain.PayoutRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "wallet_id", "amount", "status", "bank_details", "transaction_id", "created_at", "processed_at").
		From("payout_requests").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetPayoutByID - build select query: %v", ErrBuildQuery, err)
	}

	var p domain.PayoutRequest
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.WalletID,
		&p.Amount,
		&p.Status,
		&p.BankDetails,
		&p.TransactionID,
		&createdAt,
		&p.ProcessedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrPayoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetPayoutByID - scan payout: %v", ErrScanRow, err)
	}

	p.CreatedAt = createdAt.Time

	return &p, nil
}

// ResolvePayout выполняет CAS-переход заявки на вывод из pending в
// approved/rejected с фиксацией processed_at. Повторное решение по уже
// разрешённой заявке завершается ErrStatusConflict.
func (r *Repository) ResolvePayout(ctx context.Context, id int64, to domain.PayoutStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("payout_requests").
		Set("status", to).
		Set("processed_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.PayoutPending}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: ResolvePayout - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: ResolvePayout - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: ResolvePayout - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		if _, err := r.GetPayoutByID(ctx, id); err != nil {
			return err
		}
		return ErrStatusConflict
	}

	return nil
}

// ListPayouts возвращает заявки на вывод кошелька, новые первыми
func (r *Repository) ListPayouts(ctx context.Context, walletID int64) ([]*domain.PayoutRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "wallet_id", "amount", "status", "bank_details", "transaction_id", "created_at", "processed_at").
		From("payout_requests").
		Where(squirrel.Eq{"wallet_id": walletID}).
		OrderBy("created_at DESC, id DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListPayouts - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPayouts - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	payouts := make([]*domain.PayoutRequest, 0)
	for rows.Next() {
		var p domain.PayoutRequest
		var createdAt sql.NullTime

		err := rows.Scan(&p.ID, &p.WalletID, &p.Amount, &p.Status, &p.BankDetails, &p.TransactionID, &createdAt, &p.ProcessedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: ListPayouts - scan row: %v", ErrScanRow, err)
		}

		p.CreatedAt = createdAt.Time
		payouts = append(payouts, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListPayouts - rows error: %v", ErrScanRow, err)
	}

	return payouts, nil
}

// CreateMinuteUsage записывает списание минут, привязанное к сессии
func (r *Repository) CreateMinuteUsage(ctx context.Context, u *domain.MinuteUsage) (*domain.MinuteUsage, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("minute_usages").
		Columns("wallet_id", "session_id", "minutes", "rate_per_minute").
		Values(u.WalletID, u.SessionID, u.Minutes, u.RatePerMinute).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateMinuteUsage - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&u.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateMinuteUsage - execute insert: %v", ErrExecQuery, err)
	}

	u.CreatedAt = createdAt.Time

	return u, nil
}
