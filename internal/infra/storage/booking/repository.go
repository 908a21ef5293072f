package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"client_id",
	"provider_id",
	"service_id",
	"status",
	"requested_time",
	"duration_minutes",
	"price",
	"is_instant",
	"expires_at",
	"notes",
	"service_name",
	"responded_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с заявками на бронирование
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заявок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую заявку на бронирование в статусе pending
func (r *Repository) Create(ctx context.Context, req *domain.BookingRequest) (*domain.BookingRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_requests").
		Columns(
			"client_id",
			"provider_id",
			"service_id",
			"status",
			"requested_time",
			"duration_minutes",
			"price",
			"is_instant",
			"expires_at",
			"notes",
			"service_name",
		).
		Values(
			req.ClientID,
			req.ProviderID,
			req.ServiceID,
			req.Status,
			req.RequestedTime,
			req.DurationMinutes,
			req.Price,
			req.IsInstant,
			req.ExpiresAt,
			req.Notes,
			req.ServiceName,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&req.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	req.CreatedAt = createdAt.Time
	req.UpdatedAt = updatedAt.Time

	return req, nil
}

// GetByID получает заявку по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("booking_requests").
		Where(squirrel.Eq{"id": id})

	// Внутри транзакции блокируем строку заявки: конкурентные Respond/Cancel
	// должны сериализоваться на ней
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanBooking(executor.QueryRowContext(ctx, query, args...))
}

// GetByClientID получает список заявок клиента
// Опционально фильтрует по статусу
func (r *Repository) GetByClientID(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.BookingRequest, error) {
	return r.getByParty(ctx, "client_id", clientID, status)
}

// GetByProviderID получает список заявок, адресованных провайдеру
// Опционально фильтрует по статусу
func (r *Repository) GetByProviderID(ctx context.Context, providerID int64, status *domain.BookingStatus) ([]*domain.BookingRequest, error) {
	return r.getByParty(ctx, "provider_id", providerID, status)
}

func (r *Repository) getByParty(ctx context.Context, column string, id int64, status *domain.BookingStatus) ([]*domain.BookingRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("booking_requests").
		Where(squirrel.Eq{column: id}).
		OrderBy("created_at DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getByParty - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getByParty - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// UpdateStatusFrom выполняет CAS-переход статуса: обновление проходит только
// если заявка всё ещё в статусе from. Возвращает ErrStatusConflict, если
// заявка уже переведена другим вызовом (побеждает первый закоммиченный).
func (r *Repository) UpdateStatusFrom(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_requests").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatusFrom - build update query: %v", ErrBuildQuery, err)
	}

	return r.execCAS(ctx, executor, id, query, args)
}

// Respond выполняет первый ответ провайдера: CAS-переход из pending в
// accepted/declined с фиксацией responded_at. Повторный ответ на уже
// разрешённую заявку завершается ErrStatusConflict, а не повторным применением.
func (r *Repository) Respond(ctx context.Context, id int64, to domain.BookingStatus, respondedAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_requests").
		Set("status", to).
		Set("responded_at", respondedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.BookingPending}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Respond - build update query: %v", ErrBuildQuery, err)
	}

	return r.execCAS(ctx, executor, id, query, args)
}

// ExpirePending переводит в expired все просроченные pending-заявки.
// Идемпотентно: повторный прогон по уже истёкшим строкам ничего не меняет.
func (r *Repository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("booking_requests").
		Set("status", domain.BookingExpired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": domain.BookingPending}).
		Where(squirrel.Expr("expires_at IS NOT NULL AND expires_at < ?", now)).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: ExpirePending - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ExpirePending - execute update: %v", ErrExecQuery, err)
	}

	expired, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ExpirePending - get rows affected: %v", ErrExecQuery, err)
	}

	return expired, nil
}

// GetLapsedAccepted получает accepted-заявки, у которых истекло окно на
// подключение клиента: responded_at + GREATEST(responded_at - created_at, 5 минут).
// Внутри транзакции строки блокируются для последующего перевода в expired.
func (r *Repository) GetLapsedAccepted(ctx context.Context, now time.Time) ([]*domain.BookingRequest, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("booking_requests").
		Where(squirrel.Eq{"status": domain.BookingAccepted}).
		Where(squirrel.Expr(
			"responded_at IS NOT NULL AND responded_at + GREATEST(responded_at - created_at, interval '5 minutes') < ?",
			now,
		)).
		OrderBy("id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetLapsedAccepted - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetLapsedAccepted - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// execCAS выполняет CAS-обновление и различает "не найдено" и "конфликт статуса"
func (r *Repository) execCAS(ctx context.Context, executor DBExecutor, id int64, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: execCAS - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: execCAS - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		// Либо заявки нет, либо она уже в другом статусе
		existsQuery, existsArgs, err := psqlbuilder.Select("1").
			From("booking_requests").
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: execCAS - build exists query: %v", ErrBuildQuery, err)
		}

		var one int
		err = executor.QueryRowContext(ctx, existsQuery, existsArgs...).Scan(&one)
		if err == sql.ErrNoRows {
			return ErrBookingNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: execCAS - scan exists: %v", ErrScanRow, err)
		}
		return ErrStatusConflict
	}

	return nil
}

// scanBooking сканирует одну строку заявки
func (r *Repository) scanBooking(row *sql.Row) (*domain.BookingRequest, error) {
	var req domain.BookingRequest
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&req.ID,
		&req.ClientID,
		&req.ProviderID,
		&req.ServiceID,
		&req.Status,
		&req.RequestedTime,
		&req.DurationMinutes,
		&req.Price,
		&req.IsInstant,
		&req.ExpiresAt,
		&req.Notes,
		&req.ServiceName,
		&req.RespondedAt,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scanBooking - scan row: %v", ErrScanRow, err)
	}

	req.CreatedAt = createdAt.Time
	req.UpdatedAt = updatedAt.Time

	return &req, nil
}

// scanBookings сканирует результаты запроса в слайс заявок
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.BookingRequest, error) {
	requests := make([]*domain.BookingRequest, 0)

	for rows.Next() {
		var req domain.BookingRequest
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&req.ID,
			&req.ClientID,
			&req.ProviderID,
			&req.ServiceID,
			&req.Status,
			&req.RequestedTime,
			&req.DurationMinutes,
			&req.Price,
			&req.IsInstant,
			&req.ExpiresAt,
			&req.Notes,
			&req.ServiceName,
			&req.RespondedAt,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		req.CreatedAt = createdAt.Time
		req.UpdatedAt = updatedAt.Time

		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return requests, nil
}
