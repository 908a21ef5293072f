package session

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

var sessionColumns = []string{
	"id",
	"booking_id",
	"client_id",
	"provider_id",
	"status",
	"start_time",
	"end_time",
	"price",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с сессиями
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория сессий
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает сессию. Вызывается ровно один раз — при принятии заявки,
// в той же транзакции, что и перевод заявки в accepted. Уникальный индекс
// по booking_id гарантирует не более одной сессии на заявку.
func (r *Repository) Create(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("sessions").
		Columns(
			"booking_id",
			"client_id",
			"provider_id",
			"status",
			"start_time",
			"end_time",
			"price",
		).
		Values(
			s.BookingID,
			s.ClientID,
			s.ProviderID,
			s.Status,
			s.StartTime,
			s.EndTime,
			s.Price,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return s, nil
}

// GetByID получает сессию по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByBookingID получает сессию, созданную из указанной заявки
func (r *Repository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Session, error) {
	return r.getOne(ctx, squirrel.Eq{"booking_id": bookingID})
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Eq) (*domain.Session, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(sessionColumns...).
		From("sessions").
		Where(where)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.Session
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.BookingID,
		&s.ClientID,
		&s.ProviderID,
		&s.Status,
		&s.StartTime,
		&s.EndTime,
		&s.Price,
		&createdAt,
		&updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - scan session: %v", ErrScanRow, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return &s, nil
}

// UpdateStatusFrom выполняет CAS-переход статуса сессии из одного из
// ожидаемых статусов. Возвращает ErrStatusConflict при гонке.
func (r *Repository) UpdateStatusFrom(ctx context.Context, id int64, from []domain.SessionStatus, to domain.SessionStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	fromStrings := make([]string, len(from))
	for i, s := range from {
		fromStrings[i] = string(s)
	}

	query, args, err := psqlbuilder.Update("sessions").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": fromStrings}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatusFrom - build update query: %v", ErrBuildQuery, err)
	}

	return r.execCAS(ctx, executor, id, query, args)
}

// Complete завершает сессию: переводит in_progress в completed и фиксирует
// фактическое время окончания. После этого сессия неизменяема.
func (r *Repository) Complete(ctx context.Context, id int64, endTime time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("sessions").
		Set("status", domain.SessionCompleted).
		Set("end_time", endTime).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.SessionInProgress}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Complete - build update query: %v", ErrBuildQuery, err)
	}

	return r.execCAS(ctx, executor, id, query, args)
}

// CancelByBookingID отменяет ещё не начавшуюся сессию указанной заявки.
// Используется sweep'ом при истечении окна подключения. Отсутствие
// подходящей сессии не считается ошибкой (идемпотентность sweep'а).
func (r *Repository) CancelByBookingID(ctx context.Context, bookingID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("sessions").
		Set("status", domain.SessionCancelled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"booking_id": bookingID,
			"status":     []string{string(domain.SessionScheduled), string(domain.SessionInquiry)},
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: CancelByBookingID - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CancelByBookingID - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// execCAS выполняет CAS-обновление и различает "не найдено" и "конфликт статуса"
func (r *Repository) execCAS(ctx context.Context, executor dbmetrics.DBExecutor, id int64, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: execCAS - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: execCAS - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		existsQuery, existsArgs, err := psqlbuilder.Select("1").
			From("sessions").
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: execCAS - build exists query: %v", ErrBuildQuery, err)
		}

		var one int
		err = executor.QueryRowContext(ctx, existsQuery, existsArgs...).Scan(&one)
		if err == sql.ErrNoRows {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: execCAS - scan exists: %v", ErrScanRow, err)
		}
		return ErrStatusConflict
	}

	return nil
}
