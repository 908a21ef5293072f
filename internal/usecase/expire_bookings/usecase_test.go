package expire_bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
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

type fakeBookingRepo struct {
	bookings map[int64]*domain.BookingRequest
}

func (r *fakeBookingRepo) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, b := range r.bookings {
		if b.Status == domain.BookingPending && b.ExpiresAt != nil && now.After(*b.ExpiresAt) {
			b.Status = domain.BookingExpired
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) GetLapsedAccepted(ctx context.Context, now time.Time) ([]*domain.BookingRequest, error) {
	var lapsed []*domain.BookingRequest
	for _, b := range r.bookings {
		if b.AcceptedWindowLapsed(now) {
			copy := *b
			lapsed = append(lapsed, &copy)
		}
	}
	return lapsed, nil
}

func (r *fakeBookingRepo) UpdateStatusFrom(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	if b.Status != from {
		return bookingRepo.ErrStatusConflict
	}
	b.Status = to
	return nil
}

type fakeSessionRepo struct {
	cancelledBookings []int64
}

func (r *fakeSessionRepo) CancelByBookingID(ctx context.Context, bookingID int64) error {
	r.cancelledBookings = append(r.cancelledBookings, bookingID)
	return nil
}

func newTestUseCase(br *fakeBookingRepo, sr *fakeSessionRepo, now time.Time) *UseCase {
	return NewUseCase(br, sr, fakeTxManager{}, &fakeClock{now: now}, nopLogger{})
}

func TestExecute_ExpiresBothKinds(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	pastDeadline := now.Add(-time.Minute)
	futureDeadline := now.Add(10 * time.Minute)
	respondedLongAgo := now.Add(-20 * time.Minute)
	createdLongAgo := respondedLongAgo.Add(-2 * time.Minute)

	br := &fakeBookingRepo{bookings: map[int64]*domain.BookingRequest{
		// Просроченная pending instant-заявка
		1: {ID: 1, Status: domain.BookingPending, ExpiresAt: &pastDeadline},
		// Живая pending-заявка
		2: {ID: 2, Status: domain.BookingPending, ExpiresAt: &futureDeadline},
		// Accepted-заявка с истёкшим окном подключения (окно = floor 5 минут)
		3: {ID: 3, Status: domain.BookingAccepted, CreatedAt: createdLongAgo, RespondedAt: &respondedLongAgo},
		// Подтверждённую заявку очистка не трогает
		4: {ID: 4, Status: domain.BookingConfirmed},
	}}
	sr := &fakeSessionRepo{}
	uc := newTestUseCase(br, sr, now)

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.ExpiredPending)
	assert.Equal(t, int64(1), result.ExpiredAccepted)

	assert.Equal(t, domain.BookingExpired, br.bookings[1].Status)
	assert.Equal(t, domain.BookingPending, br.bookings[2].Status)
	assert.Equal(t, domain.BookingExpired, br.bookings[3].Status)
	assert.Equal(t, domain.BookingConfirmed, br.bookings[4].Status)

	// Сессия истёкшей accepted-заявки отменена
	assert.Equal(t, []int64{3}, sr.cancelledBookings)
}

func TestExecute_NothingToExpire(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	br := &fakeBookingRepo{bookings: map[int64]*domain.BookingRequest{}}
	uc := newTestUseCase(br, &fakeSessionRepo{}, now)

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)

	// Пустой прогон — такой же успех
	assert.Zero(t, result.ExpiredPending)
	assert.Zero(t, result.ExpiredAccepted)
}

func TestExecute_Idempotent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pastDeadline := now.Add(-time.Minute)
	br := &fakeBookingRepo{bookings: map[int64]*domain.BookingRequest{
		1: {ID: 1, Status: domain.BookingPending, ExpiresAt: &pastDeadline},
	}}
	sr := &fakeSessionRepo{}
	uc := newTestUseCase(br, sr, now)

	first, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ExpiredPending)

	// Повторный прогон над теми же данными ничего не меняет
	second, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.ExpiredPending)
	assert.Zero(t, second.ExpiredAccepted)
}

func TestExecute_SkipsConcurrentlyConfirmed(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	respondedLongAgo := now.Add(-20 * time.Minute)
	createdLongAgo := respondedLongAgo.Add(-2 * time.Minute)

	br := &confirmRacingRepo{
		fakeBookingRepo: fakeBookingRepo{bookings: map[int64]*domain.BookingRequest{
			3: {ID: 3, Status: domain.BookingAccepted, CreatedAt: createdLongAgo, RespondedAt: &respondedLongAgo},
		}},
	}
	sr := &fakeSessionRepo{}
	uc := NewUseCase(br, sr, fakeTxManager{}, &fakeClock{now: now}, nopLogger{})

	result, err := uc.Execute(context.Background())
	require.NoError(t, err)

	// Заявку успели подтвердить между выборкой и переходом: не ошибка
	assert.Zero(t, result.ExpiredAccepted)
	assert.Empty(t, sr.cancelledBookings)
}

// confirmRacingRepo имитирует конкурентное подтверждение между
// GetLapsedAccepted и UpdateStatusFrom
type confirmRacingRepo struct {
	fakeBookingRepo
}

func (r *confirmRacingRepo) GetLapsedAccepted(ctx context.Context, now time.Time) ([]*domain.BookingRequest, error) {
	lapsed, err := r.fakeBookingRepo.GetLapsedAccepted(ctx, now)
	for _, b := range lapsed {
		r.bookings[b.ID].Status = domain.BookingConfirmed
	}
	return lapsed, err
}
