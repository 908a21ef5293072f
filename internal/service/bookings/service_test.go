package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/bookings/models"
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

func newFakeBookingRepo(bookings ...*domain.BookingRequest) *fakeBookingRepo {
	r := &fakeBookingRepo{bookings: make(map[int64]*domain.BookingRequest)}
	for _, b := range bookings {
		r.bookings[b.ID] = b
	}
	return r
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copy := *b
	return &copy, nil
}

func (r *fakeBookingRepo) GetByClientID(ctx context.Context, clientID int64, status *domain.BookingStatus) ([]*domain.BookingRequest, error) {
	var out []*domain.BookingRequest
	for _, b := range r.bookings {
		if b.ClientID != clientID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		copy := *b
		out = append(out, &copy)
	}
	return out, nil
}

func (r *fakeBookingRepo) GetByProviderID(ctx context.Context, providerID int64, status *domain.BookingStatus) ([]*domain.BookingRequest, error) {
	var out []*domain.BookingRequest
	for _, b := range r.bookings {
		if b.ProviderID != providerID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		copy := *b
		out = append(out, &copy)
	}
	return out, nil
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
	cancelled []int64
}

func (r *fakeSessionRepo) CancelByBookingID(ctx context.Context, bookingID int64) error {
	r.cancelled = append(r.cancelled, bookingID)
	return nil
}

func newTestService(repo *fakeBookingRepo, sessions *fakeSessionRepo, now time.Time) *Service {
	return NewService(repo, sessions, fakeTxManager{}, &fakeClock{now: now}, nopLogger{})
}

func pendingInstant(id, clientID, providerID int64, createdAt time.Time) *domain.BookingRequest {
	expiresAt := createdAt.Add(domain.PendingResponseWindow)
	return &domain.BookingRequest{
		ID:              id,
		ClientID:        clientID,
		ProviderID:      providerID,
		ServiceID:       10,
		Status:          domain.BookingPending,
		DurationMinutes: 60,
		Price:           decimal.NewFromInt(100),
		IsInstant:       true,
		ExpiresAt:       &expiresAt,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func TestGetByID_CountdownForPendingInstant(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := pendingInstant(1, 100, 200, now.Add(-10*time.Minute))

	svc := newTestService(newFakeBookingRepo(booking), &fakeSessionRepo{}, now)

	resp, err := svc.GetByID(context.Background(), 1, 100)
	require.NoError(t, err)

	require.NotNil(t, resp.ResponseSecondsLeft)
	assert.Equal(t, int64(20*60), *resp.ResponseSecondsLeft)
	assert.Nil(t, resp.JoinSecondsLeft)
}

func TestGetByID_CountdownForAccepted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := pendingInstant(1, 100, 200, now.Add(-4*time.Minute))
	booking.Status = domain.BookingAccepted
	respondedAt := now.Add(-2 * time.Minute)
	booking.RespondedAt = &respondedAt

	svc := newTestService(newFakeBookingRepo(booking), &fakeSessionRepo{}, now)

	// Провайдер ответил за 2 минуты: действует минимальное окно в 5 минут,
	// из которых 2 уже прошли
	resp, err := svc.GetByID(context.Background(), 1, 200)
	require.NoError(t, err)

	assert.Nil(t, resp.ResponseSecondsLeft)
	require.NotNil(t, resp.JoinSecondsLeft)
	assert.Equal(t, int64(3*60), *resp.JoinSecondsLeft)
}

func TestGetByID_AccessDenied(t *testing.T) {
	now := time.Now()
	booking := pendingInstant(1, 100, 200, now)

	svc := newTestService(newFakeBookingRepo(booking), &fakeSessionRepo{}, now)

	_, err := svc.GetByID(context.Background(), 1, 999)
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(), &fakeSessionRepo{}, time.Now())

	_, err := svc.GetByID(context.Background(), 404, 100)
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetClientBookings_FiltersByStatus(t *testing.T) {
	now := time.Now()
	pending := pendingInstant(1, 100, 200, now)
	cancelled := pendingInstant(2, 100, 200, now)
	cancelled.Status = domain.BookingCancelled
	foreign := pendingInstant(3, 777, 200, now)

	svc := newTestService(newFakeBookingRepo(pending, cancelled, foreign), &fakeSessionRepo{}, now)

	status := "pending"
	resp, err := svc.GetClientBookings(context.Background(), &models.GetClientBookingsRequest{
		ClientID: 100,
		Status:   &status,
	})
	require.NoError(t, err)

	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(1), resp.Bookings[0].ID)
}

func TestGetClientBookings_InvalidStatus(t *testing.T) {
	svc := newTestService(newFakeBookingRepo(), &fakeSessionRepo{}, time.Now())

	status := "unknown"
	_, err := svc.GetClientBookings(context.Background(), &models.GetClientBookingsRequest{
		ClientID: 100,
		Status:   &status,
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetProviderBookings_ReturnsIncoming(t *testing.T) {
	now := time.Now()
	incoming := pendingInstant(1, 100, 200, now)
	foreign := pendingInstant(2, 100, 555, now)

	svc := newTestService(newFakeBookingRepo(incoming, foreign), &fakeSessionRepo{}, now)

	resp, err := svc.GetProviderBookings(context.Background(), &models.GetProviderBookingsRequest{
		ProviderID: 200,
	})
	require.NoError(t, err)

	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(1), resp.Bookings[0].ID)
}

func TestCancel_ByClientCancelsSession(t *testing.T) {
	now := time.Now()
	booking := pendingInstant(1, 100, 200, now)
	booking.Status = domain.BookingAccepted
	repo := newFakeBookingRepo(booking)
	sessions := &fakeSessionRepo{}

	svc := newTestService(repo, sessions, now)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 100})
	require.NoError(t, err)

	assert.Equal(t, domain.BookingCancelled, repo.bookings[1].Status)
	assert.Equal(t, []int64{1}, sessions.cancelled)
}

func TestCancel_ByProvider(t *testing.T) {
	now := time.Now()
	booking := pendingInstant(1, 100, 200, now)
	repo := newFakeBookingRepo(booking)

	svc := newTestService(repo, &fakeSessionRepo{}, now)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 200})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, repo.bookings[1].Status)
}

func TestCancel_TerminalStatusRejected(t *testing.T) {
	now := time.Now()
	for _, status := range []domain.BookingStatus{
		domain.BookingCompleted,
		domain.BookingDeclined,
		domain.BookingExpired,
		domain.BookingCancelled,
	} {
		t.Run(string(status), func(t *testing.T) {
			booking := pendingInstant(1, 100, 200, now)
			booking.Status = status
			repo := newFakeBookingRepo(booking)
			sessions := &fakeSessionRepo{}

			svc := newTestService(repo, sessions, now)

			err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 100})
			require.ErrorIs(t, err, ErrCannotCancel)
			assert.Equal(t, status, repo.bookings[1].Status)
			assert.Empty(t, sessions.cancelled)
		})
	}
}

func TestCancel_AccessDenied(t *testing.T) {
	now := time.Now()
	booking := pendingInstant(1, 100, 200, now)
	repo := newFakeBookingRepo(booking)

	svc := newTestService(repo, &fakeSessionRepo{}, now)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 999})
	require.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, domain.BookingPending, repo.bookings[1].Status)
}
