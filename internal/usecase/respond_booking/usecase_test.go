package respond_booking

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/infra/events"
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
	booking     *domain.BookingRequest
	expiredTo   *domain.BookingStatus
	respondedTo *domain.BookingStatus
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	if r.booking == nil || r.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copy := *r.booking
	return &copy, nil
}

func (r *fakeBookingRepo) Respond(ctx context.Context, id int64, to domain.BookingStatus, respondedAt time.Time) error {
	if r.booking.Status != domain.BookingPending {
		return bookingRepo.ErrStatusConflict
	}
	r.booking.Status = to
	r.booking.RespondedAt = &respondedAt
	r.respondedTo = &to
	return nil
}

func (r *fakeBookingRepo) UpdateStatusFrom(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	if r.booking.Status != from {
		return bookingRepo.ErrStatusConflict
	}
	r.booking.Status = to
	r.expiredTo = &to
	return nil
}

type fakeSessionRepo struct {
	created *domain.Session
}

func (r *fakeSessionRepo) Create(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	s.ID = 77
	r.created = s
	return s, nil
}

type fakePublisher struct {
	keys []string
}

func (p *fakePublisher) Publish(ctx context.Context, key string, event interface{}) error {
	p.keys = append(p.keys, key)
	return nil
}

func newTestUseCase(br *fakeBookingRepo, sr *fakeSessionRepo, pub *fakePublisher, now time.Time) *UseCase {
	uc := NewUseCase(br, sr, pub, fakeTxManager{}, nopLogger{})
	uc.timeProvider = &fakeClock{now: now}
	return uc
}

func pendingBooking(now time.Time) *domain.BookingRequest {
	requested := now.Add(2 * time.Hour)
	return &domain.BookingRequest{
		ID:              1,
		ClientID:        10,
		ProviderID:      20,
		ServiceID:       5,
		Status:          domain.BookingPending,
		RequestedTime:   &requested,
		DurationMinutes: 60,
		Price:           decimal.NewFromInt(150),
		CreatedAt:       now.Add(-10 * time.Minute),
	}
}

func TestExecute_AcceptCreatesSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	br := &fakeBookingRepo{booking: pendingBooking(now)}
	sr := &fakeSessionRepo{}
	pub := &fakePublisher{}
	uc := newTestUseCase(br, sr, pub, now)

	resp, err := uc.Execute(context.Background(), &Request{
		BookingID:  1,
		ProviderID: 20,
		Decision:   DecisionAccepted,
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.BookingAccepted), resp.Status)
	assert.Equal(t, now, resp.RespondedAt)

	require.NotNil(t, resp.Session)
	require.NotNil(t, sr.created)
	assert.Equal(t, domain.SessionScheduled, sr.created.Status)
	// Сессия начинается в согласованный слот и наследует цену заявки
	assert.Equal(t, br.booking.RequestedTime.UTC(), sr.created.StartTime.UTC())
	assert.True(t, sr.created.Price.Equal(decimal.NewFromInt(150)))
	require.NotNil(t, sr.created.EndTime)
	assert.Equal(t, sr.created.StartTime.Add(60*time.Minute), *sr.created.EndTime)

	assert.Equal(t, []string{events.KeyBookingAccepted}, pub.keys)
}

func TestExecute_AcceptInstantWithoutSlot(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := pendingBooking(now)
	booking.RequestedTime = nil
	booking.IsInstant = true
	expires := now.Add(20 * time.Minute)
	booking.ExpiresAt = &expires

	sr := &fakeSessionRepo{}
	uc := newTestUseCase(&fakeBookingRepo{booking: booking}, sr, &fakePublisher{}, now)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, ProviderID: 20, Decision: DecisionAccepted})
	require.NoError(t, err)

	require.NotNil(t, sr.created)
	// Без согласованного слота сессия становится inquiry и начинается сейчас
	assert.Equal(t, domain.SessionInquiry, sr.created.Status)
	assert.Equal(t, now, sr.created.StartTime)
}

func TestExecute_DeclineSkipsSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sr := &fakeSessionRepo{}
	pub := &fakePublisher{}
	uc := newTestUseCase(&fakeBookingRepo{booking: pendingBooking(now)}, sr, pub, now)

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 1, ProviderID: 20, Decision: DecisionDeclined})
	require.NoError(t, err)

	assert.Equal(t, string(domain.BookingDeclined), resp.Status)
	assert.Nil(t, resp.Session)
	assert.Nil(t, sr.created)
	assert.Equal(t, []string{events.KeyBookingDeclined}, pub.keys)
}

func TestExecute_LazyExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := pendingBooking(now)
	booking.IsInstant = true
	expires := now.Add(-time.Minute)
	booking.ExpiresAt = &expires

	br := &fakeBookingRepo{booking: booking}
	uc := newTestUseCase(br, &fakeSessionRepo{}, &fakePublisher{}, now)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, ProviderID: 20, Decision: DecisionAccepted})
	assert.ErrorIs(t, err, ErrBookingExpired)

	// Просроченная заявка переведена в expired, а не принята
	require.NotNil(t, br.expiredTo)
	assert.Equal(t, domain.BookingExpired, *br.expiredTo)
	assert.Nil(t, br.respondedTo)
}

func TestExecute_AccessDenied(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeBookingRepo{booking: pendingBooking(now)}, &fakeSessionRepo{}, &fakePublisher{}, now)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, ProviderID: 999, Decision: DecisionAccepted})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_SecondResponseRejected(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	booking := pendingBooking(now)
	booking.Status = domain.BookingAccepted

	uc := newTestUseCase(&fakeBookingRepo{booking: booking}, &fakeSessionRepo{}, &fakePublisher{}, now)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, ProviderID: 20, Decision: DecisionDeclined})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestExecute_NotFound(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeSessionRepo{}, &fakePublisher{}, now)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, ProviderID: 20, Decision: DecisionAccepted})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_Validation(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeSessionRepo{}, &fakePublisher{}, now)

	_, err := uc.Execute(context.Background(), &Request{BookingID: 1, ProviderID: 20, Decision: "maybe"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
