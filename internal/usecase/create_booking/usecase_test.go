package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/infra/events"
	catalogClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type fakeBookingRepo struct {
	created *domain.BookingRequest
}

func (r *fakeBookingRepo) Create(ctx context.Context, req *domain.BookingRequest) (*domain.BookingRequest, error) {
	req.ID = 42
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	r.created = req
	return req, nil
}

type fakeCatalog struct {
	service *catalogClient.Service
	err     error
}

func (c *fakeCatalog) GetService(ctx context.Context, serviceID int64) (*catalogClient.Service, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.service, nil
}

type fakePublisher struct {
	keys []string
}

func (p *fakePublisher) Publish(ctx context.Context, key string, event interface{}) error {
	p.keys = append(p.keys, key)
	return nil
}

func activeService() *catalogClient.Service {
	return &catalogClient.Service{
		ID:              10,
		ProviderID:      2,
		Name:            "Plumbing consultation",
		Price:           decimal.NewFromInt(150),
		DurationMinutes: 60,
		IsActive:        true,
	}
}

func newTestUseCase(repo *fakeBookingRepo, catalog *fakeCatalog, pub *fakePublisher, now time.Time) *UseCase {
	uc := NewUseCase(repo, catalog, pub, nopLogger{})
	uc.timeProvider = &fakeClock{now: now}
	return uc
}

func TestExecute_DefaultsFromCatalog(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeBookingRepo{}
	pub := &fakePublisher{}
	slot := now.Add(48 * time.Hour)

	uc := newTestUseCase(repo, &fakeCatalog{service: activeService()}, pub, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ClientID:      1,
		ServiceID:     10,
		RequestedTime: &slot,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, int64(2), resp.ProviderID)
	assert.Equal(t, string(domain.BookingPending), resp.Status)
	assert.Equal(t, 60, resp.DurationMinutes)
	assert.True(t, resp.Price.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "Plumbing consultation", resp.ServiceName)
	assert.Nil(t, resp.ExpiresAt)

	require.Len(t, pub.keys, 1)
	assert.Equal(t, events.KeyBookingCreated, pub.keys[0])
}

func TestExecute_OverridesTakePrecedence(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeBookingRepo{}
	duration := 90
	price := decimal.NewFromInt(200)

	uc := newTestUseCase(repo, &fakeCatalog{service: activeService()}, &fakePublisher{}, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ClientID:        1,
		ServiceID:       10,
		DurationMinutes: &duration,
		Price:           &price,
	})
	require.NoError(t, err)

	assert.Equal(t, 90, resp.DurationMinutes)
	assert.True(t, resp.Price.Equal(decimal.NewFromInt(200)))
}

func TestExecute_InstantGetsResponseDeadline(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeBookingRepo{}

	uc := newTestUseCase(repo, &fakeCatalog{service: activeService()}, &fakePublisher{}, now)

	resp, err := uc.Execute(context.Background(), &Request{
		ClientID:  1,
		ServiceID: 10,
		IsInstant: true,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.ExpiresAt)
	assert.True(t, resp.ExpiresAt.Equal(now.Add(domain.PendingResponseWindow)))
	assert.True(t, resp.IsInstant)
}

func TestExecute_ServiceNotFound(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeCatalog{err: catalogClient.ErrServiceNotFound}, &fakePublisher{}, time.Now())

	_, err := uc.Execute(context.Background(), &Request{ClientID: 1, ServiceID: 99})
	require.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_ServiceInactive(t *testing.T) {
	service := activeService()
	service.IsActive = false
	repo := &fakeBookingRepo{}

	uc := newTestUseCase(repo, &fakeCatalog{service: service}, &fakePublisher{}, time.Now())

	_, err := uc.Execute(context.Background(), &Request{ClientID: 1, ServiceID: 10})
	require.ErrorIs(t, err, ErrServiceInactive)
	assert.Nil(t, repo.created)
}

func TestExecute_Validation(t *testing.T) {
	longNotes := string(make([]byte, domain.MaxNotesLength+1))
	badDuration := 0
	tooLong := domain.MaxDurationMinutes + 1
	negPrice := decimal.NewFromInt(-10)

	tests := []struct {
		name string
		req  *Request
	}{
		{
			name: "missing client",
			req:  &Request{ServiceID: 10},
		},
		{
			name: "missing service",
			req:  &Request{ClientID: 1},
		},
		{
			name: "zero duration",
			req:  &Request{ClientID: 1, ServiceID: 10, DurationMinutes: &badDuration},
		},
		{
			name: "duration over limit",
			req:  &Request{ClientID: 1, ServiceID: 10, DurationMinutes: &tooLong},
		},
		{
			name: "negative price",
			req:  &Request{ClientID: 1, ServiceID: 10, Price: &negPrice},
		},
		{
			name: "notes too long",
			req:  &Request{ClientID: 1, ServiceID: 10, Notes: &longNotes},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeBookingRepo{}
			uc := newTestUseCase(repo, &fakeCatalog{service: activeService()}, &fakePublisher{}, time.Now())

			_, err := uc.Execute(context.Background(), tt.req)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, repo.created)
		})
	}
}
