package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/infra/events"
	catalogClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
)

// UseCase use case создания заявки на бронирование
type UseCase struct {
	bookingRepo   BookingRepository
	catalogClient CatalogServiceClient
	publisher     EventPublisher
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	catalogClient CatalogServiceClient,
	publisher EventPublisher,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		catalogClient: catalogClient,
		publisher:     publisher,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case создания заявки.
// Кошелёк клиента не трогается: резервирование оплаты происходит только
// на границе принятия/завершения сессии.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: client=%d, service=%d, instant=%t", req.ClientID, req.ServiceID, req.IsInstant)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем услугу из каталога (providerId, цена и длительность по умолчанию)
	service, err := uc.catalogClient.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if !service.IsActive {
		uc.logger.Warn("CreateBooking: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceInactive
	}

	// 4. Длительность и цена: из запроса, либо из каталога
	duration := service.DurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	price := service.Price
	if req.Price != nil {
		price = *req.Price
	}

	booking := &domain.BookingRequest{
		ClientID:        req.ClientID,
		ProviderID:      service.ProviderID,
		ServiceID:       req.ServiceID,
		Status:          domain.BookingPending,
		RequestedTime:   req.RequestedTime,
		DurationMinutes: duration,
		Price:           price,
		IsInstant:       req.IsInstant,
		Notes:           req.Notes,
		ServiceName:     service.Name,
	}

	// 5. Instant-заявка живёт 30 минут с момента создания
	if req.IsInstant {
		expiresAt := now.Add(domain.PendingResponseWindow)
		booking.ExpiresAt = &expiresAt
	}

	// 6. Сохраняем заявку (единственная запись, транзакция не нужна)
	created, err := uc.bookingRepo.Create(ctx, booking)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to create booking: %v", err)
		return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d", created.ID)

	// 7. Уведомление fire-and-forget: ошибка публикации не влияет на результат
	if err := uc.publisher.Publish(ctx, events.KeyBookingCreated, events.BookingEvent{
		BookingID:  created.ID,
		ClientID:   created.ClientID,
		ProviderID: created.ProviderID,
		ServiceID:  created.ServiceID,
		Status:     string(created.Status),
		IsInstant:  created.IsInstant,
		OccurredAt: now,
	}); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish event for booking id=%d: %v", created.ID, err)
	}

	return &Response{
		ID:              created.ID,
		ClientID:        created.ClientID,
		ProviderID:      created.ProviderID,
		ServiceID:       created.ServiceID,
		Status:          string(created.Status),
		RequestedTime:   created.RequestedTime,
		DurationMinutes: created.DurationMinutes,
		Price:           created.Price,
		IsInstant:       created.IsInstant,
		ExpiresAt:       created.ExpiresAt,
		Notes:           created.Notes,
		ServiceName:     created.ServiceName,
		CreatedAt:       created.CreatedAt,
		UpdatedAt:       created.UpdatedAt,
	}, nil
}
