package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/cancel_booking"
	completeSessionHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/complete_session"
	createBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/create_booking"
	getBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_booking"
	getClientBookingsHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_client_bookings"
	getProviderBookingsHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_provider_bookings"
	getWalletHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_wallet"
	getWalletHistoryHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/get_wallet_history"
	purchaseMinutesHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/purchase_minutes"
	requestPayoutHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/request_payout"
	resolvePayoutHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/resolve_payout"
	respondBookingHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/respond_booking"
	startSessionHandler "github.com/m04kA/SMC-MarketplaceService/internal/api/handlers/start_session"
	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceService/internal/config"
	"github.com/m04kA/SMC-MarketplaceService/internal/infra/events"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	sessionRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/session"
	walletRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/wallet"
	catalogServiceClient "github.com/m04kA/SMC-MarketplaceService/internal/integrations/catalogservice"
	bookingsService "github.com/m04kA/SMC-MarketplaceService/internal/service/bookings"
	walletsService "github.com/m04kA/SMC-MarketplaceService/internal/service/wallets"
	completeSessionUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/complete_session"
	createBookingUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/create_booking"
	expireBookingsUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/expire_bookings"
	purchaseMinutesUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/purchase_minutes"
	requestPayoutUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/request_payout"
	resolvePayoutUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/resolve_payout"
	respondBookingUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/respond_booking"
	startSessionUC "github.com/m04kA/SMC-MarketplaceService/internal/usecase/start_session"
	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/logger"
	"github.com/m04kA/SMC-MarketplaceService/pkg/metrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-MarketplaceService/pkg/txmanager"
)

// EventPublisher общий интерфейс для реального и заглушечного издателя
type EventPublisher interface {
	Publish(ctx context.Context, key string, event interface{}) error
	Close() error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-MarketplaceService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем клиент каталога услуг
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	log.Info("CatalogService client initialized (url=%s, timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout)

	// Инициализируем издателя уведомлений
	var publisher EventPublisher
	if cfg.RabbitMQ.Enabled {
		p, err := events.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		publisher = p
		log.Info("Event publisher connected (exchange=%s)", cfg.RabbitMQ.Exchange)
	} else {
		publisher = events.NopPublisher{}
		log.Warn("RabbitMQ disabled, events will not be published")
	}
	defer publisher.Close()

	// Инициализируем репозитории и transaction manager (с метриками или без)
	var (
		bookingRepository *bookingRepo.Repository
		sessionRepository *sessionRepo.Repository
		walletRepository  *walletRepo.Repository
	)

	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		sessionRepository = sessionRepo.NewRepository(wrappedDB)
		walletRepository = walletRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		sessionRepository = sessionRepo.NewRepository(db)
		walletRepository = walletRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	timeProvider := &bookingsService.RealTimeProvider{}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		sessionRepository,
		txMgr,
		timeProvider,
		log,
	)
	walletSvc := walletsService.NewService(walletRepository, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(bookingRepository, catalogClient, publisher, log)
	respondBookingUseCase := respondBookingUC.NewUseCase(bookingRepository, sessionRepository, publisher, txMgr, log)
	startSessionUseCase := startSessionUC.NewUseCase(sessionRepository, bookingRepository, txMgr, log)
	completeSessionUseCase := completeSessionUC.NewUseCase(sessionRepository, bookingRepository, walletRepository, txMgr, log)
	purchaseMinutesUseCase := purchaseMinutesUC.NewUseCase(walletRepository, txMgr, log)
	requestPayoutUseCase := requestPayoutUC.NewUseCase(walletRepository, txMgr, log)
	resolvePayoutUseCase := resolvePayoutUC.NewUseCase(
		walletRepository,
		publisher,
		txMgr,
		&resolvePayoutUC.RealTimeProvider{},
		log,
	)
	expireBookingsUseCase := expireBookingsUC.NewUseCase(
		bookingRepository,
		sessionRepository,
		txMgr,
		&expireBookingsUC.RealTimeProvider{},
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	respondBooking := respondBookingHandler.NewHandler(respondBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getClientBookings := getClientBookingsHandler.NewHandler(bookingSvc, log)
	getProviderBookings := getProviderBookingsHandler.NewHandler(bookingSvc, log)
	startSession := startSessionHandler.NewHandler(startSessionUseCase, log)
	completeSession := completeSessionHandler.NewHandler(completeSessionUseCase, log)
	getWallet := getWalletHandler.NewHandler(walletSvc, log)
	getWalletHistory := getWalletHistoryHandler.NewHandler(walletSvc, log)
	purchaseMinutes := purchaseMinutesHandler.NewHandler(purchaseMinutesUseCase, log)
	requestPayout := requestPayoutHandler.NewHandler(requestPayoutUseCase, log)
	resolvePayout := resolvePayoutHandler.NewHandler(resolvePayoutUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Заявки на бронирование ---
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings", getClientBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{id}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{id}/respond", respondBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{id}/cancel", cancelBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/provider/bookings", getProviderBookings.Handle).Methods(http.MethodGet)

	// --- Сессии ---
	protected.HandleFunc("/sessions/{id}/start", startSession.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{id}/complete", completeSession.Handle).Methods(http.MethodPost)

	// --- Кошелёк ---
	protected.HandleFunc("/wallet", getWallet.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/wallet/history", getWalletHistory.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/wallet/minutes", purchaseMinutes.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/wallet/payouts", requestPayout.Handle).Methods(http.MethodPost)

	// ============================================================
	// ADMIN ROUTES (требуют X-User-Role: admin)
	// ============================================================

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminOnly)
	admin.HandleFunc("/payouts/{id}/resolve", resolvePayout.Handle).Methods(http.MethodPost)

	// Запускаем фоновую очистку просроченных заявок
	sweepStopCh := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Sweep.Interval) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := expireBookingsUseCase.Execute(context.Background()); err != nil {
					log.Error("Expiry sweep failed: %v", err)
				}
			case <-sweepStopCh:
				return
			}
		}
	}()
	log.Info("Expiry sweep started (interval=%ds)", cfg.Sweep.Interval)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	close(sweepStopCh)

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
