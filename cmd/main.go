package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelReservationHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/cancel_reservation"
	createCheckoutHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/create_checkout"
	getAvailableSlotsHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_available_slots"
	getCatalogHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_catalog"
	getReservationHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/get_reservation"
	listPassesHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/list_passes"
	listReservationsHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/list_reservations"
	redeemPassHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/redeem_pass"
	stripeWebhookHandler "github.com/m04kA/SMC-StudioBooking/internal/api/handlers/stripe_webhook"
	"github.com/m04kA/SMC-StudioBooking/internal/api/middleware"
	"github.com/m04kA/SMC-StudioBooking/internal/config"
	catalogRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/catalog"
	couponRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/coupon"
	outboxRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/outbox"
	passRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/pass"
	paymentRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/payment"
	reservationRepo "github.com/m04kA/SMC-StudioBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/mailer"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/stripe"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/ttlock"
	"github.com/m04kA/SMC-StudioBooking/internal/queue"
	accessService "github.com/m04kA/SMC-StudioBooking/internal/service/access"
	availabilityService "github.com/m04kA/SMC-StudioBooking/internal/service/availability"
	couponsService "github.com/m04kA/SMC-StudioBooking/internal/service/coupons"
	entitlementService "github.com/m04kA/SMC-StudioBooking/internal/service/entitlement"
	notificationsService "github.com/m04kA/SMC-StudioBooking/internal/service/notifications"
	paymentsService "github.com/m04kA/SMC-StudioBooking/internal/service/payments"
	reservationsService "github.com/m04kA/SMC-StudioBooking/internal/service/reservations"
	cancelReservationUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/cancel_reservation"
	completePaymentUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/complete_payment"
	createCheckoutUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/create_checkout"
	getAvailableSlotsUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/get_available_slots"
	redeemPassUC "github.com/m04kA/SMC-StudioBooking/internal/usecase/redeem_pass"
	outboxWorker "github.com/m04kA/SMC-StudioBooking/internal/worker/outbox"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/metrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/txmanager"
	"github.com/m04kA/SMC-StudioBooking/pkg/types"
)

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

	log.Info("Starting SMC-StudioBooking...")

	location, err := cfg.Studio.Location()
	if err != nil {
		log.Fatal("Invalid studio timezone %q: %v", cfg.Studio.Timezone, err)
	}
	morningCutoff, err := types.NewTimeStringFromString(cfg.Studio.MorningCutoff)
	if err != nil {
		log.Fatal("Invalid studio morning cutoff %q: %v", cfg.Studio.MorningCutoff, err)
	}

	// Метрики; при выключенных метриках коллектор остаётся nil, его методы ничего не делают
	var metricsCollector *metrics.Metrics
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

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	catalogRepository := catalogRepo.NewRepository(wrappedDB)
	reservationRepository := reservationRepo.NewRepository(wrappedDB)
	passRepository := passRepo.NewRepository(wrappedDB)
	paymentRepository := paymentRepo.NewRepository(wrappedDB)
	couponRepository := couponRepo.NewRepository(wrappedDB)
	outboxRepository := outboxRepo.NewRepository(wrappedDB)

	// Интеграции
	stripeClient := stripe.NewClient(cfg.Stripe.APIURL, cfg.Stripe.SecretKey,
		time.Duration(cfg.Stripe.Timeout)*time.Second, cfg.Stripe.MaxNetworkRetries, log)
	stripeWebhook := stripe.NewWebhook(cfg.Stripe.WebhookSecret,
		time.Duration(cfg.Stripe.SignatureToleranceSeconds)*time.Second)
	mailClient := mailer.NewClient(cfg.Mailer.APIURL, cfg.Mailer.APIKey, cfg.Mailer.FromEmail, cfg.Mailer.FromName,
		time.Duration(cfg.Mailer.Timeout)*time.Second, log)

	// Токен замка: Redis, если включён, иначе в памяти процесса
	var tokenCache ttlock.TokenCache = ttlock.NewMemoryTokenCache()
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis unavailable at %s, lock token cached in process: %v", cfg.Redis.Addr, err)
		} else {
			tokenCache = ttlock.NewRedisTokenCache(redisClient)
			log.Info("Lock token cache: redis at %s", cfg.Redis.Addr)
		}
		cancelPing()
	}
	lockClient := ttlock.NewClient(ttlock.Config{
		BaseURL:      cfg.TTLock.APIURL,
		ClientID:     cfg.TTLock.ClientID,
		ClientSecret: cfg.TTLock.ClientSecret,
		Username:     cfg.TTLock.Username,
		Password:     cfg.TTLock.Password,
		LockID:       cfg.TTLock.LockID,
		Timeout:      time.Duration(cfg.TTLock.Timeout) * time.Second,
	}, tokenCache, log)

	log.Info("Integration clients initialized (Stripe=%s, TTLock=%s, Mailer=%s)",
		cfg.Stripe.APIURL, cfg.TTLock.APIURL, cfg.Mailer.APIURL)

	// Письма: через RabbitMQ, если включён, иначе напрямую провайдеру
	var sender notificationsService.Sender = mailClient
	var mailConsumer *queue.Consumer
	if cfg.RabbitMQ.Enabled {
		publisher := queue.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log)
		defer publisher.Close()
		sender = publisher
		mailConsumer = queue.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, mailClient, log)
		log.Info("Notifications go through RabbitMQ queue %s", cfg.RabbitMQ.Queue)
	}

	// Сервисы
	availabilitySvc := availabilityService.NewService(catalogRepository, reservationRepository, availabilityService.Config{
		TotalBays:     cfg.Studio.TotalBays,
		Location:      location,
		MorningCutoff: morningCutoff,
	}, log)
	entitlementSvc := entitlementService.NewService(passRepository, catalogRepository, morningCutoff, log)
	couponsSvc := couponsService.NewService(couponRepository, log)
	reservationsSvc := reservationsService.NewService(
		reservationRepository,
		catalogRepository,
		outboxRepository,
		availabilitySvc,
		entitlementSvc,
		txMgr,
		metricsCollector,
		reservationsService.Config{Location: location, CancellationCutoff: cfg.Policy.CancellationCutoff()},
		log,
	)
	accessSvc := accessService.NewService(
		reservationRepository,
		catalogRepository,
		outboxRepository,
		lockClient,
		txMgr,
		metricsCollector,
		accessService.Config{Location: location, Before: cfg.Policy.AccessBefore(), After: cfg.Policy.AccessAfter()},
		log,
	)
	notificationsSvc := notificationsService.NewService(
		reservationRepository,
		passRepository,
		catalogRepository,
		sender,
		notificationsService.Config{Location: location, AccessBefore: cfg.Policy.AccessBefore(), AccessAfter: cfg.Policy.AccessAfter()},
		log,
	)
	paymentsSvc := paymentsService.NewService(paymentRepository, stripeClient, metricsCollector, log)

	// Use cases
	createCheckoutUseCase := createCheckoutUC.NewUseCase(
		catalogRepository,
		availabilitySvc,
		couponsSvc,
		stripeClient,
		metricsCollector,
		createCheckoutUC.Config{
			Currency:   cfg.Stripe.Currency,
			SuccessURL: cfg.Stripe.SuccessURL,
			CancelURL:  cfg.Stripe.CancelURL,
		},
		log,
	)
	completePaymentUseCase := completePaymentUC.NewUseCase(
		stripeWebhook,
		paymentRepository,
		reservationsSvc,
		entitlementSvc,
		couponsSvc,
		outboxRepository,
		txMgr,
		metricsCollector,
		log,
	)
	redeemPassUseCase := redeemPassUC.NewUseCase(catalogRepository, reservationsSvc, entitlementSvc, txMgr, log)
	cancelReservationUseCase := cancelReservationUC.NewUseCase(reservationsSvc, paymentRepository, outboxRepository, txMgr, log)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(availabilitySvc, catalogRepository, log)

	// Handlers
	getCatalog := getCatalogHandler.NewHandler(catalogRepository, cfg.Studio.TotalBays, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createCheckout := createCheckoutHandler.NewHandler(createCheckoutUseCase, log)
	stripeWebhookH := stripeWebhookHandler.NewHandler(completePaymentUseCase, log)
	redeemPass := redeemPassHandler.NewHandler(redeemPassUseCase, log)
	cancelReservation := cancelReservationHandler.NewHandler(cancelReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationsSvc, log)
	listReservations := listReservationsHandler.NewHandler(reservationsSvc, log)
	listPasses := listPassesHandler.NewHandler(entitlementSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/catalog", getCatalog.Handle).Methods(http.MethodGet)
	api.HandleFunc("/availability", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Webhook проверяется подписью провайдера, а не токеном
	api.HandleFunc("/webhooks/stripe", stripeWebhookH.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют Bearer токен)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(cfg.Auth.JWTSecret))

	protected.HandleFunc("/checkout", createCheckout.Handle).Methods(http.MethodPost)

	// redeem регистрируется раньше {reservationId}, иначе совпадёт с ним
	protected.HandleFunc("/reservations/redeem", redeemPass.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/reservations/{reservationId:[0-9]+}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId:[0-9]+}/cancel", cancelReservation.Handle).Methods(http.MethodPost)

	protected.HandleFunc("/me/reservations", listReservations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/me/passes", listPasses.Handle).Methods(http.MethodGet)

	// Фоновые обработчики
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	worker := outboxWorker.NewWorker(
		outboxRepository,
		accessSvc,
		paymentsSvc,
		notificationsSvc,
		metricsCollector,
		outboxWorker.Config{
			PollInterval: cfg.Outbox.PollInterval(),
			BatchSize:    cfg.Outbox.BatchSize,
			MaxAttempts:  cfg.Outbox.MaxAttempts,
			Backoff:      cfg.Outbox.Backoff(),
		},
		log,
	)
	workers.Add(1)
	go func() {
		defer workers.Done()
		if err := worker.Run(workerCtx); err != nil {
			log.Error("Outbox worker stopped: %v", err)
		}
	}()

	if mailConsumer != nil {
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := mailConsumer.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Mail consumer stopped: %v", err)
			}
		}()
	}

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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Незавершённые задачи outbox останутся в таблице и будут подхвачены после рестарта
	stopWorkers()
	workers.Wait()
	log.Info("Background workers stopped")

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	log.Info("Server stopped gracefully")
}
