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

	"github.com/go-co-op/gocron/v2"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	addMessageHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/add_message"
	bookSlotHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/book_slot"
	cancelBookingHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/cancel_booking"
	completeBookingHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/complete_booking"
	confirmBookingHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/confirm_booking"
	confirmPaymentHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/confirm_payment"
	createBookingHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/create_booking"
	createSlotHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/create_slot"
	deleteSlotHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/delete_slot"
	getAvailableSlotsHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/get_booking"
	getCallAccessHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/get_call_access"
	getTrainerBookingsHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/get_trainer_bookings"
	getTrainerSlotsHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/get_trainer_slots"
	getUserBookingsHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/get_user_bookings"
	paymentReturnHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/payment_return"
	rejectBookingHandler "github.com/m04kA/SMC-TrainingService/internal/api/handlers/reject_booking"
	"github.com/m04kA/SMC-TrainingService/internal/api/middleware"
	"github.com/m04kA/SMC-TrainingService/internal/config"
	"github.com/m04kA/SMC-TrainingService/internal/infra/store"
	snapshotRepo "github.com/m04kA/SMC-TrainingService/internal/infra/storage/snapshot"
	notifyServiceClient "github.com/m04kA/SMC-TrainingService/internal/integrations/notifyservice"
	payGateClient "github.com/m04kA/SMC-TrainingService/internal/integrations/paygate"
	userServiceClient "github.com/m04kA/SMC-TrainingService/internal/integrations/userservice"
	bookingsService "github.com/m04kA/SMC-TrainingService/internal/service/bookings"
	slotsService "github.com/m04kA/SMC-TrainingService/internal/service/slots"
	sweeperService "github.com/m04kA/SMC-TrainingService/internal/service/sweeper"
	syncerService "github.com/m04kA/SMC-TrainingService/internal/service/syncer"
	bookSlotUC "github.com/m04kA/SMC-TrainingService/internal/usecase/book_slot"
	"github.com/m04kA/SMC-TrainingService/pkg/logger"
	"github.com/m04kA/SMC-TrainingService/pkg/metrics"
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

	log.Info("Starting SMC-TrainingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных (персистентное хранилище снапшотов)
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

	clk := clockwork.NewRealClock()

	// In-memory хранилище + восстановление последнего снапшота
	memStore := store.New()
	snapshotRepository := snapshotRepo.NewRepository(db)
	syncer := syncerService.NewService(memStore, snapshotRepository, metricsCollector, log)

	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 30*time.Second)
	if err := syncer.Restore(restoreCtx); err != nil {
		cancelRestore()
		log.Fatal("Failed to restore state from snapshot: %v", err)
	}
	cancelRestore()

	// Инициализируем интеграционных клиентов
	userClient := userServiceClient.NewClient(
		cfg.UserService.URL,
		time.Duration(cfg.UserService.Timeout)*time.Second,
		log,
	)
	payClient := payGateClient.NewClient(
		cfg.PaymentService.URL,
		cfg.PaymentService.Currency,
		time.Duration(cfg.PaymentService.Timeout)*time.Second,
		log,
	)
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotifyService.URL,
		time.Duration(cfg.NotifyService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (UserService=%s, PaymentService=%s, NotifyService=%s)",
		cfg.UserService.URL, cfg.PaymentService.URL, cfg.NotifyService.URL)

	// Инициализируем сервисы
	bookingCfg := bookingsService.Config{
		LeadTime:              cfg.Booking.LeadTime(),
		CancellationWindow:    cfg.Booking.CancellationWindow(),
		PaymentDeadlineOffset: cfg.Booking.PaymentDeadlineOffset(),
		CallStartLead:         cfg.Booking.CallStartLead(),
		ReminderWindow:        cfg.Booking.ReminderWindow(),
	}

	slotSvc := slotsService.NewService(
		memStore,
		userClient,
		clk,
		cfg.Booking.LeadTime(),
		log,
	)
	bookingSvc := bookingsService.NewService(
		memStore,
		userClient,
		payClient,
		notifyClient,
		clk,
		bookingCfg,
		log,
	)
	sweeper := sweeperService.NewService(
		memStore,
		bookingSvc,
		clk,
		cfg.Booking.ReminderWindow(),
		metricsCollector,
		log,
	)

	// Инициализируем use cases
	bookSlotUseCase := bookSlotUC.NewUseCase(
		memStore,
		userClient,
		notifyClient,
		clk,
		cfg.Booking.LeadTime(),
		log,
	)

	// Инициализируем handlers
	createSlot := createSlotHandler.NewHandler(slotSvc, log)
	deleteSlot := deleteSlotHandler.NewHandler(slotSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(slotSvc, log)
	getTrainerSlots := getTrainerSlotsHandler.NewHandler(slotSvc, log)
	bookSlot := bookSlotHandler.NewHandler(bookSlotUseCase, log)
	createBooking := createBookingHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	rejectBooking := rejectBookingHandler.NewHandler(bookingSvc, log)
	completeBooking := completeBookingHandler.NewHandler(bookingSvc, log)
	confirmPayment := confirmPaymentHandler.NewHandler(bookingSvc, log)
	paymentReturn := paymentReturnHandler.NewHandler(bookingSvc, log)
	addMessage := addMessageHandler.NewHandler(bookingSvc, log)
	getCallAccess := getCallAccessHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getTrainerBookings := getTrainerBookingsHandler.NewHandler(bookingSvc, log)

	// Фоновые задачи: sweeper просроченных оплат + синхронизация снапшотов
	scheduler, err := gocron.NewScheduler(gocron.WithClock(clk))
	if err != nil {
		log.Fatal("Failed to create scheduler: %v", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Duration(cfg.Sweeper.IntervalSeconds)*time.Second),
		gocron.NewTask(func() {
			sweeper.Tick(context.Background())
		}),
	)
	if err != nil {
		log.Fatal("Failed to schedule sweeper job: %v", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Duration(cfg.Sync.IntervalSeconds)*time.Second),
		gocron.NewTask(func() {
			// Ошибка уже залогирована, снапшот уйдет в следующем цикле
			_ = syncer.Sync(context.Background())
		}),
	)
	if err != nil {
		log.Fatal("Failed to schedule sync job: %v", err)
	}

	scheduler.Start()
	log.Info("Background jobs started (sweeper every %ds, sync every %ds)",
		cfg.Sweeper.IntervalSeconds, cfg.Sync.IntervalSeconds)

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
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты тренера
	api.HandleFunc("/trainers/{trainerId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Коллбек платёжной системы
	api.HandleFunc("/payments/return", paymentReturn.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Слоты ---
	// Публикация слота
	protected.HandleFunc("/slots", createSlot.Handle).Methods(http.MethodPost)

	// Удаление свободного слота
	protected.HandleFunc("/slots/{slotId}", deleteSlot.Handle).Methods(http.MethodDelete)

	// Бронирование слота студентом
	protected.HandleFunc("/slots/{slotId}/book", bookSlot.Handle).Methods(http.MethodPost)

	// Все слоты тренера (включая занятые)
	protected.HandleFunc("/trainers/{trainerId}/slots", getTrainerSlots.Handle).Methods(http.MethodGet)

	// --- Бронирования ---
	// Создание free-form заявки без слота
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// Подтверждение заявки тренером
	protected.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPatch)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// Отклонение заявки тренером
	protected.HandleFunc("/bookings/{bookingId}/reject", rejectBooking.Handle).Methods(http.MethodPatch)

	// Завершение занятия
	protected.HandleFunc("/bookings/{bookingId}/complete", completeBooking.Handle).Methods(http.MethodPatch)

	// Ручное подтверждение оплаты
	protected.HandleFunc("/bookings/{bookingId}/confirm-payment", confirmPayment.Handle).Methods(http.MethodPost)

	// Сообщения в треде бронирования
	protected.HandleFunc("/bookings/{bookingId}/messages", addMessage.Handle).Methods(http.MethodPost)

	// Права доступа к видеозвонку
	protected.HandleFunc("/bookings/{bookingId}/call-access", getCallAccess.Handle).Methods(http.MethodGet)

	// История бронирований студента
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)

	// Бронирования тренера
	protected.HandleFunc("/trainers/{trainerId}/bookings", getTrainerBookings.Handle).Methods(http.MethodGet)

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

	// Останавливаем фоновые задачи
	if err := scheduler.Shutdown(); err != nil {
		log.Error("Scheduler forced to shutdown: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Финальный снапшот перед остановкой
	if err := syncer.Sync(shutdownCtx); err != nil {
		log.Error("Final snapshot sync failed: %v", err)
	}

	log.Info("Server stopped gracefully")
}
