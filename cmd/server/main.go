package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-appointment/internal/application"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/config"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/consumer"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/database"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/appointment"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/schedule"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/domain/settings"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/handler"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/kafka"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/logger"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/middleware"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/notify"
	"github.com/Kilat-Pet-Delivery/service-appointment/internal/repository"
)

const serviceName = "service-appointment"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("settings_backend", cfg.SettingsBackend),
		zap.String("mail_provider", cfg.MailConfig.Provider),
	)

	checks := map[string]handler.Pinger{}

	// Connect to database
	var db *gorm.DB
	if cfg.DBConfig.Enabled {
		db, err = database.Connect(cfg.DBConfig, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}

		// Run database migrations
		if cfg.AppEnv == "development" {
			if err := db.AutoMigrate(&repository.AppointmentModel{}, &repository.SettingsModel{}); err != nil {
				log.Fatal("failed to run auto-migration", zap.Error(err))
			}
			log.Info("database migration completed (dev auto-migrate)")
		} else if err := database.RunMigrations(cfg.DBConfig, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("failed to get sql.DB", zap.Error(err))
		}
		defer func() { _ = sqlDB.Close() }()
		checks["postgres"] = handler.PingFunc(sqlDB.PingContext)
	}

	// Connect to Redis
	var redisClient *redis.Client
	if cfg.SettingsBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer func() { _ = redisClient.Close() }()
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	// Initialize Kafka producer
	var producer kafka.EventPublisher = kafka.NoopPublisher{}
	if cfg.KafkaConfig.Enabled() {
		producer = kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	} else {
		log.Warn("no kafka brokers configured; events are not published")
	}
	defer func() { _ = producer.Close() }()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewBookingMetrics(registry)

	// Initialize repositories
	var appointmentRepo appointment.Repository = repository.NewMemoryAppointmentRepository()
	if db != nil {
		appointmentRepo = repository.NewGormAppointmentRepository(db)
	}
	settingsRepo := newSettingsRepository(cfg, db, redisClient)

	// Initialize the schedule
	storeOpts := []schedule.Option{schedule.WithSelectionTTL(cfg.SelectionTTL)}
	if cfg.SeedSampleData {
		storeOpts = append(storeOpts, schedule.WithIDGenerator(schedule.NewSequenceGenerator(12)))
	}
	store := schedule.NewStore(storeOpts...)
	if cfg.SeedSampleData {
		if err := store.Restore(schedule.SampleDates()); err != nil {
			log.Fatal("failed to seed sample schedule", zap.Error(err))
		}
		log.Info("sample schedule loaded")
	}

	// Initialize application services
	sender, err := newEmailSender(cfg.MailConfig, log)
	if err != nil {
		log.Fatal("failed to configure mail provider", zap.Error(err))
	}
	settingsService := application.NewSettingsService(settingsRepo, log)
	dispatcher := application.NewNotificationDispatcher(
		sender,
		appointmentRepo,
		settingsService,
		cfg.NotifyTimeout,
		bookingMetrics,
		log,
	)
	bookingService := application.NewBookingService(
		store,
		appointmentRepo,
		dispatcher,
		producer,
		log,
		application.WithLocation(cfg.Location()),
		application.WithMetrics(bookingMetrics),
		application.WithSettings(settingsService),
	)

	// Initialize and start schedule command consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.KafkaConfig.Enabled() {
		groupID := cfg.KafkaConfig.GroupPrefix + "appointment-service"
		commandConsumer := consumer.NewScheduleCommandConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			bookingService,
			log,
		)
		defer func() { _ = commandConsumer.Close() }()

		go func() {
			log.Info("starting schedule command consumer")
			if err := commandConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("schedule command consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check and metrics routes
	handler.NewHealthHandler(serviceName, checks).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Register routes
	handler.NewScheduleHandler(bookingService).RegisterRoutes(&router.RouterGroup)
	handler.NewAdminHandler(bookingService, settingsService).RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	// Let in-flight confirmations finish before the repositories close.
	dispatcher.Wait()

	log.Info(serviceName + " stopped")
}

func newSettingsRepository(cfg *config.ServiceConfig, db *gorm.DB, redisClient *redis.Client) settings.Repository {
	switch cfg.SettingsBackend {
	case "postgres":
		return repository.NewGormSettingsRepository(db)
	case "redis":
		return repository.NewRedisSettingsRepository(redisClient)
	default:
		return repository.NewMemorySettingsRepository()
	}
}

func newEmailSender(cfg config.MailConfig, log *zap.Logger) (notify.EmailSender, error) {
	switch cfg.Provider {
	case "smtp":
		return notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.FromEmail,
			FromName: cfg.FromName,
		}, log)
	case "sendgrid":
		return notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.FromEmail,
			FromName:  cfg.FromName,
		}, log)
	default:
		return notify.NewLogSender(log), nil
	}
}
