package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/carebook/telemed-api/internal/app"
	"github.com/carebook/telemed-api/internal/config"
	"github.com/carebook/telemed-api/internal/controller/httpapi"
	"github.com/carebook/telemed-api/internal/events"
	"github.com/carebook/telemed-api/internal/repository"
	"github.com/carebook/telemed-api/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting telemed scheduling server",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Int("slot_minutes", cfg.SlotMinutes),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	userRepo := repository.NewUserRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	hub := events.NewHub(logger)

	availabilityService := service.NewAvailabilityService(availabilityRepo, userRepo, logger)
	slotService := service.NewSlotService(availabilityRepo, appointmentRepo, cfg.SlotMinutes, logger)
	bookingService := service.NewBookingService(appointmentRepo, userRepo, slotService, notificationRepo, hub, logger)
	userService := service.NewUserService(userRepo, logger)
	notificationService := service.NewNotificationService(notificationRepo, logger)

	worker := app.NewReminderWorker(appointmentRepo, notificationRepo, time.Hour, logger)
	worker.Start(ctx)
	defer worker.Stop()

	router := httpapi.NewRouter(httpapi.Deps{
		Availability:  availabilityService,
		Slots:         slotService,
		Booking:       bookingService,
		Users:         userService,
		Notifications: notificationService,
		Hub:           hub,
		Logger:        logger,
		Environment:   cfg.Environment,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
}
