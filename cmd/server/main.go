package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/app"
	"github.com/Freeeeeet/tutor_market/internal/config"
	"github.com/Freeeeeet/tutor_market/internal/controller/api"
	"github.com/Freeeeeet/tutor_market/internal/controller/api/handler"
	"github.com/Freeeeeet/tutor_market/internal/controller/api/httpcontext"
	"github.com/Freeeeeet/tutor_market/internal/controller/api/middleware"
	"github.com/Freeeeeet/tutor_market/internal/controller/telegram"
	"github.com/Freeeeeet/tutor_market/internal/geocode"
	"github.com/Freeeeeet/tutor_market/internal/repository"
	"github.com/Freeeeeet/tutor_market/internal/repository/memory"
	"github.com/Freeeeeet/tutor_market/internal/schedule"
	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/Freeeeeet/tutor_market/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting tutor market",
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("addr", cfg.HTTP.Addr),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lifecycle := app.NewLifecycle(cfg.HTTP.ShutdownTimeout, logger)
	lifecycle.Listen(cancel)

	if err := run(ctx, cfg, lifecycle, logger); err != nil {
		logger.Error("Service failed", zap.Error(err))
	}

	if err := lifecycle.Shutdown(context.Background()); err != nil {
		logger.Error("Shutdown finished with errors", zap.Error(err))
	}
	logger.Info("Tutor market stopped")
}

func run(ctx context.Context, cfg *config.Config, lifecycle *app.Lifecycle, logger *zap.Logger) error {
	store, err := openStore(ctx, cfg, lifecycle, logger)
	if err != nil {
		return err
	}

	geocoder := geocode.New(geocode.Config{
		URL:       cfg.Geocoder.URL,
		UserAgent: cfg.Geocoder.UserAgent,
		Timeout:   cfg.Geocoder.Timeout,
	}, nil)

	userService := service.NewUserService(store, geocoder, logger)
	taskService := service.NewTaskService(store, geocoder, logger)
	applicationService := service.NewApplicationService(store, logger)
	availabilityService := service.NewAvailabilityService(store, schedule.NewGenerator(cfg.SlotDuration, cfg.SlotMaxRange), logger)
	appointmentService := service.NewAppointmentService(store, logger)

	adapter := httpcontext.NewAdapter(cfg.HTTP.RequestTimeout)
	r := api.NewRouter(api.Handlers{
		Task:         handler.NewTaskHandler(taskService, adapter, logger),
		Application:  handler.NewApplicationHandler(applicationService, adapter, logger),
		Availability: handler.NewAvailabilityHandler(availabilityService, adapter, logger),
		Appointment:  handler.NewAppointmentHandler(appointmentService, adapter, logger),
		User:         handler.NewUserHandler(userService, adapter, logger),
		Health:       handler.NewHealthHandler(store, adapter, logger),
	}, middleware.JWTAuth(cfg.JWT.Secret, logger))

	server := &fasthttp.Server{
		Handler:      api.Handler(r, logger),
		Name:         "tutor-market",
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		Logger:       zap.NewStdLog(logger),
	}
	lifecycle.Register("http", server.ShutdownWithContext)

	if cfg.TelegramToken != "" {
		tg, err := telegram.New(cfg.TelegramToken, telegram.Services{
			Users:        userService,
			Appointments: appointmentService,
			Availability: availabilityService,
			Applications: applicationService,
		}, logger)
		if err != nil {
			return fmt.Errorf("init telegram: %w", err)
		}

		botCtx, stopBot := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			tg.Start(botCtx)
		}()
		lifecycle.Register("telegram", func(ctx context.Context) error {
			stopBot()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	} else {
		logger.Info("TELEGRAM_TOKEN is not set, bot disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		errCh <- server.ListenAndServe(cfg.HTTP.Addr)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return errors.New("http server stopped unexpectedly")
	}
}

// openStore выбирает хранилище по STORAGE_BACKEND
func openStore(ctx context.Context, cfg *config.Config, lifecycle *app.Lifecycle, logger *zap.Logger) (repository.Store, error) {
	if cfg.Storage.Backend == config.StorageMemory {
		if cfg.IsProduction() {
			logger.Warn("Using in-memory storage in production, data is lost on restart")
		}
		return memory.NewStore(), nil
	}

	pool, err := pgxpool.New(ctx, cfg.Storage.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	lifecycle.Register("postgres", func(context.Context) error {
		pool.Close()
		return nil
	})

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.Storage.RunMigrations {
		migrator, err := app.NewMigrator(pool, migrations.FS, logger)
		if err != nil {
			return nil, err
		}
		defer migrator.Close()

		if err := migrator.Run(ctx); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return repository.NewPostgresStore(pool), nil
}
