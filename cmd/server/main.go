package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/strikeit/strikeit-api/internal/config"
	"github.com/strikeit/strikeit-api/internal/database"
	"github.com/strikeit/strikeit-api/internal/handler"
	"github.com/strikeit/strikeit-api/internal/middleware"
	"github.com/strikeit/strikeit-api/internal/queue"
	"github.com/strikeit/strikeit-api/internal/repository"
	"github.com/strikeit/strikeit-api/internal/router"
	"github.com/strikeit/strikeit-api/internal/service"
	"github.com/strikeit/strikeit-api/internal/validator"
)

func newLogger(dev bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		newLogger(false).Fatal("invalid configuration", zap.Error(err))
	}
	logger := newLogger(cfg.IsDev())
	defer func() { _ = logger.Sync() }()
	if envErr != nil {
		logger.Warn(".env not loaded, using process environment", zap.Error(envErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, database.Migrations, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	rdb := config.NewRedisClient(logger)
	if rdb != nil {
		defer rdb.Close()
	}

	// repositories
	locationRepo := repository.NewLocationRepo(db)
	productRepo := repository.NewProductRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	cartRepo := repository.NewCartRepo(db)
	discountRepo := repository.NewDiscountRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	communityRepo := repository.NewCommunityRepo(db)
	reviewRepo := repository.NewReviewRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	userRepo := repository.NewUserRepo(db)

	// services
	availability := service.NewAvailabilityService(locationRepo, bookingRepo, cfg.OperatingHourStart, cfg.OperatingHourEnd)
	bookings := service.NewBookingService(locationRepo, bookingRepo, logger, cfg.OperatingHourStart, cfg.OperatingHourEnd)
	vouchers := service.NewVoucherService(discountRepo, notificationRepo, logger)
	checkout := service.NewCheckoutService(cartRepo, orderRepo, vouchers, logger, cfg.CheckoutTimeout)
	carts := service.NewCartService(cartRepo, productRepo, logger)
	notifier := service.NewOutboxNotifier(notificationRepo, db)
	community := service.NewCommunityService(communityRepo, userRepo, notifier, logger)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.EchoValidator{}
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Metrics())

	router.Register(e, router.Handlers{
		Catalog:       handler.NewCatalogHandler(locationRepo, productRepo, availability),
		Reviews:       handler.NewReviewHandler(reviewRepo, locationRepo),
		Cart:          handler.NewCartHandler(carts, cartRepo),
		Orders:        handler.NewOrderHandler(checkout, orderRepo),
		Bookings:      handler.NewBookingHandler(bookings, bookingRepo),
		Discounts:     handler.NewDiscountHandler(vouchers),
		Community:     handler.NewCommunityHandler(community, communityRepo),
		Notifications: handler.NewNotificationHandler(notificationRepo),
		Admin:         handler.NewAdminHandler(bookings, vouchers),
		Health:        handler.Health(db),
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     middleware.ResponseCache(config.LoadCacheConfig(), rdb, logger),
		RateLimit: middleware.RateLimit(config.LoadRateLimitConfig(), rdb, logger),
	})

	// notification pipeline: outbox relay -> RabbitMQ -> push consumer
	publisher := queue.NewAMQPPublisher(cfg.AMQPURL, logger)
	defer publisher.Close()
	relay := queue.NewRelay(notificationRepo, publisher, logger, cfg.NotifyInterval, cfg.NotifyMaxAttempts)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		relay.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := queue.StartPushConsumer(ctx, cfg.AMQPURL, queue.NewLogPusher(userRepo, logger), logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("push consumer stopped", zap.Error(err))
		}
	}()

	go func() {
		addr := ":" + cfg.Port
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	wg.Wait()
}
