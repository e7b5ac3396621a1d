package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/angelmondragon/gearshare-backend/api/controllers"
	"github.com/angelmondragon/gearshare-backend/api/routes"
	"github.com/angelmondragon/gearshare-backend/internal/auth"
	"github.com/angelmondragon/gearshare-backend/internal/bookings"
	"github.com/angelmondragon/gearshare-backend/internal/listings"
	"github.com/angelmondragon/gearshare-backend/internal/media"
	"github.com/angelmondragon/gearshare-backend/internal/users"
	"github.com/angelmondragon/gearshare-backend/pkg/auth/session"
	"github.com/angelmondragon/gearshare-backend/pkg/config"
	"github.com/angelmondragon/gearshare-backend/pkg/db"
	"github.com/angelmondragon/gearshare-backend/pkg/logger"
	"github.com/angelmondragon/gearshare-backend/pkg/metrics"
	"github.com/angelmondragon/gearshare-backend/pkg/migrate"
	"github.com/angelmondragon/gearshare-backend/pkg/pubsub"
	"github.com/angelmondragon/gearshare-backend/pkg/redis"
	"github.com/angelmondragon/gearshare-backend/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	closeAll := func() {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i]())
		}
		if errs != nil {
			logg.Error(context.Background(), "error releasing resources", errs)
		}
	}
	fail := func(msg string, err error) {
		logg.Error(context.Background(), msg, err)
		closeAll()
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		fail("failed to bootstrap database", err)
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		fail("failed to run dev migrations", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		fail("failed to bootstrap redis", err)
	}
	closers = append(closers, redisClient.Close)

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		fail("failed to bootstrap gcs", err)
	}

	registry := metrics.NewRegistry()
	readiness := []controllers.ReadinessCheck{
		{Name: "database", Ping: dbClient.Ping},
		{Name: "redis", Ping: redisClient.Ping},
		{Name: "gcs", Ping: gcsClient.Ping},
	}

	var publisher bookings.EventPublisher = bookings.NopPublisher{}
	if cfg.FeatureFlags.PublishEvents && cfg.PubSub.BookingsTopic != "" {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			fail("failed to bootstrap pubsub", err)
		}
		closers = append(closers, psClient.Close)
		publisher = bookings.NewPubSubPublisher(psClient)
		readiness = append(readiness, controllers.ReadinessCheck{Name: "pubsub", Ping: psClient.Ping})
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		fail("failed to create session manager", err)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		fail("failed to create auth service", err)
	}

	relay, err := media.NewRelay(media.RelayParams{
		Store:    gcsClient,
		MaxBytes: cfg.Media.MaxUploadBytes,
		Metrics:  metrics.NewUploadMetrics(registry),
		Logger:   logg,
	})
	if err != nil {
		fail("failed to create upload relay", err)
	}

	listingRepo := listings.NewRepository(dbClient.DB())
	listingService, err := listings.NewService(listings.ServiceParams{
		Repo:   listingRepo,
		Media:  relay,
		Logger: logg,
	})
	if err != nil {
		fail("failed to create listing service", err)
	}

	bookingService, err := bookings.NewService(bookings.ServiceParams{
		Repo:      bookings.NewRepository(dbClient.DB()),
		Services:  listingRepo,
		Publisher: publisher,
		Metrics:   metrics.NewBookingMetrics(registry),
		Logger:    logg,
	})
	if err != nil {
		fail("failed to create booking service", err)
	}

	router, err := routes.NewRouter(routes.Dependencies{
		Config:      cfg,
		Logger:      logg,
		Sessions:    sessionManager,
		RateLimiter: redisClient,
		Auth:        authService,
		Listings:    listingService,
		Bookings:    bookingService,
		Readiness:   readiness,
		Gatherer:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
	})
	if err != nil {
		fail("failed to build router", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	runCtx := logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": addr})

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(runCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fail("api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(runCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "graceful shutdown failed", err)
		}
	}

	closeAll()
	logg.Info(runCtx, "api server stopped")
}
