package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/gearshare-backend/internal/bookings"
	"github.com/angelmondragon/gearshare-backend/internal/cron"
	"github.com/angelmondragon/gearshare-backend/internal/listings"
	"github.com/angelmondragon/gearshare-backend/pkg/config"
	"github.com/angelmondragon/gearshare-backend/pkg/db"
	"github.com/angelmondragon/gearshare-backend/pkg/logger"
	"github.com/angelmondragon/gearshare-backend/pkg/metrics"
	"github.com/angelmondragon/gearshare-backend/pkg/migrate"
	"github.com/angelmondragon/gearshare-backend/pkg/pubsub"
	"github.com/angelmondragon/gearshare-backend/pkg/redis"
)

const lockName = "cron-worker"

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	metricsAddr := flag.String("metrics-addr", "", "address to expose /metrics on, e.g. :9090")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	var publisher bookings.EventPublisher = bookings.NopPublisher{}
	if cfg.FeatureFlags.PublishEvents && cfg.PubSub.BookingsTopic != "" {
		psClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			fail("failed to bootstrap pubsub", err)
		}
		closers = append(closers, psClient.Close)
		publisher = bookings.NewPubSubPublisher(psClient)
	}

	registry := metrics.NewRegistry()
	cronMetrics := metrics.NewCronJobMetrics(registry)

	bookingService, err := bookings.NewService(bookings.ServiceParams{
		Repo:      bookings.NewRepository(dbClient.DB()),
		Services:  listings.NewRepository(dbClient.DB()),
		Publisher: publisher,
		Metrics:   metrics.NewBookingMetrics(registry),
		Logger:    logg,
	})
	if err != nil {
		fail("failed to create booking service", err)
	}

	completionJob, err := cron.NewBookingCompletionJob(cron.BookingCompletionJobParams{
		Logger:   logg,
		Bookings: bookingService,
		Metrics:  cronMetrics,
	})
	if err != nil {
		fail("failed to create booking completion job", err)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName), cfg.Cron.LockTTL)
	if err != nil {
		fail("failed to create cron lock", err)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(completionJob),
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		fail("failed to create cron service", err)
	}

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"interval":    cfg.Cron.Interval.String(),
	})

	if *once {
		if err := service.RunOnce(runCtx); err != nil {
			fail("cron sweep failed", err)
		}
		closeAll()
		return
	}

	if *metricsAddr != "" {
		metricsServer := &http.Server{
			Addr:              *metricsAddr,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Error(runCtx, "metrics server stopped", err)
			}
		}()
		closers = append(closers, metricsServer.Close)
	}

	logg.Info(runCtx, "starting cron worker")
	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		fail("cron worker stopped unexpectedly", err)
	}

	closeAll()
	logg.Info(runCtx, "cron worker shut down")
}
