package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/dronedelivery/config"
	"github.com/Domenick1991/dronedelivery/internal/bootstrap"
	"github.com/Domenick1991/dronedelivery/internal/cache"
	"github.com/Domenick1991/dronedelivery/internal/kafka"
	"github.com/Domenick1991/dronedelivery/internal/logger"
	"github.com/Domenick1991/dronedelivery/internal/repository"
	"github.com/Domenick1991/dronedelivery/internal/route"
	"github.com/Domenick1991/dronedelivery/internal/service/availability"
	"github.com/Domenick1991/dronedelivery/internal/service/booking"
	"github.com/Domenick1991/dronedelivery/internal/service/drones"
	"github.com/Domenick1991/dronedelivery/internal/service/projector"
	"github.com/Domenick1991/dronedelivery/internal/service/scheduler"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(run())
}

// run wires the app and blocks until shutdown. It returns the process exit
// code so deferred cleanup runs before main exits.
func run() int {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Printf("load config: %v", err)
		return 1
	}
	logg := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logg.Error("connect postgres", "error", err)
		return 1
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		logg.Error("migrate", "error", err)
		return 1
	}
	if added, err := repository.SeedFleet(ctx, pool, cfg.Booking.FleetSize); err != nil {
		logg.Error("seed fleet", "error", err)
		return 1
	} else if added > 0 {
		logg.Info("fleet seeded", "added", added)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.FleetCacheTTL())
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		logg.Warn("redis unavailable", "error", err)
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logg)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		logg.Warn("kafka unavailable", "error", err)
	}

	routes, err := route.New(cfg.Route)
	if err != nil {
		logg.Error("route provider", "error", err)
		return 1
	}

	deliveryRepo := repository.NewDeliveryRepository(pool)
	droneRepo := repository.NewDroneRepository(pool)
	jobRepo := repository.NewJobRepository(pool)

	droneService := drones.NewDroneService(droneRepo, redisCache, logg)
	resolver := availability.NewResolver(droneService, deliveryRepo, cfg.Booking.ReturnBuffer())

	trigger := booking.NewStartTrigger(deliveryRepo, droneService, producer, cfg.Kafka.DeliveryStartTopic, logg)
	sched := scheduler.NewScheduler(jobRepo, trigger, logg)
	if err := sched.Start(ctx); err != nil {
		logg.Error("start scheduler", "error", err)
		return 1
	}
	defer sched.Stop()

	bookingService := booking.NewBookingService(
		deliveryRepo,
		resolver,
		sched,
		routes,
		redisCache,
		producer,
		cfg.Kafka.DeliveryChangedTopic,
		logg,
		booking.WithDeletedTopic(cfg.Kafka.DeliveryDeletedTopic),
		booking.WithMinLeadTime(cfg.Booking.MinLeadTime()),
		booking.WithLockTTL(cfg.Booking.DroneLockTTL()),
		booking.WithDroneReader(droneService),
	)

	statusProjector := projector.NewProjector(deliveryRepo, droneService, cfg.Booking.ReturnBuffer(), logg)
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.AppGroupID, cfg.Kafka.DroneStatusTopic, logg)
	defer consumer.Close()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return consumer.Consume(ctx, kafka.Decode(statusProjector.HandleDroneStatusChanged))
	})
	eg.Go(func() error {
		return bootstrap.Run(ctx, cfg.HTTP, bookingService, droneService, logg)
	})

	if err := eg.Wait(); err != nil {
		logg.Error("app stopped", "error", err)
		return 1
	}
	logg.Info("app stopped")
	return 0
}
