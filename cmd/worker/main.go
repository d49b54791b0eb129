package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/dronedelivery/config"
	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/Domenick1991/dronedelivery/internal/kafka"
	"github.com/Domenick1991/dronedelivery/internal/logger"
	"github.com/Domenick1991/dronedelivery/internal/route"
	"github.com/Domenick1991/dronedelivery/internal/service/simulator"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logg := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	routes, err := route.New(cfg.Route)
	if err != nil {
		log.Fatalf("route provider: %v", err)
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logg)
	defer producer.Close()

	sim := simulator.NewSimulator(
		producer,
		routes,
		simulator.Topics{Status: cfg.Kafka.DroneStatusTopic, Position: cfg.Kafka.DronePositionTopic},
		domain.Coordinates{Latitude: cfg.Simulator.HeadOfficeLatitude, Longitude: cfg.Simulator.HeadOfficeLongitude},
		simulator.Delays{
			TransitMax: time.Duration(cfg.Simulator.TransitMaxMillis) * time.Millisecond,
			Loading:    time.Duration(cfg.Simulator.LoadingMillis) * time.Millisecond,
			Waypoint:   time.Duration(cfg.Simulator.WaypointMillis) * time.Millisecond,
		},
		logg,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.WorkerGroupID, cfg.Kafka.DeliveryStartTopic, logg)
	defer consumer.Close()

	logg.Info("worker started", "topic", cfg.Kafka.DeliveryStartTopic)
	if err := consumer.Consume(ctx, kafka.Decode(sim.HandleDeliveryStart)); err != nil {
		logg.Error("consumer stopped", "error", err)
	}

	logg.Info("waiting for flights in progress")
	sim.Wait()
	logg.Info("worker stopped")
}
