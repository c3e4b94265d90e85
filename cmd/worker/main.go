package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/airscheduling/config"
	"github.com/Domenick1991/airscheduling/internal/cache"
	"github.com/Domenick1991/airscheduling/internal/email"
	"github.com/Domenick1991/airscheduling/internal/kafka"
	"github.com/Domenick1991/airscheduling/internal/logging"
	"github.com/Domenick1991/airscheduling/internal/metrics"
	"github.com/Domenick1991/airscheduling/internal/repository"
	"github.com/Domenick1991/airscheduling/internal/schedule"
	"github.com/Domenick1991/airscheduling/internal/service/flights"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logging.Init(os.Getenv("APP_ENV")); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logging.Fatal("connect postgres", "error", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	reg := metrics.NewRegistry()

	fleetRepo := repository.NewFleetRepository(pool)
	crewRepo := repository.NewCrewRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)

	checker := schedule.NewChecker(fleetRepo, crewRepo, flightRepo)
	suggester := schedule.NewSuggester(checker, fleetRepo, crewRepo, flightRepo)

	flightService := flights.NewService(
		flightRepo,
		crewRepo,
		checker,
		suggester,
		cache.NewRouteCache(flightRepo),
		redisCache,
		producer,
		reg,
		cfg.Kafka.FlightEventsTopic,
		cfg.Kafka.OrderEventsTopic,
		time.Duration(cfg.Booking.FlightCancelCutoffHours)*time.Hour,
	)

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.ConsumeOrderEvents(ctx, emailSender.Send); err != nil && ctx.Err() == nil {
			logging.Error("consumer stopped", "error", err)
		}
	}()

	sweep := time.NewTicker(time.Duration(cfg.Worker.StatusSweepMinutes) * time.Minute)
	defer sweep.Stop()

	for {
		select {
		case <-sweep.C:
			if _, err := flightService.CompleteDeparted(ctx); err != nil {
				logging.Error("status sweep failed", "error", err)
			}
		case <-ctx.Done():
			logging.Info("worker shutting down")
			return
		}
	}
}
