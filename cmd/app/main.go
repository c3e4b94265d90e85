package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/airscheduling/config"
	"github.com/Domenick1991/airscheduling/internal/bootstrap"
	"github.com/Domenick1991/airscheduling/internal/cache"
	"github.com/Domenick1991/airscheduling/internal/inventory"
	"github.com/Domenick1991/airscheduling/internal/kafka"
	"github.com/Domenick1991/airscheduling/internal/logging"
	"github.com/Domenick1991/airscheduling/internal/metrics"
	"github.com/Domenick1991/airscheduling/internal/repository"
	"github.com/Domenick1991/airscheduling/internal/schedule"
	"github.com/Domenick1991/airscheduling/internal/service/booking"
	"github.com/Domenick1991/airscheduling/internal/service/fleet"
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
	orderRepo := repository.NewOrderRepository(pool)

	checker := schedule.NewChecker(fleetRepo, crewRepo, flightRepo)
	suggester := schedule.NewSuggester(checker, fleetRepo, crewRepo, flightRepo)
	routeCache := cache.NewRouteCache(flightRepo)

	flightService := flights.NewService(
		flightRepo,
		crewRepo,
		checker,
		suggester,
		routeCache,
		redisCache,
		producer,
		reg,
		cfg.Kafka.FlightEventsTopic,
		cfg.Kafka.OrderEventsTopic,
		time.Duration(cfg.Booking.FlightCancelCutoffHours)*time.Hour,
	)
	orderService := booking.NewService(
		inventory.NewManager(pool, cfg.Booking.CancellationFeePercent),
		flightRepo,
		orderRepo,
		redisCache,
		redisCache,
		producer,
		reg,
		cfg.Kafka.OrderEventsTopic,
		cfg.Kafka.NotificationsTopic,
		time.Duration(cfg.Booking.SeatHoldTTLMinutes)*time.Minute,
		time.Duration(cfg.Booking.OrderCancelCutoffHours)*time.Hour,
	)
	fleetService := fleet.NewService(fleetRepo, crewRepo)

	if err := bootstrap.Run(ctx, cfg, reg, flightService, orderService, fleetService); err != nil {
		logging.Fatal("server error", "error", err)
	}
}
