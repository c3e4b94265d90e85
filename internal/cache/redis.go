package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/airscheduling/config"
	"github.com/Domenick1991/airscheduling/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache carries the short-lived seat holds taken between seat
// selection and order commit, plus the flights list cache. Holds are a
// UX courtesy; the reservation transaction remains the source of truth.
type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

func (c *RedisCache) AcquireSeatHold(ctx context.Context, flightID, seatID int64, holder string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatHoldKey(flightID, seatID), holder, ttl).Result()
}

func (c *RedisCache) ReleaseSeatHold(ctx context.Context, flightID, seatID int64) error {
	return c.client.Del(ctx, seatHoldKey(flightID, seatID)).Err()
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func seatHoldKey(flightID, seatID int64) string {
	return fmt.Sprintf("hold:flight:%d:seat:%d", flightID, seatID)
}
