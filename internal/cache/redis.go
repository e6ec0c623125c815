package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/redis/go-redis/v9"
)

const flightKeysSet = "cache:flights:keys"

// RedisCache keeps flight listings and search results. Every stored key is
// remembered in a set so that a seat change can drop all of them at once.
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

func (c *RedisCache) GetFlights(ctx context.Context, key string) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	flights := make([]domain.Flight, 0)
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, key string, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, payload, c.flightsTTL)
	pipe.SAdd(ctx, flightKeysSet, key)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	keys, err := c.client.SMembers(ctx, flightKeysSet).Result()
	if err != nil {
		return err
	}
	keys = append(keys, flightKeysSet)
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func FlightsKey() string {
	return "cache:flights:all"
}

func SearchKey(q domain.FlightSearch) string {
	date := "any"
	if start, _, ok := q.DayRange(); ok {
		date = start.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("cache:flights:search:%q:%q:%s", q.DepartureCity, q.ArrivalCity, date)
}
