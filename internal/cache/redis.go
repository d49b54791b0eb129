package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/dronedelivery/config"
	"github.com/Domenick1991/dronedelivery/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	dronesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, dronesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		dronesTTL: dronesTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetDrones returns the cached fleet, or nil on a cache miss.
func (c *RedisCache) GetDrones(ctx context.Context) ([]domain.Drone, error) {
	data, err := c.client.Get(ctx, dronesKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var drones []domain.Drone
	if err := json.Unmarshal(data, &drones); err != nil {
		return nil, err
	}
	return drones, nil
}

func (c *RedisCache) SetDrones(ctx context.Context, drones []domain.Drone) error {
	payload, err := json.Marshal(drones)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, dronesKey(), payload, c.dronesTTL).Err()
}

func (c *RedisCache) InvalidateDrones(ctx context.Context) error {
	return c.client.Del(ctx, dronesKey()).Err()
}

// releaseLock deletes the lock only while it still holds the caller's token.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquireDroneLock reserves the drone for the duration of a booking attempt.
// It returns the token that owns the lock, or "" when another attempt holds it.
func (c *RedisCache) AcquireDroneLock(ctx context.Context, droneID int64, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, droneLockKey(droneID), token, ttl).Result()
	if err != nil || !ok {
		return "", err
	}
	return token, nil
}

// ReleaseDroneLock frees the lock if token still owns it. A lock that expired
// and was taken by another attempt is left alone.
func (c *RedisCache) ReleaseDroneLock(ctx context.Context, droneID int64, token string) error {
	return releaseLock.Run(ctx, c.client, []string{droneLockKey(droneID)}, token).Err()
}

func dronesKey() string {
	return "cache:drones"
}

func droneLockKey(droneID int64) string {
	return fmt.Sprintf("lock:drone:%d", droneID)
}
