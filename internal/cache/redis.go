package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/studiobooking/config"
	"github.com/Domenick1991/studiobooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	catalogTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, catalogTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		catalogTTL: catalogTTL,
	}
}

func (c *RedisCache) GetServices(ctx context.Context) ([]domain.ServicePackage, error) {
	data, err := c.client.Get(ctx, servicesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var services []domain.ServicePackage
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *RedisCache) SetServices(ctx context.Context, services []domain.ServicePackage) error {
	payload, err := json.Marshal(services)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, servicesKey(), payload, c.catalogTTL).Err()
}

// AcquireSlotLock takes a short-lived SetNX lock on a (date, time slot) pair
// while a creation request is in flight. It only cheapens the common race;
// the unique index on the bookings table is what actually decides it.
func (c *RedisCache) AcquireSlotLock(ctx context.Context, date, timeSlot string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, slotLockKey(date, timeSlot), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSlotLock(ctx context.Context, date, timeSlot string) error {
	return c.client.Del(ctx, slotLockKey(date, timeSlot)).Err()
}

func servicesKey() string {
	return "cache:services"
}

func slotLockKey(date, timeSlot string) string {
	return fmt.Sprintf("lock:slot:%s:%s", date, timeSlot)
}
