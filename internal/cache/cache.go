package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iurnickita/bakery/internal/cache/config"
)

type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get возвращает nil без ошибки, если ключа нет
	Get(ctx context.Context, key string) ([]byte, error)
	GenerateKey(operation, key string) string
}

type redisCache struct {
	client      *redis.Client
	serviceName string
}

// NewCache возвращает nil, если Redis не настроен.
func NewCache(cfg config.Config, serviceName string) Cache {
	if cfg.RedisAddr == "" {
		return nil
	}
	return &redisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}),
		serviceName: serviceName,
	}
}

func (r redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r redisCache) GenerateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.serviceName, operation, key)
}
