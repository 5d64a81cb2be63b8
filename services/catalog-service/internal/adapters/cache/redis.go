package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/go-redis/redis/v8"
)

// RedisCache реализация CachePort поверх Redis.
// Все ключи хранятся с префиксом сервиса.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache создает клиент Redis и проверяет соединение
func NewRedisCache(ctx context.Context, host string, port int, password string, db int, prefix string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, prefix: prefix}, nil
}

func (r *RedisCache) buildKey(key string) string {
	if r.prefix != "" {
		return r.prefix + ":" + key
	}
	return key
}

// Get получает значение по ключу. Возвращает interfaces.ErrCacheMiss, если ключа нет.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.buildKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, interfaces.ErrCacheMiss
		}
		return nil, fmt.Errorf("ошибка чтения из Redis: %w", err)
	}
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if err := r.client.Set(ctx, r.buildKey(key), value, expiration).Err(); err != nil {
		return fmt.Errorf("ошибка записи в Redis: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.buildKey(key)).Err()
}

// Ping проверяет доступность Redis
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
