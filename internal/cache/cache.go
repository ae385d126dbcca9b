// cache содержит Redis-кэш публичного списка категорий.
// Кэш необязателен: при пустом REDIS_URL сервис работает напрямую с хранилищем.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/pribylovaa/go-news-portal/internal/models"
	"github.com/redis/go-redis/v9"
)

// CategoriesCache: минимальный контракт кэша категорий.
type CategoriesCache interface {
	// Get возвращает список и признак его наличия в кэше.
	Get(ctx context.Context) ([]models.CategoryCount, bool, error)
	// Set сохраняет список с TTL.
	Set(ctx context.Context, list []models.CategoryCount, ttl time.Duration) error
	// Invalidate сбрасывает запись (после изменений статей).
	Invalidate(ctx context.Context) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой: используется "news:".
func NewRedisCache(ctx context.Context, redisURL, prefix string) (CategoriesCache, error) {
	if prefix == "" {
		prefix = "news:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key() string { return c.prefix + "categories" }

// Храним как JSON-строку.
func (c *redisCache) Get(ctx context.Context) ([]models.CategoryCount, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, err
	}

	var list []models.CategoryCount
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false, err
	}

	return list, true, nil
}

func (c *redisCache) Set(ctx context.Context, list []models.CategoryCount, ttl time.Duration) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, c.key(), raw, ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key()).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
