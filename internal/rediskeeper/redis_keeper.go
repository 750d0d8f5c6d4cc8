package rediskeeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/drstein77/ordercalc/internal/models"
)

// Keys hold whole JSON collections, one value per collection.
const (
	productsKey = "ordercalc:products"
	historyKey  = "ordercalc:history"
	themeKey    = "ordercalc:theme"
)

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

type RedisKeeper struct {
	client *redis.Client
	log    Log
}

func NewRedisKeeper(ctx context.Context, addr, password string, db int, log Log) (*RedisKeeper, error) {
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	log.Info("Connected to redis", zap.String("addr", addr), zap.Int("db", db))
	return &RedisKeeper{client: client, log: log}, nil
}

func (kp *RedisKeeper) LoadProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := kp.load(ctx, productsKey, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (kp *RedisKeeper) SaveProducts(ctx context.Context, products []models.Product) error {
	return kp.save(ctx, productsKey, products)
}

func (kp *RedisKeeper) LoadHistory(ctx context.Context) ([]models.Order, error) {
	var history []models.Order
	if err := kp.load(ctx, historyKey, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (kp *RedisKeeper) SaveHistory(ctx context.Context, history []models.Order) error {
	return kp.save(ctx, historyKey, history)
}

func (kp *RedisKeeper) LoadTheme(ctx context.Context) (string, error) {
	theme, err := kp.client.Get(ctx, themeKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}
	return theme, nil
}

func (kp *RedisKeeper) SaveTheme(ctx context.Context, theme string) error {
	if err := kp.client.Set(ctx, themeKey, theme, 0).Err(); err != nil {
		return fmt.Errorf("failed to write theme: %w", err)
	}
	return nil
}

func (kp *RedisKeeper) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := kp.client.Ping(ctx).Err(); err != nil {
		kp.log.Error("Redis ping failed", zap.Error(err))
		return false
	}
	return true
}

func (kp *RedisKeeper) Close() bool {
	if err := kp.client.Close(); err != nil {
		kp.log.Error("Failed to close redis client", zap.Error(err))
		return false
	}
	kp.log.Info("Redis connection closed")
	return true
}

func (kp *RedisKeeper) load(ctx context.Context, key string, v any) error {
	data, err := kp.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (kp *RedisKeeper) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := kp.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
