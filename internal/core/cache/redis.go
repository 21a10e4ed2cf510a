package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"pantry-recommender/internal/infrastructure/config"
	"pantry-recommender/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// redisKeyPrefix Redis 鍵前綴
const redisKeyPrefix = "pantry:"

// RedisStore 以 Redis 儲存推薦結果
type RedisStore struct {
	client *redis.Client
	config config.CacheConfig
	hits   int64
	misses int64
}

// NewRedisStore 創建 Redis 快取並測試連線
func NewRedisStore(cfg config.CacheConfig, rcfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     rcfg.Addr,
		Password: rcfg.Password,
		DB:       rcfg.DB,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg), nil
}

// NewRedisStoreWithClient 使用既有的 Redis client
func NewRedisStoreWithClient(client *redis.Client, cfg config.CacheConfig) *RedisStore {
	return &RedisStore{client: client, config: cfg}
}

// Get 獲取緩存
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			atomic.AddInt64(&s.misses, 1)
			common.LogCacheMiss("redis")
			return nil, common.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	atomic.AddInt64(&s.hits, 1)
	common.LogCacheHit("redis")
	return data, nil
}

// Set 設置緩存
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Stats 獲取緩存統計信息
func (s *RedisStore) Stats() map[string]interface{} {
	return map[string]interface{}{
		"backend": config.CacheBackendRedis,
		"hits":    atomic.LoadInt64(&s.hits),
		"misses":  atomic.LoadInt64(&s.misses),
	}
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
