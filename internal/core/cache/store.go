package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"pantry-recommender/internal/infrastructure/config"
)

// Store 推薦結果快取；未命中時回傳 common.ErrCacheMiss
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Stats() map[string]interface{}
	Close() error
}

// New 依設定建立快取；停用時回傳 nil
func New(cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		store, err := NewRedisStore(cfg.Cache, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.CacheBackendMemory, "":
		return NewManager(cfg.Cache), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

// Key 以請求內容的 SHA-256 產生快取鍵
func Key(namespace string, request interface{}) (string, error) {
	data, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cache key: %w", err)
	}
	hash := sha256.Sum256(data)
	return namespace + ":" + hex.EncodeToString(hash[:]), nil
}
