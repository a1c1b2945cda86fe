package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	CatalogCachePrefix = "catalog:v:"
	CacheVersionKey    = "catalog:version"
)

// CacheManager caches public read responses in Redis. Keys embed a version
// counter so one INCR invalidates every cached response. A nil client
// disables caching.
type CacheManager struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCacheManager(rdb *redis.Client) *CacheManager {
	return &CacheManager{redis: rdb, ttl: DefaultCacheTTL}
}

// Get decodes the cached value for key into dst and reports whether it was found.
func (cm *CacheManager) Get(ctx context.Context, key string, dst interface{}) bool {
	if cm == nil || cm.redis == nil {
		return false
	}
	version, err := cm.getCacheVersion(ctx)
	if err != nil {
		return false
	}
	cached, err := cm.redis.Get(ctx, cm.versionedKey(version, key)).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(cached, dst); err != nil {
		zap.L().Warn("Failed to unmarshal cached response", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// SetAsync stores value under key without blocking the request.
func (cm *CacheManager) SetAsync(key string, value interface{}) {
	if cm == nil || cm.redis == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		zap.L().Warn("Failed to marshal response for cache", zap.String("key", key), zap.Error(err))
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := cm.getCacheVersion(ctx)
		if err != nil {
			return
		}
		if err := cm.redis.Set(ctx, cm.versionedKey(version, key), payload, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
		}
	}()
}

// Invalidate drops every cached response by bumping the version.
func (cm *CacheManager) Invalidate(ctx context.Context) {
	if cm == nil || cm.redis == nil {
		return
	}
	newVersion, err := cm.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		zap.L().Error("Failed to invalidate cache", zap.Error(err))
		return
	}
	zap.L().Debug("Cache invalidated", zap.Int64("new_version", newVersion))
}

func (cm *CacheManager) versionedKey(version int64, key string) string {
	return fmt.Sprintf("%s%d:%s", CatalogCachePrefix, version, key)
}

func (cm *CacheManager) getCacheVersion(ctx context.Context) (int64, error) {
	ver, err := cm.redis.Get(ctx, CacheVersionKey).Int64()
	if err == nil && ver > 0 {
		return ver, nil
	}
	if errors.Is(err, redis.Nil) {
		if err := cm.redis.SetNX(ctx, CacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return cm.redis.Get(ctx, CacheVersionKey).Int64()
	}
	if err == nil {
		err = fmt.Errorf("invalid cache version %d", ver)
	}
	return 0, err
}
