// Copyright (c) 2026 Tosho. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package perm

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/tosho/internal/platform/constants"
)

// # Volatile Effective-Set Cache

// RedisCache implements the Cache interface on Redis.
//
// Entries are JSON-encoded grant sets under "authz:effective:<user>". The
// database stays the source of truth; any Redis fault degrades to a miss.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisCache creates the Redis-backed effective-set cache.
func NewRedisCache(client *redis.Client, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

// key builds the cache key for a user.
func (cache *RedisCache) key(userID string) string {
	return constants.RedisPrefixEffectivePerms + userID
}

// Get returns the cached set for a user, or (nil, false) on miss.
func (cache *RedisCache) Get(ctx context.Context, userID string) (GrantSet, bool) {
	payload, err := cache.client.Get(ctx, cache.key(userID)).Bytes()
	if err != nil {
		// redis.Nil is the ordinary miss; anything else degrades to one.
		if err != redis.Nil {
			cache.logger.Warn("perm_cache_get_failed", slog.Any("error", err))
		}
		return nil, false
	}

	var set GrantSet
	if err := json.Unmarshal(payload, &set); err != nil {
		cache.logger.Warn("perm_cache_decode_failed", slog.Any("error", err))
		return nil, false
	}

	return set, true
}

// Set stores the set for a user with the standard TTL.
func (cache *RedisCache) Set(ctx context.Context, userID string, set GrantSet) {
	payload, err := json.Marshal(set)
	if err != nil {
		cache.logger.Warn("perm_cache_encode_failed", slog.Any("error", err))
		return
	}

	if err := cache.client.Set(ctx, cache.key(userID), payload, constants.EffectivePermsTTL).Err(); err != nil {
		cache.logger.Warn("perm_cache_set_failed", slog.Any("error", err))
	}
}

// InvalidateUser drops one user's cached set.
func (cache *RedisCache) InvalidateUser(ctx context.Context, userID string) {
	if err := cache.client.Del(ctx, cache.key(userID)).Err(); err != nil {
		cache.logger.Warn("perm_cache_invalidate_failed", slog.Any("error", err))
	}
}

// InvalidateAll drops every cached set. Used after role-level writes, where
// any holder's effective set may have changed.
func (cache *RedisCache) InvalidateAll(ctx context.Context) {
	iter := cache.client.Scan(ctx, 0, constants.RedisPrefixEffectivePerms+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := cache.client.Del(ctx, iter.Val()).Err(); err != nil {
			cache.logger.Warn("perm_cache_flush_failed", slog.Any("error", err))
		}
	}
	if err := iter.Err(); err != nil {
		cache.logger.Warn("perm_cache_scan_failed", slog.Any("error", err))
	}
}
