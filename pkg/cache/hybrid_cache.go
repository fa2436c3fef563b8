// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-arcade/agileboard/pkg/log"
	"github.com/redis/go-redis/v9"
)

// HybridCacheConfig holds hybrid cache configuration
type HybridCacheConfig struct {
	LocalEnabled  bool
	RemoteEnabled bool
	LocalTTLRatio float64 // Ratio of remote TTL used for the local copy (0.0-1.0)
}

// HybridCache reads from the local fastcache first and falls back to
// redis, copying remote hits into the local layer. Writes go to both.
type HybridCache struct {
	local  *FastCache
	remote ICache
	config HybridCacheConfig
}

// NewHybridCache creates a new HybridCache instance
func NewHybridCache(local *FastCache, remote ICache, config HybridCacheConfig) *HybridCache {
	if local == nil {
		config.LocalEnabled = false
	}
	if remote == nil {
		config.RemoteEnabled = false
	}
	return &HybridCache{local: local, remote: remote, config: config}
}

func (hc *HybridCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if hc.config.LocalEnabled {
		if cmd := hc.local.Get(ctx, key); cmd.Err() == nil {
			log.Debugw("hybrid cache hit (local)", "key", key)
			return cmd
		}
	}

	if hc.config.RemoteEnabled {
		cmd := hc.remote.Get(ctx, key)
		switch err := cmd.Err(); {
		case err == nil:
			log.Debugw("hybrid cache hit (remote)", "key", key)
			if hc.config.LocalEnabled {
				hc.local.Set(ctx, key, cmd.Val(), hc.localTTL(time.Minute))
			}
			return cmd
		case !errors.Is(err, redis.Nil):
			log.Warnw("hybrid cache remote get failed", "key", key, "error", err)
		}
	}

	return missCmd(ctx, key)
}

func (hc *HybridCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	cmd.SetVal("OK")

	if hc.config.LocalEnabled {
		if res := hc.local.Set(ctx, key, value, hc.localTTL(expiration)); res.Err() != nil {
			return res
		}
	}
	if hc.config.RemoteEnabled {
		if res := hc.remote.Set(ctx, key, value, expiration); res.Err() != nil {
			log.Warnw("hybrid cache remote set failed", "key", key, "error", res.Err())
			return res
		}
	}
	return cmd
}

func (hc *HybridCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	var n int64
	if hc.config.LocalEnabled {
		n = hc.local.Del(ctx, keys...).Val()
	}
	if hc.config.RemoteEnabled {
		res := hc.remote.Del(ctx, keys...)
		if res.Err() != nil {
			return res
		}
		n = max(n, res.Val())
	}
	cmd.SetVal(n)
	return cmd
}

// localTTL shortens the local copy so remote invalidations win.
func (hc *HybridCache) localTTL(remoteTTL time.Duration) time.Duration {
	if hc.config.LocalTTLRatio > 0 && hc.config.LocalTTLRatio < 1.0 && remoteTTL > 0 {
		return time.Duration(float64(remoteTTL) * hc.config.LocalTTLRatio)
	}
	return remoteTTL
}
