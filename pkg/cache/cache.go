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
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates that the key was not found in cache
var ErrCacheMiss = redis.Nil

// ICache is the subset of redis commands the caches share. Local and
// tiered caches answer with redis command values so callers handle every
// layer the same way.
type ICache interface {
	// Get 获取缓存值，未命中时返回 redis.Nil
	Get(ctx context.Context, key string) *redis.StringCmd
	// Set 设置缓存值
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	// Del 删除缓存
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Config 缓存配置
type Config struct {
	LocalEnabled  bool    `mapstructure:"localEnabled"`
	LocalMaxBytes int     `mapstructure:"localMaxBytes"`
	LocalTTLRatio float64 `mapstructure:"localTTLRatio"`
	RemoteEnabled bool    `mapstructure:"remoteEnabled"`
}

func missCmd(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	cmd.SetErr(redis.Nil)
	return cmd
}

func hitCmd(ctx context.Context, key, val string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	cmd.SetVal(val)
	return cmd
}
