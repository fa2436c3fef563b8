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
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

// defaultLocalMaxBytes is the default local cache size (32MB)
const defaultLocalMaxBytes = 32 * 1024 * 1024

// ProviderSet 提供缓存依赖（Redis + 本地 FastCache）
var ProviderSet = wire.NewSet(
	ProvideRedisCmdable,
	ProvideFastCache,
	ProvideICache,
)

// ProvideRedisCmdable returns nil when the remote layer is disabled.
func ProvideRedisCmdable(conf Redis, cacheConf Config) (redis.Cmdable, error) {
	if !cacheConf.RemoteEnabled {
		return nil, nil
	}
	return NewRedisCmdable(conf)
}

func ProvideFastCache(conf Config) *FastCache {
	maxBytes := conf.LocalMaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultLocalMaxBytes
	}
	return NewFastCache(FastCacheConfig{MaxBytes: maxBytes})
}

// ProvideICache builds the tiered cache used by the application.
func ProvideICache(conf Config, local *FastCache, cmdable redis.Cmdable) ICache {
	var remote ICache
	if cmdable != nil {
		remote = NewRedisCache(cmdable)
	}
	return NewHybridCache(local, remote, HybridCacheConfig{
		LocalEnabled:  conf.LocalEnabled,
		RemoteEnabled: conf.RemoteEnabled,
		LocalTTLRatio: conf.LocalTTLRatio,
	})
}
