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

	"github.com/bytedance/sonic"
	"github.com/go-arcade/agileboard/pkg/log"
	"golang.org/x/sync/singleflight"
)

// LoadFunc loads the value for a key on cache miss
type LoadFunc[T any] func(ctx context.Context) (T, error)

// CachedQuery is a cache-aside helper. Values are stored as JSON and
// concurrent misses on the same key share a single load.
type CachedQuery[T any] struct {
	cache     ICache
	prefix    string
	ttl       time.Duration
	logPrefix string
	group     singleflight.Group
}

// CachedQueryOption configures CachedQuery behavior
type CachedQueryOption[T any] func(*CachedQuery[T])

func WithTTL[T any](ttl time.Duration) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.ttl = ttl
	}
}

func WithLogPrefix[T any](prefix string) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.logPrefix = prefix
	}
}

// NewCachedQuery creates a CachedQuery storing its keys under prefix.
// A nil cache disables caching but keeps the singleflight behaviour.
func NewCachedQuery[T any](cache ICache, prefix string, opts ...CachedQueryOption[T]) *CachedQuery[T] {
	cq := &CachedQuery[T]{
		cache:     cache,
		prefix:    prefix,
		ttl:       time.Hour,
		logPrefix: "[CachedQuery]",
	}
	for _, opt := range opts {
		opt(cq)
	}
	return cq
}

func (cq *CachedQuery[T]) key(id string) string {
	return cq.prefix + id
}

// GetOrLoad returns the cached value for id or calls load and caches its
// result. Load errors are not cached.
func (cq *CachedQuery[T]) GetOrLoad(ctx context.Context, id string, load LoadFunc[T]) (T, error) {
	cacheKey := cq.key(id)

	if cq.cache != nil {
		data, err := cq.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var result T
			if err := sonic.UnmarshalString(data, &result); err == nil {
				log.Debugw(cq.logPrefix+" cache hit", "key", cacheKey)
				return result, nil
			}
			log.Warnw(cq.logPrefix+" failed to unmarshal cached data", "key", cacheKey, "error", err)
		} else if !errors.Is(err, ErrCacheMiss) {
			log.Warnw(cq.logPrefix+" cache get error", "key", cacheKey, "error", err)
		}
	}

	v, err, _ := cq.group.Do(cacheKey, func() (any, error) {
		result, err := load(ctx)
		if err != nil {
			return result, err
		}
		cq.store(ctx, cacheKey, result)
		return result, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func (cq *CachedQuery[T]) store(ctx context.Context, cacheKey string, result T) {
	if cq.cache == nil {
		return
	}
	data, err := sonic.MarshalString(result)
	if err != nil {
		log.Warnw(cq.logPrefix+" failed to marshal result for caching", "key", cacheKey, "error", err)
		return
	}
	if err := cq.cache.Set(ctx, cacheKey, data, cq.ttl).Err(); err != nil {
		log.Warnw(cq.logPrefix+" failed to cache result", "key", cacheKey, "error", err)
	}
}

// Invalidate removes the cached value for id
func (cq *CachedQuery[T]) Invalidate(ctx context.Context, id string) error {
	if cq.cache == nil {
		return nil
	}
	if err := cq.cache.Del(ctx, cq.key(id)).Err(); err != nil {
		log.Warnw(cq.logPrefix+" failed to invalidate cache", "key", cq.key(id), "error", err)
		return err
	}
	return nil
}
