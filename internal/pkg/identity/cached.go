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

package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-arcade/agileboard/pkg/cache"
)

const cachePrefix = "agileboard:identity:token:"

// CachedProvider remembers successful validations keyed by the token
// digest. Concurrent validations of one token share a single upstream call.
type CachedProvider struct {
	inner Provider
	query *cache.CachedQuery[*Payload]
}

func NewCachedProvider(inner Provider, c cache.ICache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		query: cache.NewCachedQuery[*Payload](c, cachePrefix,
			cache.WithTTL[*Payload](ttl),
			cache.WithLogPrefix[*Payload]("[identity]"),
		),
	}
}

func (c *CachedProvider) Name() string {
	return "cached-" + c.inner.Name()
}

func (c *CachedProvider) Validate(ctx context.Context, token string) (*Payload, error) {
	return c.query.GetOrLoad(ctx, tokenDigest(token), func(ctx context.Context) (*Payload, error) {
		return c.inner.Validate(ctx, token)
	})
}

func (c *CachedProvider) UpdateMetadata(ctx context.Context, externalId string, metadata map[string]any) error {
	return c.inner.UpdateMetadata(ctx, externalId, metadata)
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
