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
	"errors"
	"fmt"
	"time"

	"github.com/go-arcade/agileboard/pkg/cache"
	"github.com/go-arcade/agileboard/pkg/log"
	"github.com/google/wire"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrNotConfigured = errors.New("identity provider not configured")
)

// Provider validates bearer tokens against the external identity service
// and writes user metadata back to it.
type Provider interface {
	Validate(ctx context.Context, token string) (*Payload, error)
	UpdateMetadata(ctx context.Context, externalId string, metadata map[string]any) error
	Name() string
}

var ProviderSet = wire.NewSet(ProvideProvider)

// ProvideProvider selects the client from conf and puts the validation
// cache in front of it when a TTL is configured.
func ProvideProvider(conf Conf, c cache.ICache) (Provider, error) {
	p, err := New(conf)
	if err != nil {
		return nil, err
	}
	if conf.CacheTTL > 0 {
		p = NewCachedProvider(p, c, time.Duration(conf.CacheTTL)*time.Second)
	}
	log.Infow("identity provider selected", "provider", p.Name(), "mode", conf.Mode)
	return p, nil
}

// New builds the provider client for conf.Mode.
func New(conf Conf) (Provider, error) {
	conf.SetDefaults()
	timeout := time.Duration(conf.Timeout) * time.Second

	switch conf.Mode {
	case ModeToken:
		if conf.JWTSecret == "" {
			return nil, fmt.Errorf("%w: token mode needs jwtSecret", ErrNotConfigured)
		}
		return NewTokenClient(conf.JWTSecret, newAdminClient(conf.URL, conf.ServiceKey, timeout)), nil
	case ModeHTTP:
		if conf.URL == "" || conf.AnonKey == "" {
			return nil, fmt.Errorf("%w: http mode needs url and anonKey", ErrNotConfigured)
		}
		return NewHTTPClient(conf.URL, conf.AnonKey, newAdminClient(conf.URL, conf.ServiceKey, timeout), timeout), nil
	case ModeAuto:
		if conf.JWTSecret != "" {
			conf.Mode = ModeToken
			return New(conf)
		}
		if conf.URL != "" && conf.AnonKey != "" {
			conf.Mode = ModeHTTP
			return New(conf)
		}
		return nil, fmt.Errorf("%w: set jwtSecret or url and anonKey", ErrNotConfigured)
	default:
		return nil, fmt.Errorf("unknown identity mode: %s", conf.Mode)
	}
}
