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

package config

import (
	"github.com/go-arcade/agileboard/internal/pkg/identity"
	"github.com/go-arcade/agileboard/internal/pkg/notify"
	"github.com/go-arcade/agileboard/pkg/cache"
	"github.com/go-arcade/agileboard/pkg/database"
	"github.com/go-arcade/agileboard/pkg/http"
	"github.com/go-arcade/agileboard/pkg/log"
	"github.com/go-arcade/agileboard/pkg/metrics"
	"github.com/go-arcade/agileboard/pkg/pprof"
	"github.com/go-arcade/agileboard/pkg/trace"
	"github.com/google/wire"
)

// ProviderSet 提供配置层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideHttpConfig,
	ProvideLogConfig,
	ProvideDatabaseConfig,
	ProvideRedisConfig,
	ProvideCacheConfig,
	ProvideIdentityConfig,
	ProvideNotifyConfig,
	ProvideMetricsConfig,
	ProvideTraceConfig,
	ProvidePprofConfig,
)

// ProvideHttpConfig 提供 HTTP 配置
func ProvideHttpConfig(appConf *AppConfig) *http.Http {
	httpConfig := &appConf.Http
	httpConfig.SetDefaults()
	return httpConfig
}

// ProvideLogConfig 提供日志配置
func ProvideLogConfig(appConf *AppConfig) *log.Conf {
	return &appConf.Log
}

// ProvideDatabaseConfig 提供数据库配置
func ProvideDatabaseConfig(appConf *AppConfig) database.Database {
	conf := appConf.Database
	conf.Tracing.Enabled = appConf.Trace.Enabled
	return conf
}

// ProvideRedisConfig 提供 Redis 配置
func ProvideRedisConfig(appConf *AppConfig) cache.Redis {
	return appConf.Redis
}

func ProvideCacheConfig(appConf *AppConfig) cache.Config {
	return appConf.Cache
}

func ProvideIdentityConfig(appConf *AppConfig) identity.Conf {
	c := appConf.Identity
	c.SetDefaults()
	return c
}

func ProvideNotifyConfig(appConf *AppConfig) notify.Conf {
	c := appConf.Notify
	c.SetDefaults()
	return c
}

// ProvideMetricsConfig 提供 Metrics 配置
func ProvideMetricsConfig(appConf *AppConfig) metrics.MetricsConfig {
	return appConf.Metrics
}

func ProvideTraceConfig(appConf *AppConfig) trace.Conf {
	return appConf.Trace
}

// ProvidePprofConfig 提供 Pprof 配置
func ProvidePprofConfig(appConf *AppConfig) pprof.PprofConfig {
	return appConf.Pprof
}
