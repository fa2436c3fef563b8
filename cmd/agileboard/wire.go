//go:build wireinject
// +build wireinject

package main

import (
	"github.com/go-arcade/agileboard/internal/bootstrap"
	"github.com/go-arcade/agileboard/internal/engine/config"
	enginemetrics "github.com/go-arcade/agileboard/internal/engine/metrics"
	"github.com/go-arcade/agileboard/internal/engine/repo"
	"github.com/go-arcade/agileboard/internal/engine/router"
	"github.com/go-arcade/agileboard/internal/engine/service"
	"github.com/go-arcade/agileboard/internal/pkg/identity"
	"github.com/go-arcade/agileboard/internal/pkg/notify"
	"github.com/go-arcade/agileboard/pkg/cache"
	"github.com/go-arcade/agileboard/pkg/database"
	"github.com/go-arcade/agileboard/pkg/log"
	"github.com/go-arcade/agileboard/pkg/metrics"
	"github.com/go-arcade/agileboard/pkg/pprof"
	"github.com/go-arcade/agileboard/pkg/trace"
	"github.com/google/wire"
)

func initApp(configPath string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		provideConf,
		config.ProviderSet,
		// 基础设施层
		log.ProviderSet,
		trace.ProviderSet,
		database.ProviderSet,
		cache.ProviderSet,
		metrics.ProviderSet,
		pprof.ProviderSet,
		enginemetrics.ProviderSet,
		// 仓储层
		repo.ProviderSet,
		// 身份与通知
		identity.ProviderSet,
		notify.ProviderSet,
		// 业务层
		service.ProviderSet,
		// 路由层
		router.ProviderSet,
		// 应用层
		bootstrap.NewApp,
	))
}

func provideConf(configPath string) *config.AppConfig {
	appConf := config.NewConf(configPath)
	return &appConf
}
