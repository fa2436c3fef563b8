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

package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-arcade/agileboard/internal/engine/config"
	"github.com/go-arcade/agileboard/internal/engine/router"
	"github.com/go-arcade/agileboard/internal/pkg/notify"
	"github.com/go-arcade/agileboard/pkg/database"
	"github.com/go-arcade/agileboard/pkg/event"
	"github.com/go-arcade/agileboard/pkg/log"
	"github.com/go-arcade/agileboard/pkg/metrics"
	"github.com/go-arcade/agileboard/pkg/pprof"
	"github.com/gofiber/fiber/v2"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const auxShutdownTimeout = 5 * time.Second

type App struct {
	HttpApp        *fiber.App
	MetricsServer  *metrics.Server
	PprofServer    *pprof.Server
	Dispatcher     *notify.Dispatcher
	TracerProvider *sdktrace.TracerProvider
	Logger         *log.Logger
	AppConf        config.AppConfig
}

// InitAppFunc init app function type
type InitAppFunc func(configPath string) (*App, func(), error)

// NewApp takes the logger first so it is initialized before anything
// else wire constructs.
func NewApp(
	logger *log.Logger,
	rt *router.Router,
	manager database.Manager,
	metricsServer *metrics.Server,
	pprofServer *pprof.Server,
	dispatcher *notify.Dispatcher,
	bus *event.EventBus,
	tp *sdktrace.TracerProvider,
	appConf *config.AppConfig,
) (*App, func(), error) {
	if appConf.Database.AutoMigrate {
		if err := database.AutoMigrate(manager.DB()); err != nil {
			return nil, nil, err
		}
		log.Info("database schema migrated")
	}

	httpApp := rt.Router()

	// 订阅通知事件，邮件投递在 Run 中启动
	dispatcher.Subscribe(bus)

	cleanup := func() {
		// stop pprof server
		if pprofServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), auxShutdownTimeout)
			defer cancel()
			if err := pprofServer.Stop(shutdownCtx); err != nil {
				log.Errorw("failed to stop pprof server", "error", err)
			}
		}

		// stop metrics server
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), auxShutdownTimeout)
			defer cancel()
			if err := metricsServer.Stop(shutdownCtx); err != nil {
				log.Errorw("failed to stop metrics server", "error", err)
			}
		}
	}

	app := &App{
		HttpApp:        httpApp,
		MetricsServer:  metricsServer,
		PprofServer:    pprofServer,
		Dispatcher:     dispatcher,
		TracerProvider: tp,
		Logger:         logger,
		AppConf:        *appConf,
	}
	return app, cleanup, nil
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), config.AppConfig, error) {
	// 所有依赖由 wire 注入
	app, cleanup, err := initApp(configFile)
	if err != nil {
		return nil, nil, config.AppConfig{}, err
	}
	return app, cleanup, app.AppConf, nil
}

// Run start app and wait for exit signal, then gracefully shutdown
func Run(app *App, cleanup func()) {
	appConf := app.AppConf

	if app.MetricsServer != nil {
		if err := app.MetricsServer.Start(); err != nil {
			log.Errorw("metrics server failed", "error", err)
		}
	}
	if app.PprofServer != nil {
		if err := app.PprofServer.Start(); err != nil {
			log.Errorw("pprof server failed", "error", err)
		}
	}

	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()
	if app.Dispatcher != nil {
		app.Dispatcher.Start(dispatchCtx)
	}

	// set signal listener (graceful shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	listenErr := make(chan error, 1)
	go func() {
		addr := appConf.Http.Addr()
		log.Infow("HTTP listener started", "address", addr, "contextPath", appConf.Http.ContextPath)
		if err := app.HttpApp.Listen(addr); err != nil {
			listenErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Infow("received signal, shutting down gracefully", "signal", sig.String())
	case err := <-listenErr:
		log.Errorw("HTTP listener failed", "address", appConf.Http.Addr(), "error", err)
	}

	// HTTP 先停止接收请求，再排空通知队列
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), appConf.Http.ShutdownDuration())
	defer shutdownCancel()
	if err := app.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	} else {
		log.Info("HTTP server shut down gracefully")
	}

	if app.Dispatcher != nil {
		app.Dispatcher.Stop()
	}
	stopDispatch()

	cleanup()
	log.Info("server shutdown complete")
}
