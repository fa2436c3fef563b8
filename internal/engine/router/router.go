package router

import (
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/bytedance/sonic"
	"github.com/go-arcade/agileboard/internal/engine/service"
	"github.com/go-arcade/agileboard/pkg/http"
	"github.com/go-arcade/agileboard/pkg/http/middleware"
	"github.com/go-arcade/agileboard/pkg/metrics"
	"github.com/go-arcade/agileboard/pkg/version"
	"github.com/gofiber/fiber/v2"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/9/8 15:48
 * @file: router.go
 * @description: setup router
 *  		     api router, use by web
 */

type Router struct {
	Http     *http.Http
	Services *service.Services
	Metrics  *metrics.Server
}

func NewRouter(httpConf *http.Http, services *service.Services, metricsServer *metrics.Server) *Router {
	return &Router{
		Http:     httpConf,
		Services: services,
		Metrics:  metricsServer,
	}
}

func (rt *Router) Router() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "agileboard",
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(rt.Http.IdleTimeout) * time.Second,
		BodyLimit:             rt.Http.BodyLimit * 1024 * 1024,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
	})

	app.Use(
		middleware.ExceptionMiddleware,
		middleware.RequestMiddleware(),
		middleware.CorsMiddleware(rt.Http.AllowOrigins...),
		middleware.TraceMiddleware(),
		middleware.AccessLogMiddleware(rt.Http),
	)

	// http metrics land on the registry of the metrics server
	if rt.Metrics != nil {
		prom := fiberprometheus.NewWithRegistry(rt.Metrics.GetRegistry(), "agileboard", "agileboard", "http", nil)
		app.Use(prom.Middleware)
	}

	app.Use(middleware.UnifiedResponseMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	api := app.Group(rt.Http.ContextPath, rt.authMiddleware)
	{
		rt.authRouter(api)
		rt.projectRouter(api)
		rt.sprintRouter(api)
		rt.boardRouter(api)
		rt.notificationRouter(api)
		rt.userRouter(api)
	}

	// 找不到路径时的处理，必须在所有路由注册之后
	app.Use(func(c *fiber.Ctx) error {
		return http.WithRepErrStatus(c, fiber.StatusNotFound, http.NotFound.Code, "request path not found", "NOT_FOUND")
	})

	return app
}
