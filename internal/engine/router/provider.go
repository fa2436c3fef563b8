package router

import (
	"github.com/go-arcade/agileboard/internal/engine/service"
	"github.com/go-arcade/agileboard/pkg/http"
	"github.com/go-arcade/agileboard/pkg/metrics"
	"github.com/google/wire"
)

// ProviderSet 提供路由相关的依赖
var ProviderSet = wire.NewSet(ProvideRouter)

// ProvideRouter 提供路由实例
func ProvideRouter(httpConf *http.Http, services *service.Services, metricsServer *metrics.Server) *Router {
	return NewRouter(httpConf, services, metricsServer)
}
