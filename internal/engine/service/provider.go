package service

import (
	"github.com/go-arcade/agileboard/internal/engine/metrics"
	"github.com/go-arcade/agileboard/internal/engine/repo"
	"github.com/go-arcade/agileboard/internal/pkg/identity"
	"github.com/go-arcade/agileboard/internal/pkg/notify"
	"github.com/go-arcade/agileboard/pkg/event"
	"github.com/google/wire"
)

// ProviderSet 提供服务层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideEventBus,
	ProvideServices,
	ProvideUserDirectory,
	wire.Bind(new(notify.Directory), new(*UserDirectory)),
	wire.Bind(new(notify.Observer), new(*metrics.Collectors)),
)

func ProvideEventBus() *event.EventBus {
	return event.NewEventBus()
}

// ProvideServices 提供统一的 Services 实例
func ProvideServices(
	repos *repo.Repositories,
	provider identity.Provider,
	identityConf identity.Conf,
	bus *event.EventBus,
	observer *metrics.Collectors,
) *Services {
	return NewServices(repos, provider, identityConf, bus, observer)
}

func ProvideUserDirectory(repos *repo.Repositories) *UserDirectory {
	return NewUserDirectory(repos)
}
