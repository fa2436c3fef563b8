package repo

import (
	"github.com/go-arcade/agileboard/pkg/database"
	"github.com/google/wire"
)

// ProviderSet 提供仓储层相关的依赖
var ProviderSet = wire.NewSet(ProvideRepositories)

// ProvideRepositories 提供 Repositories 实例
func ProvideRepositories(manager database.Manager) *Repositories {
	return NewRepositories(manager.DB())
}
