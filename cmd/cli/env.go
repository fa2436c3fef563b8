package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-arcade/agileboard/internal/engine/config"
	"github.com/go-arcade/agileboard/internal/engine/model"
	"github.com/go-arcade/agileboard/internal/engine/repo"
	"github.com/go-arcade/agileboard/pkg/database"
	"github.com/go-arcade/agileboard/pkg/log"
)

// env 命令运行所需的配置与数据库连接
type env struct {
	conf    config.AppConfig
	manager database.Manager
	repos   *repo.Repositories
}

// openEnv 读取配置、初始化日志并连接数据库，不监听配置变更
func openEnv() (*env, error) {
	content, err := os.ReadFile(confFile)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", confFile, err)
	}
	conf, err := config.LoadFromReader(string(content))
	if err != nil {
		return nil, err
	}
	if conf.Log.Level == "" {
		conf.Log = *log.SetDefaults()
	}
	if err := log.Init(&conf.Log); err != nil {
		return nil, err
	}

	manager, err := database.NewManager(conf.Database)
	if err != nil {
		return nil, err
	}
	return &env{
		conf:    conf,
		manager: manager,
		repos:   repo.NewRepositories(manager.DB()),
	}, nil
}

func (e *env) Close() {
	if err := e.manager.Close(); err != nil {
		log.Warnw("close database failed", "error", err)
	}
}

// lookupUser accepts a user id or an email address.
func (e *env) lookupUser(ctx context.Context, ref string) (*model.User, error) {
	var (
		user *model.User
		err  error
	)
	if strings.Contains(ref, "@") {
		user, err = e.repos.User.GetByEmail(ctx, ref)
	} else {
		user, err = e.repos.User.Get(ctx, ref)
	}
	if repo.IsNotFound(err) {
		return nil, fmt.Errorf("user %s not found", ref)
	}
	return user, err
}
