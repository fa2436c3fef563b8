package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-arcade/agileboard/internal/pkg/identity"
	"github.com/go-arcade/agileboard/internal/pkg/notify"
	"github.com/go-arcade/agileboard/pkg/cache"
	"github.com/go-arcade/agileboard/pkg/database"
	"github.com/go-arcade/agileboard/pkg/http"
	"github.com/go-arcade/agileboard/pkg/log"
	"github.com/go-arcade/agileboard/pkg/metrics"
	"github.com/go-arcade/agileboard/pkg/pprof"
	"github.com/go-arcade/agileboard/pkg/trace"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "AGILEBOARD"

type AppConfig struct {
	Log      log.Conf
	Http     http.Http
	Database database.Database
	Redis    cache.Redis
	Cache    cache.Config
	Identity identity.Conf
	Notify   notify.Conf
	Metrics  metrics.MetricsConfig
	Trace    trace.Conf
	Pprof    pprof.PprofConfig
}

var (
	cfg   AppConfig
	cfgMu sync.RWMutex
	once  sync.Once
)

// NewConf loads the configuration once per process and panics when the
// file cannot be read.
func NewConf(confFile string) AppConfig {
	once.Do(func() {
		loaded, err := LoadConfigFile(confFile)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
		cfgMu.Lock()
		cfg = loaded
		cfgMu.Unlock()
	})
	return Current()
}

// Current returns the latest loaded configuration, including hot reloads.
func Current() AppConfig {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg
}

// LoadConfigFile reads confFile, overlays AGILEBOARD_* environment
// variables (after loading .env when present) and watches the file for
// changes. On change only the log level is applied live.
func LoadConfigFile(confFile string) (AppConfig, error) {
	var out AppConfig

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return out, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := newViper()
	v.SetConfigFile(confFile)
	if err := v.ReadInConfig(); err != nil {
		return out, fmt.Errorf("failed to read configuration file: %w", err)
	}
	if err := v.Unmarshal(&out); err != nil {
		return out, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		var next AppConfig
		if err := v.Unmarshal(&next); err != nil {
			log.Errorw("failed to reload configuration", "file", e.Name, "error", err)
			return
		}
		cfgMu.Lock()
		cfg = next
		cfgMu.Unlock()
		log.SetLevel(next.Log.Level)
		log.Infow("configuration reloaded", "file", e.Name, "logLevel", next.Log.Level)
	})
	v.WatchConfig()

	log.Infow("config file loaded", "path", confFile)
	return out, nil
}

// LoadFromReader parses TOML content without watching, used by the CLI and tests.
func LoadFromReader(content string) (AppConfig, error) {
	var out AppConfig
	v := newViper()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		return out, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := v.Unmarshal(&out); err != nil {
		return out, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return out, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envBoundKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// envBoundKeys are bound explicitly because viper only consults the
// environment for keys it already knows about when unmarshalling.
var envBoundKeys = []string{
	"database.mysql.host",
	"database.mysql.port",
	"database.mysql.user",
	"database.mysql.password",
	"database.mysql.dbname",
	"redis.address",
	"redis.password",
	"identity.url",
	"identity.anonKey",
	"identity.serviceKey",
	"identity.jwtSecret",
	"notify.smtp.password",
	"notify.mailjet.apiKey",
	"notify.mailjet.secretKey",
}
