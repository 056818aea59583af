package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-arcade/ingest/internal/pkg/executor"
	"github.com/go-arcade/ingest/internal/pkg/probe"
	"github.com/go-arcade/ingest/internal/pkg/storage"
	"github.com/go-arcade/ingest/pkg/cache"
	"github.com/go-arcade/ingest/pkg/database"
	"github.com/go-arcade/ingest/pkg/http"
	"github.com/go-arcade/ingest/pkg/log"
	"github.com/spf13/viper"
)

type SchedulerConfig struct {
	Enabled bool
}

type AppConfig struct {
	Log       log.Conf
	Http      http.Http
	Database  database.Database
	Redis     cache.Redis
	Executor  executor.Config
	Scheduler SchedulerConfig
	Probe     probe.Config
	Storage   storage.Config
}

var (
	cfg  AppConfig
	once sync.Once
)

func NewConf(confDir string) AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(confDir)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
	})
	return cfg
}

// LoadConfigFile load config file, INGEST_ prefixed env vars override file values
func LoadConfigFile(confDir string) (AppConfig, error) {
	var conf AppConfig

	v := viper.New()
	v.SetConfigFile(confDir) //文件名
	v.SetEnvPrefix("ingest")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return conf, fmt.Errorf("failed to read configuration file: %w", err)
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Infof("The configuration changes, re-analyze the configuration file: %s", e.Name)
		var reloaded AppConfig
		if err := v.Unmarshal(&reloaded); err != nil {
			log.Errorf("failed to unmarshal configuration file: %v", err)
			return
		}
		// 只有日志级别支持热更新, 其余配置需要重启
		if reloaded.Log.Level != conf.Log.Level {
			reloaded.Log.Output, reloaded.Log.Path = conf.Log.Output, conf.Log.Path
			if err := log.Init(&reloaded.Log); err != nil {
				log.Errorf("failed to apply log level %s: %v", reloaded.Log.Level, err)
			}
		}
	})
	if err := v.Unmarshal(&conf); err != nil {
		return conf, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}
	conf.SetDefaults()
	log.Infow("config file loaded",
		"path", confDir,
	)

	return conf, nil
}

// SetDefaults fills zero values.
func (c *AppConfig) SetDefaults() {
	def := http.SetDefaults()
	if c.Http.Host == "" {
		c.Http.Host = def.Host
	}
	if c.Http.Port == 0 {
		c.Http.Port = def.Port
	}
	if c.Http.ReadTimeout == 0 {
		c.Http.ReadTimeout = def.ReadTimeout
	}
	if c.Http.WriteTimeout == 0 {
		c.Http.WriteTimeout = def.WriteTimeout
	}
	if c.Http.IdleTimeout == 0 {
		c.Http.IdleTimeout = def.IdleTimeout
	}
	if c.Http.ShutdownTimeout == 0 {
		c.Http.ShutdownTimeout = def.ShutdownTimeout
	}
	if c.Executor.MaxWorkers <= 0 {
		c.Executor.MaxWorkers = 4
	}
	if c.Executor.QueueSize <= 0 {
		c.Executor.QueueSize = 100
	}
	if c.Executor.Timeout <= 0 {
		c.Executor.Timeout = 30
	}
	if c.Probe.Timeout <= 0 {
		c.Probe.Timeout = 5
	}
	if c.Probe.CacheTTL <= 0 {
		c.Probe.CacheTTL = 60
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "./data"
	}
}
