package config

import (
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	PortalConfig
	StoreConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	IsDev() bool
	GetLogLevel() string
}

type PortalConfig interface {
	GetAPIBaseURL() string
	GetExpectedRole() string
	GetRoleLabel() string
	GetRootPath() string
	GetTemporaryPasswordPrefix() string
	GetRedirectDelay() time.Duration
	GetHTTPTimeout() time.Duration
}

type StoreConfig interface {
	GetStoreBackend() StoreBackend
	GetStateFile() string
	GetRedisAddr() string
	GetRedisDB() int
	GetTransientTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	Portal
	Store
}

var _ Config = mainConfig{}

// New reads the configuration from the environment
func New() (Config, error) {
	var cfg mainConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "[config.New] parse environment")
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
