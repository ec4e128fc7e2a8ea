package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// StoreBackend selects where the session is kept between runs
type StoreBackend string

const (
	StoreFile   StoreBackend = "file"
	StoreRedis  StoreBackend = "redis"
	StoreMemory StoreBackend = "memory"
)

type Store struct {
	Backend      string        `env:"PORTAL_STORE" envDefault:"file"`
	StateFile    string        `env:"PORTAL_STATE_FILE" envDefault:"./data/session.yaml"`
	RedisAddr    string        `env:"PORTAL_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB      int           `env:"PORTAL_REDIS_DB" envDefault:"0"`
	TransientTTL time.Duration `env:"PORTAL_TRANSIENT_TTL" envDefault:"12h"`
}

var _ StoreConfig = Store{}

func (s Store) GetStoreBackend() StoreBackend {
	return StoreBackend(strings.ToLower(strings.TrimSpace(s.Backend)))
}

func (s Store) GetStateFile() string {
	return s.StateFile
}

func (s Store) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Store) GetRedisDB() int {
	return s.RedisDB
}

func (s Store) GetTransientTTL() time.Duration {
	return s.TransientTTL
}

func (s Store) validate() error {
	switch s.GetStoreBackend() {
	case StoreFile:
		if s.StateFile == "" {
			return errors.New("[config] PORTAL_STATE_FILE is required for the file store")
		}
	case StoreRedis:
		if s.RedisAddr == "" {
			return errors.New("[config] PORTAL_REDIS_ADDR is required for the redis store")
		}
	case StoreMemory:
	default:
		return errors.Errorf("[config] unknown PORTAL_STORE %q", s.Backend)
	}
	return nil
}
