package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Upstream UpstreamConfig
	Store    StoreConfig
	Redis    RedisConfig
	Mongo    MongoConfig
}

// UpstreamConfig points the request pipeline at the federation API.
type UpstreamConfig struct {
	BaseURL        string `env:"UPSTREAM_BASE_URL, default=http://localhost:3000/api/v1"`
	TimeoutSeconds int    `env:"UPSTREAM_TIMEOUT_SECONDS, default=15"`
}

// StoreConfig selects the credential store backend: "file" (default),
// "redis", or "memory" (ephemeral, for development).
type StoreConfig struct {
	Backend string `env:"CRED_STORE, default=file"`
	Path    string `env:"CRED_STORE_PATH, default=.console/session.json"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=0"`
}

// MongoConfig configures the session audit trail. An empty URI disables it.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB,  default=console"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
