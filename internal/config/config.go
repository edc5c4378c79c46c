package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server configuration, loaded from the environment
type Config struct {
	// Addr is the HTTP listen address
	Addr string `env:"MUSTER_ADDR" envDefault:":8080"`

	// LogLevel is a zerolog level name (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// SessionPageSize bounds the session listing
	SessionPageSize int `env:"SESSION_PAGE_SIZE" envDefault:"50"`

	Redis RedisConfig `envPrefix:"REDIS_"`
}

// RedisConfig holds the store connection settings
type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Load reads .env when present, then parses the environment
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
