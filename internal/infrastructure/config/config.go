package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,         default=8080"`
	Env      string `env:"ENV,          default=development"`
	LogLevel string `env:"LOG_LEVEL,    default=info"`

	// CookieName names the session cookie issued to browsers.
	CookieName string `env:"SESSION_COOKIE, default=clinic_session"`
	// SessionTTL bounds sessions whose refresh token has no readable expiry.
	SessionTTL time.Duration `env:"SESSION_TTL, default=168h"`

	Backend BackendConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type BackendConfig struct {
	// BaseURL is the clinic REST API this portal fronts.
	BaseURL string        `env:"BACKEND_URL,     default=http://localhost:8000/api"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=15s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=clinic_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
