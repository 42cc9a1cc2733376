package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries all runtime settings. It is built once in main and passed
// to the components that need it; nothing reads the environment after Load.
type Config struct {
	Port        int           `env:"PORT" envDefault:"3001"`
	DBDriver    string        `env:"DB_DRIVER" envDefault:"sqlite3"`
	DatabaseURL string        `env:"DATABASE_URL" envDefault:"./notedesk.db"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenExpiry time.Duration `env:"JWT_EXPIRES_IN" envDefault:"8h"`
	CORSOrigins []string      `env:"CORS_ORIGIN" envSeparator:"," envDefault:"http://localhost:3001"`
	StaticDir   string        `env:"STATIC_DIR" envDefault:"./static"`
}

// Load reads .env if present, then the process environment. The signing
// secret has no default: a process without one must not start.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return &cfg, nil
}
