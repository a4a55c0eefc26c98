package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	DatabasePath  string `env:"DATABASE_PATH" envDefault:"interactive-video.db"`
	StorageDir    string `env:"STORAGE_DIR" envDefault:"data/blobs"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	TokenSecret    string        `env:"TOKEN_SECRET"`
	UploadURLTTL   time.Duration `env:"UPLOAD_URL_TTL" envDefault:"15m"`
	MediaURLTTL    time.Duration `env:"MEDIA_URL_TTL" envDefault:"1h"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"2147483648"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	SecureCookies  bool     `env:"SECURE_COOKIES"` // true on HTTPS deployments

	RedisAddr     string        `env:"REDIS_ADDR"` // empty disables the shared cache
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"`
	ProjectionTTL time.Duration `env:"PROJECTION_TTL" envDefault:"5m"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"` // json | console

	UploadRate  float64 `env:"UPLOAD_RATE" envDefault:"2"`
	UploadBurst int     `env:"UPLOAD_BURST" envDefault:"5"`

	SeedFile  string `env:"SEED_FILE"`
	SeedOwner string `env:"SEED_OWNER" envDefault:"demo"`
}

// LoadConfig reads .env (if present) and then the process environment.
func LoadConfig() (Config, error) {
	// a missing .env is fine - deployments set the variables directly
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.TokenSecret == "" {
		errs = append(errs, errors.New("TOKEN_SECRET must be set"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.UploadURLTTL <= 0 || c.MediaURLTTL <= 0 {
		errs = append(errs, errors.New("URL TTLs must be positive"))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q: must be json or console", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
