package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendSupabase = "supabase"
	BackendRedis    = "redis"
)

var (
	ErrUnknownBackend    = errors.New("unknown store backend")
	ErrMissingStoreURL   = errors.New("store url is empty")
	ErrMissingPublicKey  = errors.New("store public key is empty")
	ErrMissingJWTSecret  = errors.New("store jwt secret is empty")
	ErrInvalidStoreLimit = errors.New("store timeout must be positive")
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Store    Store  `yaml:"store"`
	Redis    Redis  `yaml:"redis"`
}

type Store struct {
	Backend   string        `yaml:"backend" env:"STORE_BACKEND" env-default:"supabase"`
	URL       string        `yaml:"url" env:"SUPABASE_URL"`
	PublicKey string        `yaml:"public-key" env:"SUPABASE_ANON_KEY"`
	JWTSecret string        `yaml:"jwt-secret" env:"SUPABASE_JWT_SECRET"`
	Timeout   time.Duration `yaml:"timeout" env:"STORE_TIMEOUT" env-default:"10s"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// MustLoad - load all configurations from the config file, falling back to the environment when the file is absent.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); err == nil {
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	} else {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read environment: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate - checks that the selected store backend has everything it needs.
func (that *Config) Validate() error {
	if that.Store.Timeout <= 0 {
		return ErrInvalidStoreLimit
	}

	switch that.Store.Backend {
	case BackendSupabase:
		if that.Store.URL == "" {
			return ErrMissingStoreURL
		}
		if that.Store.PublicKey == "" {
			return ErrMissingPublicKey
		}
	case BackendRedis:
		if that.Store.JWTSecret == "" {
			return ErrMissingJWTSecret
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, that.Store.Backend)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
