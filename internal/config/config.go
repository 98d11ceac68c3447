package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv  string `env:"APP_ENV" default:"development"`
	Port    string `env:"PORT" default:"7070"`
	OpsPort string `env:"OPS_PORT" default:"8080"`

	Workers        int           `env:"WORKERS" default:"4"`
	MaxClients     int           `env:"MAX_CLIENTS" default:"100"`
	QueueCapacity  int           `env:"QUEUE_CAPACITY" default:"64"`
	ReadBufferSize int           `env:"READ_BUFFER_SIZE" default:"1024"`
	SendInterval   time.Duration `env:"SEND_INTERVAL" default:"1s"`

	MaxConnections int64   `env:"MAX_CONNECTIONS" default:"10000"`
	ConnRatePerIP  float64 `env:"CONN_RATE_PER_IP" default:"10"`
	ConnBurstPerIP int     `env:"CONN_BURST_PER_IP" default:"10"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", cfg.Workers)
	}
	if cfg.MaxClients < 1 {
		return fmt.Errorf("MAX_CLIENTS must be at least 1, got %d", cfg.MaxClients)
	}
	if cfg.QueueCapacity < 1 {
		return fmt.Errorf("QUEUE_CAPACITY must be at least 1, got %d", cfg.QueueCapacity)
	}
	if cfg.ReadBufferSize < 16 {
		return fmt.Errorf("READ_BUFFER_SIZE must be at least 16 bytes, got %d", cfg.ReadBufferSize)
	}
	if cfg.SendInterval <= 0 {
		return fmt.Errorf("SEND_INTERVAL must be positive, got %s", cfg.SendInterval)
	}
	if cfg.MaxConnections < int64(cfg.Workers) {
		return fmt.Errorf("MAX_CONNECTIONS (%d) must not be lower than WORKERS (%d)", cfg.MaxConnections, cfg.Workers)
	}
	if cfg.ConnRatePerIP <= 0 {
		return fmt.Errorf("CONN_RATE_PER_IP must be positive, got %g", cfg.ConnRatePerIP)
	}
	if cfg.ConnBurstPerIP < 1 {
		return fmt.Errorf("CONN_BURST_PER_IP must be at least 1, got %d", cfg.ConnBurstPerIP)
	}
	return nil
}
