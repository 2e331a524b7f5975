package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// BaseURL is the backend origin; gateway paths carry the /api prefix.
	BaseURL        string        `env:"BIENESTAR_API_URL" envDefault:"http://localhost:8000"`
	RequestTimeout time.Duration `env:"BIENESTAR_REQUEST_TIMEOUT" envDefault:"30s"`

	RedisAddress  string `env:"REDIS_ADDRESS"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	SessionKey    string `env:"BIENESTAR_SESSION_KEY" envDefault:"bienestar:session"`
	// OutboxKey is the Redis list holding events the broker refused.
	OutboxKey string `env:"BIENESTAR_OUTBOX_KEY" envDefault:"bienestar:outbox"`

	RabbitMQURL     string `env:"RABBITMQ_URL"`
	AlertQueueName  string `env:"ALERT_QUEUE_NAME" envDefault:"alertas.resueltas"`
	SurveyQueueName string `env:"SURVEY_QUEUE_NAME" envDefault:"encuestas.enviadas"`

	RelayInterval   time.Duration `env:"RELAY_INTERVAL" envDefault:"30s"`
	RelayHealthAddr string        `env:"RELAY_HEALTH_ADDR" envDefault:":8090"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	// MetricsTextfile, when set, receives the request metrics in the
	// Prometheus text format when the command exits.
	MetricsTextfile string `env:"METRICS_TEXTFILE"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("BIENESTAR_API_URL must be an absolute URL, got %q", cfg.BaseURL)
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("BIENESTAR_REQUEST_TIMEOUT must be positive, got %s", cfg.RequestTimeout)
	}
	if cfg.RelayInterval <= 0 {
		return nil, fmt.Errorf("RELAY_INTERVAL must be positive, got %s", cfg.RelayInterval)
	}
	return &cfg, nil
}
