package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/uniempresarial/bienestar-client/internal/adapters/cli"
	"github.com/uniempresarial/bienestar-client/internal/adapters/health"
	"github.com/uniempresarial/bienestar-client/internal/adapters/messaging"
	"github.com/uniempresarial/bienestar-client/internal/adapters/outbox"
	"github.com/uniempresarial/bienestar-client/internal/adapters/session"
	"github.com/uniempresarial/bienestar-client/internal/adapters/transport"
	"github.com/uniempresarial/bienestar-client/internal/config"
	"github.com/uniempresarial/bienestar-client/internal/core/ports"
	"github.com/uniempresarial/bienestar-client/internal/core/services"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bienestar: %v\n", err)
		return 2
	}
	log := config.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		sessions    ports.SessionStore
		redisClient *redis.Client
	)
	if cfg.RedisAddress != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient, cfg.SessionKey, log)
	} else {
		log.Debug("REDIS_ADDRESS not set, session kept in memory for this run")
		sessions = session.NewMemoryStore()
	}

	registry := prometheus.NewRegistry()
	metrics := transport.NewMetrics(registry)
	if cfg.MetricsTextfile != "" {
		defer func() {
			if err := prometheus.WriteToTextfile(cfg.MetricsTextfile, registry); err != nil {
				log.WithError(err).Warn("failed to write metrics textfile")
			}
		}()
	}

	backend, err := transport.New(transport.Config{
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.RequestTimeout,
		Sessions: sessions,
		Metrics:  metrics,
		Logger:   log,
	})
	if err != nil {
		log.WithError(err).Error("failed to build transport")
		return 1
	}

	var publisher ports.EventPublisher
	if cfg.RabbitMQURL != "" {
		broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.AlertQueueName, cfg.SurveyQueueName, log)
		if err != nil {
			log.WithError(err).Warn("event publishing disabled: cannot connect to RabbitMQ")
		} else {
			defer broker.Close()
			publisher = broker
		}
	}
	if redisClient != nil && cfg.RabbitMQURL != "" {
		// Events the broker refuses wait in Redis for cmd/relay.
		publisher = outbox.New(redisClient, cfg.OutboxKey, publisher, log)
	}

	var pinger health.Pinger
	if redisClient != nil {
		pinger = redisClient
	}

	app := cli.NewApp(cli.Deps{
		Auth:      services.NewAuthGateway(backend, sessions),
		Analytics: services.NewAnalyticsGateway(backend, publisher, log),
		Survey:    services.NewSurveyGateway(backend, publisher, log),
		Sessions:  sessions,
		Health:    health.NewChecker(backend, pinger, version),
		Out:       os.Stdout,
		ErrOut:    os.Stderr,
		Logger:    log,
	})

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintf(os.Stderr, "bienestar: %v\n", err)
			return 2
		}
		log.WithError(err).Error("command failed")
		return 1
	}
	return 0
}
