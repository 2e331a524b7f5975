package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/uniempresarial/bienestar-client/internal/adapters/messaging"
	"github.com/uniempresarial/bienestar-client/internal/adapters/outbox"
	"github.com/uniempresarial/bienestar-client/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "relay: %v\n", err)
		os.Exit(2)
	}
	log := config.NewLogger(cfg).WithField("component", "outbox-relay")

	if cfg.RedisAddress == "" || cfg.RabbitMQURL == "" {
		log.Error("REDIS_ADDRESS and RABBITMQ_URL are both required")
		os.Exit(2)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.AlertQueueName, cfg.SurveyQueueName, log)
	if err != nil {
		log.WithError(err).Error("failed to connect to RabbitMQ")
		os.Exit(1)
	}
	defer broker.Close()
	log.Info("connected to RabbitMQ")

	box := outbox.New(redisClient, cfg.OutboxKey, nil, log)
	relayWorker := outbox.NewRelay(box, broker, cfg.RelayInterval, log)

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, relayWorker.IsHealthy())
	})
	healthMux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, relayWorker.IsReady())
	})

	healthServer := &http.Server{
		Addr:              cfg.RelayHealthAddr,
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.RelayHealthAddr).Info("starting health check server")
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("health server error")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := relayWorker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("relay worker stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("error shutting down health server")
	}
	log.Info("shutdown complete")
}

func writeStatus(w http.ResponseWriter, up bool) {
	status := "UP"
	httpStatus := http.StatusOK
	if !up {
		status = "DOWN"
		httpStatus = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    status,
		"component": "outbox-relay",
	})
}
