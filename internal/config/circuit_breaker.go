package config

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	BreakerBackend   = "Backend-HTTP"
	BreakerSession   = "Redis-Session"
	BreakerPublisher = "RabbitMQ-Publisher"
	BreakerOutbox    = "Redis-Outbox"
)

// NewCircuitBreaker creates a circuit breaker with standard settings.
// The name parameter uniquely identifies the circuit breaker instance.
func NewCircuitBreaker(name string, log logrus.FieldLogger) *gobreaker.CircuitBreaker {
	if log == nil {
		log = logrus.StandardLogger()
	}

	var timeout time.Duration
	switch name {
	case BreakerSession, BreakerOutbox:
		timeout = 5 * time.Second
	case BreakerBackend:
		timeout = 10 * time.Second
	default:
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Open circuit after 3 consecutive failures
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Error("circuit breaker state change")
		},
	})
}
