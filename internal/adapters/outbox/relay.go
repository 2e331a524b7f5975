package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/uniempresarial/bienestar-client/internal/config"
	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

const (
	batchProcessTimeout = 60 * time.Second

	// Health check configuration
	healthCheckStaleThreshold = 5 * time.Minute

	// Batch processing limits
	maxEventsPerBatch = 100
)

var errUndeliverable = errors.New("undeliverable event")

// Relay moves parked events from the outbox to the broker, oldest first.
type Relay struct {
	outbox    *Outbox
	publisher ports.EventPublisher
	interval  time.Duration
	redisCB   *gobreaker.CircuitBreaker
	log       logrus.FieldLogger

	mu            sync.RWMutex
	lastProcessed time.Time
	isHealthy     bool
}

func NewRelay(outbox *Outbox, publisher ports.EventPublisher, interval time.Duration, log logrus.FieldLogger) *Relay {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Relay{
		outbox:        outbox,
		publisher:     publisher,
		interval:      interval,
		redisCB:       config.NewCircuitBreaker(config.BreakerOutbox, log),
		log:           log,
		lastProcessed: time.Now(),
		isHealthy:     true,
	}
}

// IsHealthy reports whether the relay loop is alive.
func (r *Relay) IsHealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isHealthy
}

// IsReady reports whether the relay can currently drain events.
func (r *Relay) IsReady() bool {
	if r.redisCB.State() == gobreaker.StateOpen {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if time.Since(r.lastProcessed) > healthCheckStaleThreshold {
		return false
	}
	return r.isHealthy
}

// Start drains the outbox every interval until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	r.log.WithField("interval", r.interval.String()).Info("outbox relay started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.tick(ctx)

		select {
		case <-ctx.Done():
			r.log.Info("outbox relay shutting down")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Relay) tick(ctx context.Context) {
	n, err := r.Drain(ctx)
	if err != nil {
		r.setHealth(false)
		r.log.WithError(err).Warn("outbox drain stopped early")
		return
	}
	r.setHealth(true)

	if n > 0 {
		entry := r.log.WithField("count", n)
		if pending, err := r.outbox.Pending(ctx); err == nil {
			entry = entry.WithField("pending", pending)
		}
		entry.Info("outbox events relayed")
	}
}

// setHealth holds the lock only for the field update; Redis calls stay
// outside it so the probe handlers never wait on the network.
func (r *Relay) setHealth(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.isHealthy = ok
	if ok {
		r.lastProcessed = time.Now()
	}
}

// Drain publishes up to one batch of parked events and returns how many
// left the outbox. It stops at the first publish failure so that order is
// kept.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	processed := 0
	for processed < maxEventsPerBatch {
		out, err := r.redisCB.Execute(func() (interface{}, error) {
			env, raw, err := r.outbox.peek(ctx)
			if err != nil && raw == nil {
				return nil, err
			}
			return peeked{env: env, raw: raw, decodeErr: err}, nil
		})
		if err != nil {
			return processed, err
		}
		p := out.(peeked)
		if p.env == nil && p.raw == nil {
			return processed, nil
		}

		if p.decodeErr != nil {
			// Unreadable entries are dropped so they cannot block the queue.
			r.log.WithError(p.decodeErr).Error("dropping unreadable outbox entry")
		} else if err := r.dispatch(ctx, p.env); err != nil {
			if errors.Is(err, errUndeliverable) {
				r.log.WithField("event_id", p.env.ID).WithError(err).Error("dropping outbox entry")
			} else {
				return processed, fmt.Errorf("publish event %s: %w", p.env.ID, err)
			}
		}

		if _, err := r.redisCB.Execute(func() (interface{}, error) {
			return nil, r.outbox.ack(ctx)
		}); err != nil {
			return processed, err
		}
		processed++
	}
	return processed, nil
}

type peeked struct {
	env       *Envelope
	raw       []byte
	decodeErr error
}

func (r *Relay) dispatch(ctx context.Context, env *Envelope) error {
	switch env.Type {
	case EventAlertResolved:
		var evt ports.AlertResolvedEvent
		if err := json.Unmarshal(env.Payload, &evt); err != nil {
			return fmt.Errorf("%w: bad payload: %v", errUndeliverable, err)
		}
		return r.publisher.PublishAlertResolved(ctx, evt)
	case EventSurveySubmitted:
		var evt ports.SurveySubmittedEvent
		if err := json.Unmarshal(env.Payload, &evt); err != nil {
			return fmt.Errorf("%w: bad payload: %v", errUndeliverable, err)
		}
		return r.publisher.PublishSurveySubmitted(ctx, evt)
	}
	return fmt.Errorf("%w: unknown type %q", errUndeliverable, env.Type)
}
