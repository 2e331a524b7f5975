// Package outbox parks domain events that could not be published so that a
// relay can deliver them later, in order.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

const (
	EventAlertResolved   = "alert_resolved"
	EventSurveySubmitted = "survey_submitted"
)

// ListClient is the subset of *redis.Client the outbox uses.
type ListClient interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LIndex(ctx context.Context, key string, index int64) *redis.StringCmd
	LPop(ctx context.Context, key string) *redis.StringCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
}

// Envelope is one parked event.
type Envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Outbox implements ports.EventPublisher. Events go straight to the broker
// when one is configured; anything the broker refuses is appended to a Redis
// list instead of being dropped.
type Outbox struct {
	client ListClient
	key    string
	broker ports.EventPublisher
	log    logrus.FieldLogger
}

var _ ports.EventPublisher = (*Outbox)(nil)

// New wraps broker, which may be nil to park every event.
func New(client ListClient, key string, broker ports.EventPublisher, log logrus.FieldLogger) *Outbox {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Outbox{client: client, key: key, broker: broker, log: log}
}

func (o *Outbox) PublishAlertResolved(ctx context.Context, evt ports.AlertResolvedEvent) error {
	if o.broker != nil {
		err := o.broker.PublishAlertResolved(ctx, evt)
		if err == nil {
			return nil
		}
		o.log.WithError(err).WithField("alert_id", evt.AlertID).Info("broker unavailable, parking event")
	}
	return o.park(ctx, EventAlertResolved, evt)
}

func (o *Outbox) PublishSurveySubmitted(ctx context.Context, evt ports.SurveySubmittedEvent) error {
	if o.broker != nil {
		err := o.broker.PublishSurveySubmitted(ctx, evt)
		if err == nil {
			return nil
		}
		o.log.WithError(err).WithField("survey_id", evt.SurveyID).Info("broker unavailable, parking event")
	}
	return o.park(ctx, EventSurveySubmitted, evt)
}

// Pending returns how many events wait for the relay.
func (o *Outbox) Pending(ctx context.Context) (int64, error) {
	return o.client.LLen(ctx, o.key).Result()
}

func (o *Outbox) park(ctx context.Context, eventType string, evt any) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	data, err := json.Marshal(Envelope{
		ID:        uuid.NewString(),
		Type:      eventType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := o.client.RPush(ctx, o.key, data).Err(); err != nil {
		return fmt.Errorf("park %s event: %w", eventType, err)
	}
	return nil
}

// peek returns the oldest parked event, or nil when the list is empty.
func (o *Outbox) peek(ctx context.Context) (*Envelope, []byte, error) {
	raw, err := o.client.LIndex(ctx, o.key, 0).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, raw, err
	}
	return &env, raw, nil
}

func (o *Outbox) ack(ctx context.Context) error {
	err := o.client.LPop(ctx, o.key).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
