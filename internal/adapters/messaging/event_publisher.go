package messaging

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/uniempresarial/bienestar-client/internal/core/ports"
)

var _ ports.EventPublisher = (*RabbitMQBroker)(nil)

func (rmq *RabbitMQBroker) PublishAlertResolved(ctx context.Context, evt ports.AlertResolvedEvent) error {
	return rmq.publish(ctx, rmq.alertQueue, evt)
}

func (rmq *RabbitMQBroker) PublishSurveySubmitted(ctx context.Context, evt ports.SurveySubmittedEvent) error {
	return rmq.publish(ctx, rmq.surveyQueue, evt)
}

func (rmq *RabbitMQBroker) publish(ctx context.Context, queue string, evt any) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	// Respect context deadline
	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) <= 0 {
			return ctx.Err()
		}
	}

	_, err = rmq.cb.Execute(func() (interface{}, error) {
		err := rmq.ch.PublishWithContext(
			ctx,
			"",    // exchange (default)
			queue, // routing key == queue name
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now().UTC(),
				Body:         body,
			},
		)
		return nil, err
	})
	return err
}
