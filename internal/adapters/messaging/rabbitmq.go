package messaging

import (
	"context"
	"io"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/uniempresarial/bienestar-client/internal/config"
)

// Channel is the subset of *amqp.Channel the broker uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQBroker implements ports.EventPublisher using RabbitMQ.
type RabbitMQBroker struct {
	conn        io.Closer
	ch          Channel
	alertQueue  string
	surveyQueue string
	cb          *gobreaker.CircuitBreaker
}

func NewRabbitMQBroker(amqpURL, alertQueue, surveyQueue string, log logrus.FieldLogger) (*RabbitMQBroker, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	broker, err := newBroker(conn, ch, alertQueue, surveyQueue, log)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return broker, nil
}

func newBroker(conn io.Closer, ch Channel, alertQueue, surveyQueue string, log logrus.FieldLogger) (*RabbitMQBroker, error) {
	// Declare the queues (idempotent)
	for _, name := range []string{alertQueue, surveyQueue} {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return nil, err
		}
	}

	return &RabbitMQBroker{
		conn:        conn,
		ch:          ch,
		alertQueue:  alertQueue,
		surveyQueue: surveyQueue,
		cb:          config.NewCircuitBreaker(config.BreakerPublisher, log),
	}, nil
}

func (rmq *RabbitMQBroker) Close() error {
	if rmq.ch != nil {
		if err := rmq.ch.Close(); err != nil {
			return err
		}
	}
	if rmq.conn != nil {
		return rmq.conn.Close()
	}
	return nil
}
