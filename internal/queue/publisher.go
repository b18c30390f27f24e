package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/concert-ticketing/internal/pkg/logger"
)

// Publisher enqueues jobs on a named durable queue. The single method
// signature keeps the services decoupled from the broker so tests can swap
// in a fake.
type Publisher interface {
	Publish(ctx context.Context, queueName, jobName string, data interface{}) error
}

// AMQPPublisher publishes persistent messages to RabbitMQ. Each publish
// dials, declares the target queue (idempotent) and closes again; the
// request path favours robustness over connection reuse, matching the
// accept-and-enqueue model where a publish happens at most twice per
// mutation.
type AMQPPublisher struct {
	url string
}

// NewAMQPPublisher returns a publisher for the given broker URL.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url}
}

// declareWithDeadLetter declares the durable work queue together with its
// companion dead-letter queue. The work queue routes rejected deliveries to
// "<name>.dead" through the default exchange.
func declareWithDeadLetter(ch *amqp.Channel, name string) error {
	if _, err := ch.QueueDeclare(
		name+".dead", // name
		true,         // durable
		false,        // autoDelete
		false,        // exclusive
		false,        // noWait
		nil,          // args
	); err != nil {
		return err
	}
	_, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": name + ".dead",
		},
	)
	return err
}

// Publish marshals the job envelope and sends it to the named queue as a
// persistent message. Any error is logged and returned so the caller can
// surface a dependency failure to the client.
func (p *AMQPPublisher) Publish(ctx context.Context, queueName, jobName string, data interface{}) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		logger.Error("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := declareWithDeadLetter(ch, queueName); err != nil {
		logger.Error("rabbitmq: queue declare failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		logger.Error("rabbitmq: marshal job data failed", zap.Error(err))
		return err
	}
	body, err := json.Marshal(Job{Name: jobName, Data: payload})
	if err != nil {
		logger.Error("rabbitmq: marshal envelope failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		logger.Error("rabbitmq: publish failed", zap.String("queue", queueName), zap.Error(err))
		return err
	}

	return nil
}
