package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/concert-ticketing/internal/pkg/logger"
	"github.com/iliyamo/concert-ticketing/internal/pkg/metrics"
)

// Handler processes one decoded job. Returning nil acknowledges the
// delivery; returning an error triggers the redelivery path, so handlers
// must be idempotent.
type Handler interface {
	Handle(ctx context.Context, job Job) error
}

// StartConsumer connects to RabbitMQ, declares the named durable queue (and
// its dead-letter companion) and consumes it until ctx is cancelled. The
// function runs a reconnect loop with exponential backoff so a broker
// restart never takes the worker down.
//
// Failure semantics: a job whose handler errors is not acknowledged. The
// first failure is nacked with requeue, letting the broker redeliver it; a
// failure of an already-redelivered job is rejected without requeue, which
// routes it to "<queue>.dead" for inspection. Malformed envelopes go
// straight to the dead-letter queue since redelivery cannot fix them.
func StartConsumer(ctx context.Context, url, queueName string, h Handler, m *metrics.Metrics) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.Warn("consumer: failed to dial broker",
				zap.String("queue", queueName), zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(ctx, conn, queueName, h, m); err != nil {
			if ctx.Err() != nil {
				_ = conn.Close()
				return ctx.Err()
			}
			logger.Warn("consumer: consume loop ended, reconnecting",
				zap.String("queue", queueName), zap.Error(err))
			_ = conn.Close()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
			continue
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queueName string, h Handler, m *metrics.Metrics) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logger.Warn("consumer: set QoS failed", zap.Error(err))
	}

	if err := declareWithDeadLetter(ch, queueName); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			handleDelivery(ctx, queueName, d, h, m)
		}
	}
}

func handleDelivery(ctx context.Context, queueName string, d amqp.Delivery, h Handler, m *metrics.Metrics) {
	var job Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		logger.Error("consumer: malformed envelope, dead-lettering",
			zap.String("queue", queueName), zap.Error(err))
		_ = d.Nack(false, false)
		countJob(m, queueName, "dead")
		return
	}
	if err := h.Handle(ctx, job); err != nil {
		if d.Redelivered {
			logger.Error("consumer: job failed after redelivery, dead-lettering",
				zap.String("queue", queueName), zap.String("job", job.Name), zap.Error(err))
			_ = d.Nack(false, false)
			countJob(m, queueName, "dead")
			return
		}
		logger.Warn("consumer: job failed, requeueing",
			zap.String("queue", queueName), zap.String("job", job.Name), zap.Error(err))
		_ = d.Nack(false, true)
		countJob(m, queueName, "error")
		return
	}
	_ = d.Ack(false)
	countJob(m, queueName, "ok")
}

func countJob(m *metrics.Metrics, queueName, result string) {
	if m != nil {
		m.QueueJobsTotal.WithLabelValues(queueName, result).Inc()
	}
}
