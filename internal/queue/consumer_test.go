package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/concert-ticketing/internal/pkg/metrics"
)

// fakeAcknowledger records the broker acknowledgement taken for a delivery.
type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

type handlerFunc func(ctx context.Context, job Job) error

func (f handlerFunc) Handle(ctx context.Context, job Job) error { return f(ctx, job) }

func jobCount(m *metrics.Metrics, queueName, result string) float64 {
	return testutil.ToFloat64(m.QueueJobsTotal.WithLabelValues(queueName, result))
}

func TestHandleDeliverySuccessAcksAndCounts(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	ack := &fakeAcknowledger{}
	d := amqp.Delivery{Acknowledger: ack, Body: []byte(`{"name":"reserve-seat","data":{}}`)}

	handleDelivery(context.Background(), ReservationsQueue, d, handlerFunc(func(ctx context.Context, job Job) error {
		return nil
	}), m)

	assert.True(t, ack.acked)
	assert.Equal(t, 1.0, jobCount(m, ReservationsQueue, "ok"))
}

func TestHandleDeliveryFirstFailureRequeues(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	ack := &fakeAcknowledger{}
	d := amqp.Delivery{Acknowledger: ack, Body: []byte(`{"name":"reserve-seat","data":{}}`)}

	handleDelivery(context.Background(), ReservationsQueue, d, handlerFunc(func(ctx context.Context, job Job) error {
		return errors.New("db gone")
	}), m)

	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue)
	assert.Equal(t, 1.0, jobCount(m, ReservationsQueue, "error"))
	assert.Equal(t, 0.0, jobCount(m, ReservationsQueue, "dead"))
}

func TestHandleDeliveryRedeliveredFailureDeadLetters(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	ack := &fakeAcknowledger{}
	d := amqp.Delivery{Acknowledger: ack, Redelivered: true, Body: []byte(`{"name":"reserve-seat","data":{}}`)}

	handleDelivery(context.Background(), ReservationsQueue, d, handlerFunc(func(ctx context.Context, job Job) error {
		return errors.New("db still gone")
	}), m)

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
	assert.Equal(t, 1.0, jobCount(m, ReservationsQueue, "dead"))
}

func TestHandleDeliveryMalformedEnvelopeDeadLetters(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	ack := &fakeAcknowledger{}
	d := amqp.Delivery{Acknowledger: ack, Body: []byte(`{broken`)}

	called := false
	handleDelivery(context.Background(), ActivityLogQueue, d, handlerFunc(func(ctx context.Context, job Job) error {
		called = true
		return nil
	}), m)

	assert.False(t, called)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
	assert.Equal(t, 1.0, jobCount(m, ActivityLogQueue, "dead"))
}
