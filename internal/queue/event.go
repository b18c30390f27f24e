// Package queue defines the durable RabbitMQ work queues that decouple
// accepting a reservation request from resolving it against live capacity,
// plus the consumers that process those jobs. Delivery is at-least-once:
// every consumer must tolerate redelivered and reordered jobs.
package queue

import "encoding/json"

// Queue names. Each queue is declared durable with a companion dead-letter
// queue named "<queue>.dead" that collects jobs failing repeatedly.
const (
	ReservationsQueue = "reservations"
	ActivityLogQueue  = "activityLog"
)

// Job names carried inside the message envelope.
const (
	JobReserveSeat       = "reserve-seat"
	JobCancelSeat        = "cancel-seat"
	JobCreateActivityLog = "create-activity-log"
)

// Job is the wire envelope for every queued message: a job name plus a
// JSON payload. Consumers switch on Name and unmarshal Data into the
// matching payload type; unrecognized names are acknowledged as no-ops so
// old consumers survive new job types.
type Job struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// SeatJob is the payload for reserve-seat and cancel-seat jobs. It names
// the reservation to transition and the concert whose capacity counter is
// adjusted.
type SeatJob struct {
	ReservationID string `json:"reservationId"`
	ConcertID     string `json:"concertId"`
}

// ActivityLogJob is the payload for create-activity-log jobs, consumed by
// the audit-trail worker on the activityLog queue.
type ActivityLogJob struct {
	UserID    string `json:"userId"`
	ConcertID string `json:"concertId"`
	Action    string `json:"action"`
	AdminID   string `json:"adminId"`
}
