package model

import "time"

// Reservation statuses. A reservation is created PENDING and resolved by the
// queue worker to RESERVED or SOLD_OUT depending on live capacity. Cancelling
// moves any status to CANCELLED. A CANCELLED row is reused when the same user
// reserves the same concert again, so reservation identity is stable across
// reserve/cancel/reserve cycles.
const (
	ReservationPending   = "PENDING"
	ReservationReserved  = "RESERVED"
	ReservationSoldOut   = "SOLD_OUT"
	ReservationFailed    = "FAILED"
	ReservationCancelled = "CANCELLED"
)

// Reservation records a user's booking attempt for a concert. At most one
// row exists per (user, concert) pair, enforced by a composite unique key.
//
// Fields:
//  ID        – UUID primary key.
//  UserID    – user who made the reservation.
//  ConcertID – concert being reserved.
//  Status    – one of the Reservation* constants above.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
	ID        string    // reservations.id
	UserID    string    // reservations.user_id
	ConcertID string    // reservations.concert_id
	Status    string    // reservations.status
	CreatedAt time.Time // reservations.created_at
	UpdatedAt time.Time // reservations.updated_at
}

// HoldsSeat reports whether the reservation currently occupies a seat.
// Only RESERVED reservations hold capacity; PENDING has not been granted a
// seat yet and SOLD_OUT never obtained one, so cancelling those must not
// release capacity.
func (r *Reservation) HoldsSeat() bool {
	return r.Status == ReservationReserved
}

// Resolved reports whether a reserve job already ran to completion for this
// reservation. Redelivered reserve jobs use this to skip the capacity
// decrement.
func (r *Reservation) Resolved() bool {
	return r.Status == ReservationReserved || r.Status == ReservationSoldOut
}
