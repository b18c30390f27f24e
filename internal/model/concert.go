package model

import "time"

// Concert represents a row in the `concerts` table. Capacity is a simple
// counter: TotalSeats is fixed at creation and SeatsAvailable moves between
// zero and TotalSeats as reservations are resolved and cancelled. The counter
// is only ever mutated by the worker's capacity adjustment, never directly
// from user input.
//
// Fields:
//  ID             – UUID primary key.
//  Name           – concert title.
//  Description    – free-form description.
//  TotalSeats     – fixed capacity, set once at creation.
//  SeatsAvailable – remaining seats; 0 <= SeatsAvailable <= TotalSeats.
//  CreatedBy      – username of the admin who created the concert.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Concert struct {
	ID             string    // concerts.id
	Name           string    // concerts.name
	Description    string    // concerts.description
	TotalSeats     uint32    // concerts.total_seats
	SeatsAvailable uint32    // concerts.seats_available
	CreatedBy      string    // concerts.created_by
	CreatedAt      time.Time // concerts.created_at
	UpdatedAt      time.Time // concerts.updated_at
}
