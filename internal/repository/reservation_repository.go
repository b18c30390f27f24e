package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/concert-ticketing/internal/model"
)

// ReservationRepo provides data access to the `reservations` table. The
// (user_id, concert_id) unique key guarantees at most one row per pair; the
// row is reused across reserve/cancel cycles rather than deleted and
// recreated, so reservation identity stays stable.
//
// Status transitions are split between two writers: the service inserts rows
// in PENDING, while the queue worker owns every later transition through the
// ...Tx methods so that status changes and capacity adjustments commit
// together.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = `id, user_id, concert_id, status, created_at, updated_at`

func scanReservation(row *sql.Row) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(&res.ID, &res.UserID, &res.ConcertID, &res.Status, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// FindByUserAndConcert returns the reservation for the given pair, or
// sql.ErrNoRows when the user has never reserved this concert.
func (r *ReservationRepo) FindByUserAndConcert(ctx context.Context, userID, concertID string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE user_id = ? AND concert_id = ?`
	return scanReservation(r.db.QueryRowContext(ctx, q, userID, concertID))
}

// Create inserts a new PENDING reservation and returns it. A duplicate-key
// collision (two reserve requests racing for the same pair) is reported as
// ErrReservationExists.
func (r *ReservationRepo) Create(ctx context.Context, userID, concertID string) (*model.Reservation, error) {
	id := uuid.NewString()
	const q = `INSERT INTO reservations (id, user_id, concert_id, status) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, id, userID, concertID, model.ReservationPending); err != nil {
		if isDuplicate(err) {
			return nil, ErrReservationExists
		}
		return nil, err
	}
	const sel = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
	return scanReservation(r.db.QueryRowContext(ctx, sel, id))
}

// GetForUpdateTx loads a reservation by ID inside the given transaction with
// a row lock (SELECT ... FOR UPDATE). The worker uses the lock to serialize
// redelivered or reordered jobs for the same reservation: the status read
// and the subsequent transition commit as one unit.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ? FOR UPDATE`
	return scanReservation(tx.QueryRowContext(ctx, q, id))
}

// UpdateStatusTx sets the reservation status within the given transaction.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, status, id)
	return err
}
