package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/concert-ticketing/internal/model"
)

// Seat adjustment directions accepted by AdjustSeatsTx.
const (
	SeatReserve = "reserve" // decrement seats_available by one
	SeatRelease = "release" // increment seats_available by one
)

// ConcertRepo provides data access to the `concerts` table, including the
// capacity counter. All capacity mutations go through AdjustSeatsTx, which
// performs a conditional single-statement UPDATE so concurrent workers can
// never drive the counter below zero or above total_seats.
type ConcertRepo struct {
	db *sql.DB
}

// NewConcertRepo returns a new ConcertRepo bound to the given database.
func NewConcertRepo(db *sql.DB) *ConcertRepo { return &ConcertRepo{db: db} }

// Create inserts a new concert with seats_available initialised to the full
// capacity and populates the generated ID on the passed model.
func (r *ConcertRepo) Create(ctx context.Context, c *model.Concert) error {
	c.ID = uuid.NewString()
	const q = `INSERT INTO concerts (id, name, description, total_seats, seats_available, created_by)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.Description, c.TotalSeats, c.SeatsAvailable, c.CreatedBy)
	return err
}

// FindOne returns the concert with the given ID. When no row exists,
// sql.ErrNoRows is returned.
func (r *ConcertRepo) FindOne(ctx context.Context, id string) (*model.Concert, error) {
	const q = `SELECT id, name, description, total_seats, seats_available, created_by, created_at, updated_at
	           FROM concerts WHERE id = ?`
	var (
		c    model.Concert
		desc sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.Name, &desc, &c.TotalSeats, &c.SeatsAvailable, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		c.Description = desc.String
	}
	return &c, nil
}

// Delete removes a concert row. It returns sql.ErrNoRows when the concert
// does not exist so callers can translate it into a not-found response.
func (r *ConcertRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM concerts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ConcertWithStatus pairs a concert row with the calling user's reservation
// status for that concert, if any. It is the row shape returned by List.
type ConcertWithStatus struct {
	model.Concert
	UserReservationStatus *string
}

// List returns concerts ordered newest first along with the given user's
// reservation status per concert. Pagination is applied through take/skip.
func (r *ConcertRepo) List(ctx context.Context, userID string, take, skip int) ([]ConcertWithStatus, error) {
	const q = `SELECT c.id, c.name, c.description, c.total_seats, c.seats_available, c.created_by,
	                  c.created_at, c.updated_at, r.status
	           FROM concerts c
	           LEFT JOIN reservations r ON r.concert_id = c.id AND r.user_id = ?
	           ORDER BY c.created_at DESC
	           LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, userID, take, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ConcertWithStatus, 0)
	for rows.Next() {
		var (
			c      ConcertWithStatus
			desc   sql.NullString
			status sql.NullString
		)
		if err := rows.Scan(
			&c.ID, &c.Name, &desc, &c.TotalSeats, &c.SeatsAvailable, &c.CreatedBy,
			&c.CreatedAt, &c.UpdatedAt, &status,
		); err != nil {
			return nil, err
		}
		if desc.Valid {
			c.Description = desc.String
		}
		if status.Valid {
			s := status.String
			c.UserReservationStatus = &s
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary aggregates the concert inventory: the sum of all capacities plus
// the number of reservations currently RESERVED and CANCELLED.
type Summary struct {
	TotalSeat int64 `json:"totalSeat"`
	Reserved  int64 `json:"reserved"`
	Cancelled int64 `json:"cancelled"`
}

// GetSummary computes the inventory summary across all concerts.
func (r *ConcertRepo) GetSummary(ctx context.Context) (Summary, error) {
	const q = `SELECT COALESCE(SUM(c.total_seats), 0),
	                  COALESCE(SUM(CASE WHEN r.status = 'RESERVED' THEN 1 ELSE 0 END), 0),
	                  COALESCE(SUM(CASE WHEN r.status = 'CANCELLED' THEN 1 ELSE 0 END), 0)
	           FROM concerts c
	           LEFT JOIN reservations r ON r.concert_id = c.id`
	var s Summary
	err := r.db.QueryRowContext(ctx, q).Scan(&s.TotalSeat, &s.Reserved, &s.Cancelled)
	return s, err
}

// AdjustSeatsTx moves the seats_available counter by exactly one in the given
// direction, inside the caller's transaction. The UPDATE carries its own
// guard (seats_available > 0 for reserve, seats_available < total_seats for
// release) so the adjustment is atomic at the database level and never
// trusts an earlier read. The returned bool reports whether the guard
// matched and the counter actually moved; a reserve that returns false means
// the concert is sold out.
func (r *ConcertRepo) AdjustSeatsTx(ctx context.Context, tx *sql.Tx, concertID, direction string) (bool, error) {
	var q string
	switch direction {
	case SeatReserve:
		q = `UPDATE concerts SET seats_available = seats_available - 1
		     WHERE id = ? AND seats_available > 0`
	case SeatRelease:
		q = `UPDATE concerts SET seats_available = seats_available + 1
		     WHERE id = ? AND seats_available < total_seats`
	default:
		return false, errUnknownDirection(direction)
	}
	res, err := tx.ExecContext(ctx, q, concertID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type errUnknownDirection string

func (e errUnknownDirection) Error() string { return "unknown seat direction: " + string(e) }
