package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/concert-ticketing/internal/model"
	"github.com/iliyamo/concert-ticketing/internal/pkg/logger"
	"github.com/iliyamo/concert-ticketing/internal/pkg/metrics"
	"github.com/iliyamo/concert-ticketing/internal/repository"
)

// ReservationWorker is the sole authority for resolving PENDING reservations
// against live capacity and for moving the seats_available counter. It
// consumes the reservations queue; several worker processes may run at once,
// so every transition happens inside one database transaction that locks the
// reservation row and adjusts capacity with a conditional update.
type ReservationWorker struct {
	db           *sql.DB
	reservations *repository.ReservationRepo
	concerts     *repository.ConcertRepo
	metrics      *metrics.Metrics
}

// NewReservationWorker builds a worker over the shared database handle.
func NewReservationWorker(db *sql.DB, res *repository.ReservationRepo, con *repository.ConcertRepo, m *metrics.Metrics) *ReservationWorker {
	return &ReservationWorker{db: db, reservations: res, concerts: con, metrics: m}
}

// Handle dispatches one job from the reservations queue. Unknown job names
// are acknowledged as no-ops so the consumer stays forward compatible.
func (w *ReservationWorker) Handle(ctx context.Context, job Job) error {
	var data SeatJob
	switch job.Name {
	case JobReserveSeat, JobCancelSeat:
		if err := json.Unmarshal(job.Data, &data); err != nil {
			// Redelivery cannot fix a bad payload; ack and log.
			logger.Error("reservation worker: bad seat job payload",
				zap.String("job", job.Name), zap.Error(err))
			w.count("error")
			return nil
		}
	default:
		logger.Warn("reservation worker: unknown job, ignoring", zap.String("job", job.Name))
		return nil
	}

	var err error
	if job.Name == JobReserveSeat {
		err = w.reserve(ctx, data)
	} else {
		err = w.cancel(ctx, data)
	}
	if err != nil {
		w.count("error")
		logger.Error("reservation worker: job failed",
			zap.String("job", job.Name),
			zap.String("reservation_id", data.ReservationID),
			zap.Error(err))
		return err
	}
	return nil
}

// reserve resolves a PENDING (or reused CANCELLED) reservation. The decision
// and the capacity decrement commit atomically: the conditional update
// guards against the counter going below zero even if another worker raced
// past our status read, and the FOR UPDATE lock on the reservation row makes
// redelivered jobs observe the terminal status and skip.
func (w *ReservationWorker) reserve(ctx context.Context, data SeatJob) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := w.reservations.GetForUpdateTx(ctx, tx, data.ReservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Reservation deleted underneath the job; nothing to resolve.
			logger.Warn("reservation worker: reserve job for missing reservation",
				zap.String("reservation_id", data.ReservationID))
			return nil
		}
		return fmt.Errorf("load reservation: %w", err)
	}
	if res.Resolved() {
		// Redelivered job: the outcome was already decided and the seat
		// already accounted for. Acknowledge without touching capacity.
		return tx.Commit()
	}

	granted, err := w.concerts.AdjustSeatsTx(ctx, tx, data.ConcertID, repository.SeatReserve)
	if err != nil {
		return fmt.Errorf("adjust seats: %w", err)
	}
	status := model.ReservationSoldOut
	outcome := "sold_out"
	if granted {
		status = model.ReservationReserved
		outcome = "reserved"
	}
	if err := w.reservations.UpdateStatusTx(ctx, tx, res.ID, status); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	w.count(outcome)
	return nil
}

// cancel marks a reservation CANCELLED and releases its seat only when one
// was actually held. A SOLD_OUT reservation never obtained a seat and a
// PENDING one was not granted yet, so neither increments the counter; this
// branch on the pre-cancel status is what keeps seats from being minted out
// of thin air when cancel jobs arrive before or without their reserve
// counterpart.
func (w *ReservationWorker) cancel(ctx context.Context, data SeatJob) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := w.reservations.GetForUpdateTx(ctx, tx, data.ReservationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Warn("reservation worker: cancel job for missing reservation",
				zap.String("reservation_id", data.ReservationID))
			return nil
		}
		return fmt.Errorf("load reservation: %w", err)
	}
	if res.Status == model.ReservationCancelled {
		// Redelivered cancel: already processed, seat already released.
		return tx.Commit()
	}

	heldSeat := res.HoldsSeat()
	if err := w.reservations.UpdateStatusTx(ctx, tx, res.ID, model.ReservationCancelled); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if heldSeat {
		released, err := w.concerts.AdjustSeatsTx(ctx, tx, data.ConcertID, repository.SeatRelease)
		if err != nil {
			return fmt.Errorf("adjust seats: %w", err)
		}
		if !released {
			// The counter was already at total_seats. That means a
			// bookkeeping bug elsewhere; keep the cancel but flag it.
			logger.Error("reservation worker: release skipped, counter already full",
				zap.String("concert_id", data.ConcertID),
				zap.String("reservation_id", res.ID))
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	w.count("cancelled")
	if heldSeat {
		w.count("released")
	}
	return nil
}

func (w *ReservationWorker) count(outcome string) {
	if w.metrics != nil {
		w.metrics.ReservationsTotal.WithLabelValues(outcome).Inc()
	}
}
