package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/concert-ticketing/internal/model"
	"github.com/iliyamo/concert-ticketing/internal/pkg/logger"
	"github.com/iliyamo/concert-ticketing/internal/queue"
	"github.com/iliyamo/concert-ticketing/internal/repository"
)

// ReservationStore is the persistence surface the reservation service needs.
// Implemented by repository.ReservationRepo.
type ReservationStore interface {
	FindByUserAndConcert(ctx context.Context, userID, concertID string) (*model.Reservation, error)
	Create(ctx context.Context, userID, concertID string) (*model.Reservation, error)
}

// ConcertFinder looks up a concert; the reservation service only needs the
// owner for activity-log attribution. Implemented by repository.ConcertRepo.
type ConcertFinder interface {
	FindOne(ctx context.Context, id string) (*model.Concert, error)
}

// CommonResponse is the acknowledgement returned by reserve and cancel. A
// true status means the request was accepted and enqueued, not that the
// seat is confirmed; the final RESERVED/SOLD_OUT outcome is resolved
// asynchronously by the worker.
type CommonResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// ReservationService accepts reserve/cancel requests, enforces the
// one-reservation-per-user-per-concert rule at request time and hands the
// actual state transitions to the reservations queue. It never mutates
// reservation status or capacity itself.
type ReservationService struct {
	reservations ReservationStore
	concerts     ConcertFinder
	jobs         queue.Publisher
}

// NewReservationService wires the reservation service.
func NewReservationService(res ReservationStore, con ConcertFinder, jobs queue.Publisher) *ReservationService {
	return &ReservationService{reservations: res, concerts: con, jobs: jobs}
}

// Reserve accepts a reservation request for (userID, concertID).
//
// An existing reservation in any status other than CANCELLED is a conflict.
// A CANCELLED row is reused as-is; the worker will transition it when the
// reserve job lands, keeping reservation identity stable across cycles. On
// success a reserve-seat job and an activity-log entry are enqueued and the
// call returns immediately.
func (s *ReservationService) Reserve(ctx context.Context, userID, concertID string) (*CommonResponse, error) {
	existing, err := s.reservations.FindByUserAndConcert(ctx, userID, concertID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Error("reserve: lookup failed", zap.Error(err))
		return nil, Dependency(err)
	}
	if existing != nil && existing.Status != model.ReservationCancelled {
		return nil, Conflict("Reservation already exist")
	}

	res := existing
	if res == nil {
		res, err = s.reservations.Create(ctx, userID, concertID)
		if err != nil {
			if errors.Is(err, repository.ErrReservationExists) {
				// Lost a race with a concurrent reserve for the same pair.
				return nil, Conflict("Reservation already exist")
			}
			logger.Error("reserve: create failed", zap.Error(err))
			return nil, Dependency(err)
		}
	}

	if err := s.jobs.Publish(ctx, queue.ReservationsQueue, queue.JobReserveSeat, queue.SeatJob{
		ReservationID: res.ID,
		ConcertID:     res.ConcertID,
	}); err != nil {
		logger.Error("reserve: enqueue failed", zap.Error(err))
		return nil, Dependency(err)
	}

	if err := s.enqueueActivityLog(ctx, userID, concertID, model.ActionReserve); err != nil {
		return nil, err
	}

	return &CommonResponse{Status: true, Message: "Reservation created successfully"}, nil
}

// Cancel accepts a cancellation request for (userID, concertID). The status
// transition and any capacity release happen in the worker, keeping all
// seat bookkeeping on the single consumer path.
func (s *ReservationService) Cancel(ctx context.Context, userID, concertID string) (*CommonResponse, error) {
	existing, err := s.reservations.FindByUserAndConcert(ctx, userID, concertID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFound("Reservation not found")
		}
		logger.Error("cancel: lookup failed", zap.Error(err))
		return nil, Dependency(err)
	}

	if err := s.jobs.Publish(ctx, queue.ReservationsQueue, queue.JobCancelSeat, queue.SeatJob{
		ReservationID: existing.ID,
		ConcertID:     existing.ConcertID,
	}); err != nil {
		logger.Error("cancel: enqueue failed", zap.Error(err))
		return nil, Dependency(err)
	}

	if err := s.enqueueActivityLog(ctx, userID, concertID, model.ActionCancel); err != nil {
		return nil, err
	}

	return &CommonResponse{Status: true, Message: "Reservation cancelled successfully"}, nil
}

// enqueueActivityLog looks up the concert's owning admin and enqueues the
// audit entry. A concert deleted in the meantime still gets a log row, just
// without admin attribution.
func (s *ReservationService) enqueueActivityLog(ctx context.Context, userID, concertID, action string) error {
	adminID := ""
	concert, err := s.concerts.FindOne(ctx, concertID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Error("activity log: concert lookup failed", zap.Error(err))
		return Dependency(err)
	}
	if concert != nil {
		adminID = concert.CreatedBy
	}
	if err := s.jobs.Publish(ctx, queue.ActivityLogQueue, queue.JobCreateActivityLog, queue.ActivityLogJob{
		UserID:    userID,
		ConcertID: concertID,
		Action:    action,
		AdminID:   adminID,
	}); err != nil {
		logger.Error("activity log: enqueue failed", zap.Error(err))
		return Dependency(err)
	}
	return nil
}
