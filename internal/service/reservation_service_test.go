package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/concert-ticketing/internal/model"
	"github.com/iliyamo/concert-ticketing/internal/queue"
	"github.com/iliyamo/concert-ticketing/internal/repository"
)

type mockReservationStore struct{ mock.Mock }

func (m *mockReservationStore) FindByUserAndConcert(ctx context.Context, userID, concertID string) (*model.Reservation, error) {
	args := m.Called(ctx, userID, concertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *mockReservationStore) Create(ctx context.Context, userID, concertID string) (*model.Reservation, error) {
	args := m.Called(ctx, userID, concertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

type mockConcertFinder struct{ mock.Mock }

func (m *mockConcertFinder) FindOne(ctx context.Context, id string) (*model.Concert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Concert), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, queueName, jobName string, data interface{}) error {
	args := m.Called(ctx, queueName, jobName, data)
	return args.Error(0)
}

func newReservationFixture() (*mockReservationStore, *mockConcertFinder, *mockPublisher, *ReservationService) {
	store := &mockReservationStore{}
	finder := &mockConcertFinder{}
	pub := &mockPublisher{}
	return store, finder, pub, NewReservationService(store, finder, pub)
}

func TestReserveRejectsActiveReservation(t *testing.T) {
	for _, status := range []string{
		model.ReservationPending,
		model.ReservationReserved,
		model.ReservationSoldOut,
		model.ReservationFailed,
	} {
		t.Run(status, func(t *testing.T) {
			store, _, pub, svc := newReservationFixture()
			store.On("FindByUserAndConcert", mock.Anything, "u1", "c1").
				Return(&model.Reservation{ID: "r1", Status: status}, nil)

			resp, err := svc.Reserve(context.Background(), "u1", "c1")
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.Equal(t, "Reservation already exist", err.Error())
			assert.Equal(t, http.StatusBadRequest, CodeOf(err))
			pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestReserveReusesCancelledRow(t *testing.T) {
	store, finder, pub, svc := newReservationFixture()
	existing := &model.Reservation{ID: "r1", UserID: "u1", ConcertID: "c1", Status: model.ReservationCancelled}
	store.On("FindByUserAndConcert", mock.Anything, "u1", "c1").Return(existing, nil)
	finder.On("FindOne", mock.Anything, "c1").
		Return(&model.Concert{ID: "c1", CreatedBy: "admin"}, nil)
	pub.On("Publish", mock.Anything, queue.ReservationsQueue, queue.JobReserveSeat,
		queue.SeatJob{ReservationID: "r1", ConcertID: "c1"}).Return(nil)
	pub.On("Publish", mock.Anything, queue.ActivityLogQueue, queue.JobCreateActivityLog,
		queue.ActivityLogJob{UserID: "u1", ConcertID: "c1", Action: model.ActionReserve, AdminID: "admin"}).Return(nil)

	resp, err := svc.Reserve(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.True(t, resp.Status)
	assert.Equal(t, "Reservation created successfully", resp.Message)
	// Reuse, not recreate: the same row identity flows to the queue.
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	pub.AssertExpectations(t)
}

func TestReserveCreatesPendingRowAndEnqueues(t *testing.T) {
	store, finder, pub, svc := newReservationFixture()
	store.On("FindByUserAndConcert", mock.Anything, "u1", "c1").Return(nil, sql.ErrNoRows)
	store.On("Create", mock.Anything, "u1", "c1").
		Return(&model.Reservation{ID: "r2", UserID: "u1", ConcertID: "c1", Status: model.ReservationPending}, nil)
	finder.On("FindOne", mock.Anything, "c1").
		Return(&model.Concert{ID: "c1", CreatedBy: "admin"}, nil)
	pub.On("Publish", mock.Anything, queue.ReservationsQueue, queue.JobReserveSeat,
		queue.SeatJob{ReservationID: "r2", ConcertID: "c1"}).Return(nil)
	pub.On("Publish", mock.Anything, queue.ActivityLogQueue, queue.JobCreateActivityLog,
		mock.Anything).Return(nil)

	resp, err := svc.Reserve(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "Reservation created successfully", resp.Message)
	store.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestReserveLosingCreateRaceIsConflict(t *testing.T) {
	store, _, _, svc := newReservationFixture()
	store.On("FindByUserAndConcert", mock.Anything, "u1", "c1").Return(nil, sql.ErrNoRows)
	store.On("Create", mock.Anything, "u1", "c1").Return(nil, repository.ErrReservationExists)

	_, err := svc.Reserve(context.Background(), "u1", "c1")
	require.Error(t, err)
	assert.Equal(t, "Reservation already exist", err.Error())
	assert.Equal(t, http.StatusBadRequest, CodeOf(err))
}

func TestReservePublishFailureSurfacesBrokerError(t *testing.T) {
	store, _, pub, svc := newReservationFixture()
	store.On("FindByUserAndConcert", mock.Anything, "u1", "c1").Return(nil, sql.ErrNoRows)
	store.On("Create", mock.Anything, "u1", "c1").
		Return(&model.Reservation{ID: "r2", UserID: "u1", ConcertID: "c1", Status: model.ReservationPending}, nil)
	brokerErr := errors.New("amqp: connection refused")
	pub.On("Publish", mock.Anything, queue.ReservationsQueue, queue.JobReserveSeat, mock.Anything).
		Return(brokerErr)

	_, err := svc.Reserve(context.Background(), "u1", "c1")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, CodeOf(err))
	// The broker's own message survives to the client.
	assert.Equal(t, brokerErr.Error(), err.Error())
}

func TestCancelUnknownReservationIsNotFound(t *testing.T) {
	store, _, pub, svc := newReservationFixture()
	store.On("FindByUserAndConcert", mock.Anything, "u1", "c1").Return(nil, sql.ErrNoRows)

	resp, err := svc.Cancel(context.Background(), "u1", "c1")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, "Reservation not found", err.Error())
	assert.Equal(t, http.StatusNotFound, CodeOf(err))
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelEnqueuesJobAndActivityLog(t *testing.T) {
	store, finder, pub, svc := newReservationFixture()
	store.On("FindByUserAndConcert", mock.Anything, "u1", "c1").
		Return(&model.Reservation{ID: "r1", UserID: "u1", ConcertID: "c1", Status: model.ReservationReserved}, nil)
	finder.On("FindOne", mock.Anything, "c1").
		Return(&model.Concert{ID: "c1", CreatedBy: "admin"}, nil)
	pub.On("Publish", mock.Anything, queue.ReservationsQueue, queue.JobCancelSeat,
		queue.SeatJob{ReservationID: "r1", ConcertID: "c1"}).Return(nil)
	pub.On("Publish", mock.Anything, queue.ActivityLogQueue, queue.JobCreateActivityLog,
		queue.ActivityLogJob{UserID: "u1", ConcertID: "c1", Action: model.ActionCancel, AdminID: "admin"}).Return(nil)

	resp, err := svc.Cancel(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.True(t, resp.Status)
	assert.Equal(t, "Reservation cancelled successfully", resp.Message)
	pub.AssertExpectations(t)
}

func TestActivityLogSurvivesDeletedConcert(t *testing.T) {
	store, finder, pub, svc := newReservationFixture()
	store.On("FindByUserAndConcert", mock.Anything, "u1", "c1").
		Return(&model.Reservation{ID: "r1", UserID: "u1", ConcertID: "c1", Status: model.ReservationReserved}, nil)
	finder.On("FindOne", mock.Anything, "c1").Return(nil, sql.ErrNoRows)
	pub.On("Publish", mock.Anything, queue.ReservationsQueue, queue.JobCancelSeat, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, queue.ActivityLogQueue, queue.JobCreateActivityLog,
		queue.ActivityLogJob{UserID: "u1", ConcertID: "c1", Action: model.ActionCancel, AdminID: ""}).Return(nil)

	_, err := svc.Cancel(context.Background(), "u1", "c1")
	require.NoError(t, err)
	pub.AssertExpectations(t)
}
