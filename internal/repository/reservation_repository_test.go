package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/concert-ticketing/internal/model"
)

func resRows(id, userID, concertID, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "user_id", "concert_id", "status", "created_at", "updated_at"}).
		AddRow(id, userID, concertID, status, now, now)
}

func TestFindByUserAndConcert(t *testing.T) {
	db, mock := newDB(t)
	repo := NewReservationRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE user_id = ? AND concert_id = ?")).
		WithArgs("u1", "c1").
		WillReturnRows(resRows("r1", "u1", "c1", model.ReservationReserved))

	res, err := repo.FindByUserAndConcert(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "r1", res.ID)
	assert.Equal(t, model.ReservationReserved, res.Status)
}

func TestFindByUserAndConcertNoRow(t *testing.T) {
	db, mock := newDB(t)
	repo := NewReservationRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE user_id = ? AND concert_id = ?")).
		WithArgs("u1", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "concert_id", "status", "created_at", "updated_at"}))

	_, err := repo.FindByUserAndConcert(context.Background(), "u1", "c1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCreateInsertsPendingRow(t *testing.T) {
	db, mock := newDB(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations (id, user_id, concert_id, status)")).
		WithArgs(sqlmock.AnyArg(), "u1", "c1", model.ReservationPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id = ?")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(resRows("r1", "u1", "c1", model.ReservationPending))

	res, err := repo.Create(context.Background(), "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, res.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicatePairIsErrReservationExists(t *testing.T) {
	db, mock := newDB(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
		WithArgs(sqlmock.AnyArg(), "u1", "c1", model.ReservationPending).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'u1-c1' for key 'uq_reservations_user_concert'"))

	_, err := repo.Create(context.Background(), "u1", "c1")
	assert.ErrorIs(t, err, ErrReservationExists)
}

func TestUpdateStatusTx(t *testing.T) {
	db, mock := newDB(t)
	repo := NewReservationRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = ? WHERE id = ?")).
		WithArgs(model.ReservationCancelled, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatusTx(context.Background(), tx, "r1", model.ReservationCancelled))
}
