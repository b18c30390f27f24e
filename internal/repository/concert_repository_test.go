package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/concert-ticketing/internal/model"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestConcertCreateStartsAtFullCapacity(t *testing.T) {
	db, mock := newDB(t)
	repo := NewConcertRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO concerts")).
		WithArgs(sqlmock.AnyArg(), "Open Air", "summer night", uint32(500), uint32(500), "admin").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c := &model.Concert{
		Name:           "Open Air",
		Description:    "summer night",
		TotalSeats:     500,
		SeatsAvailable: 500,
		CreatedBy:      "admin",
	}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.NotEmpty(t, c.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConcertDeleteMissingRowReturnsNoRows(t *testing.T) {
	db, mock := newDB(t)
	repo := NewConcertRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM concerts WHERE id = ?")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestConcertListCarriesUserReservationStatus(t *testing.T) {
	db, mock := newDB(t)
	repo := NewConcertRepo(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "description", "total_seats", "seats_available",
		"created_by", "created_at", "updated_at", "status",
	}).
		AddRow("c1", "Open Air", "summer night", 500, 120, "admin", now, now, "RESERVED").
		AddRow("c2", "Indoor", nil, 100, 100, "admin", now, now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN reservations r ON r.concert_id = c.id AND r.user_id = ?")).
		WithArgs("u1", 10, 0).
		WillReturnRows(rows)

	out, err := repo.List(context.Background(), "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.NotNil(t, out[0].UserReservationStatus)
	assert.Equal(t, "RESERVED", *out[0].UserReservationStatus)
	assert.Nil(t, out[1].UserReservationStatus)
	assert.Empty(t, out[1].Description)
}

func TestGetSummaryAggregatesInventory(t *testing.T) {
	db, mock := newDB(t)
	repo := NewConcertRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(SUM(c.total_seats), 0)")).
		WillReturnRows(sqlmock.NewRows([]string{"total", "reserved", "cancelled"}).AddRow(600, 42, 7))

	s, err := repo.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{TotalSeat: 600, Reserved: 42, Cancelled: 7}, s)
}

func TestAdjustSeatsTxReportsGuardOutcome(t *testing.T) {
	cases := []struct {
		name      string
		direction string
		affected  int64
		moved     bool
		fragment  string
	}{
		{"reserve grants", SeatReserve, 1, true, "seats_available = seats_available - 1"},
		{"reserve sold out", SeatReserve, 0, false, "seats_available = seats_available - 1"},
		{"release succeeds", SeatRelease, 1, true, "seats_available = seats_available + 1"},
		{"release at full", SeatRelease, 0, false, "seats_available = seats_available + 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newDB(t)
			repo := NewConcertRepo(db)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(tc.fragment)).
				WithArgs("c1").
				WillReturnResult(sqlmock.NewResult(0, tc.affected))

			tx, err := db.Begin()
			require.NoError(t, err)
			moved, err := repo.AdjustSeatsTx(context.Background(), tx, "c1", tc.direction)
			require.NoError(t, err)
			assert.Equal(t, tc.moved, moved)
		})
	}
}

func TestAdjustSeatsTxRejectsUnknownDirection(t *testing.T) {
	db, mock := newDB(t)
	repo := NewConcertRepo(db)

	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)

	_, err = repo.AdjustSeatsTx(context.Background(), tx, "c1", "sideways")
	assert.EqualError(t, err, "unknown seat direction: sideways")
}
