package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/concert-ticketing/internal/model"
)

type mockActivityLogWriter struct{ mock.Mock }

func (m *mockActivityLogWriter) Create(ctx context.Context, entry *model.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func activityJob(t *testing.T, data ActivityLogJob) Job {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return Job{Name: JobCreateActivityLog, Data: raw}
}

func TestActivityWorkerWritesEntry(t *testing.T) {
	writer := &mockActivityLogWriter{}
	w := NewActivityLogWorker(writer)
	writer.On("Create", mock.Anything, mock.MatchedBy(func(e *model.ActivityLog) bool {
		return e.UserID == "u1" && e.ConcertID == "c1" && e.Action == model.ActionReserve && e.AdminID == "admin"
	})).Return(nil)

	err := w.Handle(context.Background(), activityJob(t, ActivityLogJob{
		UserID:    "u1",
		ConcertID: "c1",
		Action:    model.ActionReserve,
		AdminID:   "admin",
	}))
	require.NoError(t, err)
	writer.AssertExpectations(t)
}

func TestActivityWorkerInsertFailureIsRetried(t *testing.T) {
	writer := &mockActivityLogWriter{}
	w := NewActivityLogWorker(writer)
	writer.On("Create", mock.Anything, mock.Anything).Return(errors.New("db gone"))

	err := w.Handle(context.Background(), activityJob(t, ActivityLogJob{UserID: "u1"}))
	assert.Error(t, err)
}

func TestActivityWorkerIgnoresUnknownJob(t *testing.T) {
	writer := &mockActivityLogWriter{}
	w := NewActivityLogWorker(writer)

	err := w.Handle(context.Background(), Job{Name: "reserve-seat", Data: json.RawMessage(`{}`)})
	assert.NoError(t, err)
	writer.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestActivityWorkerAcksMalformedPayload(t *testing.T) {
	writer := &mockActivityLogWriter{}
	w := NewActivityLogWorker(writer)

	err := w.Handle(context.Background(), Job{Name: JobCreateActivityLog, Data: json.RawMessage(`{broken`)})
	assert.NoError(t, err)
	writer.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
