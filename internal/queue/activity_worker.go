package queue

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/iliyamo/concert-ticketing/internal/model"
	"github.com/iliyamo/concert-ticketing/internal/pkg/logger"
)

// ActivityLogWriter persists one audit entry. Implemented by the
// activity-log service.
type ActivityLogWriter interface {
	Create(ctx context.Context, entry *model.ActivityLog) error
}

// ActivityLogWorker consumes the activityLog queue and writes audit-trail
// rows. Insert failures are returned so the delivery is retried; a
// duplicate entry from a redelivered job is harmless since the trail is
// append-only and ordered by time.
type ActivityLogWorker struct {
	logs ActivityLogWriter
}

// NewActivityLogWorker builds an activity-log consumer.
func NewActivityLogWorker(logs ActivityLogWriter) *ActivityLogWorker {
	return &ActivityLogWorker{logs: logs}
}

// Handle processes one job from the activityLog queue.
func (w *ActivityLogWorker) Handle(ctx context.Context, job Job) error {
	if job.Name != JobCreateActivityLog {
		logger.Warn("activity worker: unknown job, ignoring", zap.String("job", job.Name))
		return nil
	}
	var data ActivityLogJob
	if err := json.Unmarshal(job.Data, &data); err != nil {
		logger.Error("activity worker: bad payload", zap.Error(err))
		return nil
	}
	entry := &model.ActivityLog{
		UserID:    data.UserID,
		ConcertID: data.ConcertID,
		Action:    data.Action,
		AdminID:   data.AdminID,
	}
	if err := w.logs.Create(ctx, entry); err != nil {
		logger.Error("activity worker: insert failed", zap.Error(err))
		return err
	}
	return nil
}
