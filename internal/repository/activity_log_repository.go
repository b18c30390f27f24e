package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/concert-ticketing/internal/model"
)

// ActivityLogRepo persists audit entries for reserve/cancel actions. Rows
// are written by the activity-log queue consumer and listed per admin.
type ActivityLogRepo struct {
	db *sql.DB
}

// NewActivityLogRepo returns a new ActivityLogRepo bound to the given database.
func NewActivityLogRepo(db *sql.DB) *ActivityLogRepo { return &ActivityLogRepo{db: db} }

// Create inserts one activity-log row. AdminID may be empty when the concert
// (and therefore its owner) was deleted before the job was processed.
func (r *ActivityLogRepo) Create(ctx context.Context, entry *model.ActivityLog) error {
	entry.ID = uuid.NewString()
	const q = `INSERT INTO activity_logs (id, user_id, concert_id, action, admin_id) VALUES (?, ?, ?, ?, ?)`
	var admin interface{}
	if entry.AdminID != "" {
		admin = entry.AdminID
	}
	_, err := r.db.ExecContext(ctx, q, entry.ID, entry.UserID, entry.ConcertID, entry.Action, admin)
	return err
}

// ActivityLogEntry is the row shape returned to admins: the raw log columns
// joined with the acting user's username and the concert name.
type ActivityLogEntry struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Username    string    `json:"username"`
	ConcertName string    `json:"concertName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CountByAdmin returns the number of log entries recorded for the admin.
func (r *ActivityLogRepo) CountByAdmin(ctx context.Context, adminID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_logs WHERE admin_id = ?`, adminID).Scan(&n)
	return n, err
}

// ListByAdmin returns the admin's log entries newest first, joined with the
// acting user's username and the concert name. Logs referencing deleted
// users or concerts are kept with empty display names.
func (r *ActivityLogRepo) ListByAdmin(ctx context.Context, adminID string, take, skip int) ([]ActivityLogEntry, error) {
	const q = `SELECT a.id, a.action, COALESCE(u.username, ''), COALESCE(c.name, ''), a.created_at
	           FROM activity_logs a
	           LEFT JOIN users u ON u.id = a.user_id
	           LEFT JOIN concerts c ON c.id = a.concert_id
	           WHERE a.admin_id = ?
	           ORDER BY a.created_at DESC
	           LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, adminID, take, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ActivityLogEntry, 0)
	for rows.Next() {
		var e ActivityLogEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.Username, &e.ConcertName, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
