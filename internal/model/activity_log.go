package model

import "time"

// Activity log actions recorded for audit when users reserve or cancel.
const (
	ActionReserve = "RESERVE"
	ActionCancel  = "CANCEL"
)

// ActivityLog mirrors the `activity_logs` table. Entries are written
// asynchronously by the activity-log queue consumer and listed per admin
// (the owner of the concert the action was taken against).
type ActivityLog struct {
	ID        string    // activity_logs.id
	UserID    string    // activity_logs.user_id
	ConcertID string    // activity_logs.concert_id
	Action    string    // activity_logs.action (RESERVE or CANCEL)
	AdminID   string    // activity_logs.admin_id (username of the concert owner)
	CreatedAt time.Time // activity_logs.created_at
}
