package models

import "time"

// CreateNotificationRequest creates a record for the calling user. The
// target is always the authenticated uid; server-side producers (reminders,
// chat webhook) go through the store directly.
type CreateNotificationRequest struct {
	Type         string            `json:"type"`
	Title        string            `json:"title"`
	Message      string            `json:"message"`
	Data         map[string]string `json:"data"`
	Priority     string            `json:"priority"`
	ScheduledFor *time.Time        `json:"scheduled_for"`
}
