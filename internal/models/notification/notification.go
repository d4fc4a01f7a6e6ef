package models

import "time"

// Type classifies a notification for channel routing and client display.
type Type string

const (
	TypeWorkout     Type = "workout"
	TypeNutrition   Type = "nutrition"
	TypeCoach       Type = "coach"
	TypeReminder    Type = "reminder"
	TypeAchievement Type = "achievement"
	TypeMessage     Type = "message"
	TypeSystem      Type = "system"
)

// Valid reports whether t is one of the known notification types.
func (t Type) Valid() bool {
	switch t {
	case TypeWorkout, TypeNutrition, TypeCoach, TypeReminder, TypeAchievement, TypeMessage, TypeSystem:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// Notification is a single record in the per-user notifications collection.
// CreatedAt is server-assigned and orders the feed descending. IsRead only
// ever transitions false to true; ReadAt is set on that transition.
type Notification struct {
	ID           string            `json:"id" firestore:"-"`
	UserID       string            `json:"user_id" firestore:"userId"`
	Type         Type              `json:"type" firestore:"type"`
	Title        string            `json:"title" firestore:"title"`
	Message      string            `json:"message" firestore:"message"`
	Data         map[string]string `json:"data,omitempty" firestore:"data"`
	IsRead       bool              `json:"is_read" firestore:"isRead"`
	Priority     Priority          `json:"priority" firestore:"priority"`
	ScheduledFor *time.Time        `json:"scheduled_for,omitempty" firestore:"scheduledFor"`
	CreatedAt    time.Time         `json:"created_at" firestore:"createdAt"`
	ReadAt       *time.Time        `json:"read_at,omitempty" firestore:"readAt"`
}

// UnreadCount derives the unread count from a snapshot. The count is never
// stored independently of the records it is computed from.
func UnreadCount(items []*Notification) int {
	n := 0
	for _, item := range items {
		if !item.IsRead {
			n++
		}
	}
	return n
}
