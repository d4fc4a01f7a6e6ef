package models

type ScheduleWorkoutReminderResponse struct {
	Scheduled bool `json:"scheduled"`
}
