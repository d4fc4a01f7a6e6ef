package models

import "time"

// ScheduleDailyRemindersRequest re-registers the fixed daily reminder
// triggers for the calling user. Safe to repeat; scheduling is
// cancel-then-reschedule scoped to the caller's own triggers.
type ScheduleDailyRemindersRequest struct {
	Timezone string `json:"timezone"`
}

type ScheduleWorkoutReminderRequest struct {
	WorkoutName string    `json:"workout_name"`
	When        time.Time `json:"when"`
}
