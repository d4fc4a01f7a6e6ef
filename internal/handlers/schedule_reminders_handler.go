package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	schedulemodels "io.revoapps.revofit/internal/models/schedule_reminder"
)

// ScheduleDailyReminders re-registers the user's fixed-time daily reminder
// triggers. The app calls this on every notification init; scheduling is
// cancel-then-reschedule scoped to this user's own triggers.
func (h *NotificationsHandler) ScheduleDailyReminders(c *gin.Context) {
	var req schedulemodels.ScheduleDailyRemindersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if req.Timezone == "" {
		req.Timezone = "UTC"
	}

	if err := h.scheduler.ScheduleDailyReminders(uid.(string), req.Timezone); err != nil {
		h.logError(c, err, "failed to schedule daily reminders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule reminders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Daily reminders scheduled"})
}

// ScheduleWorkoutReminder schedules a one-off reminder for a future
// timestamp. A past timestamp schedules nothing and is not an error.
func (h *NotificationsHandler) ScheduleWorkoutReminder(c *gin.Context) {
	var req schedulemodels.ScheduleWorkoutReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if req.WorkoutName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Workout name is required"})
		return
	}

	scheduled, err := h.scheduler.ScheduleWorkoutReminder(uid.(string), req.WorkoutName, req.When)
	if err != nil {
		h.logError(c, err, "failed to schedule workout reminder")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule reminder"})
		return
	}

	c.JSON(http.StatusOK, schedulemodels.ScheduleWorkoutReminderResponse{Scheduled: scheduled})
}
