package scheduler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	notificationmodels "io.revoapps.revofit/internal/models/notification"
	"io.revoapps.revofit/internal/store"
)

// NewWorkerMux builds the asynq handler mux for reminder tasks. When a
// workout reminder comes due, the worker creates the notification record;
// the store's create side effect handles the push send.
func NewWorkerMux(st store.Store, logger *zap.SugaredLogger) *asynq.ServeMux {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskTypeWorkoutReminder, func(ctx context.Context, t *asynq.Task) error {
		var p WorkoutReminderPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("invalid workout reminder payload: %w", err)
		}

		_, err := st.Create(ctx, store.CreateInput{
			UserID:   p.UserID,
			Type:     notificationmodels.TypeWorkout,
			Title:    "Workout Reminder",
			Message:  fmt.Sprintf("Time for %s! Let's get moving.", p.WorkoutName),
			Data:     map[string]string{"type": "workout_reminder", "workoutName": p.WorkoutName, "userId": p.UserID},
			Priority: notificationmodels.PriorityHigh,
		})
		if err != nil {
			logger.Errorw("failed to create workout reminder notification", "user_id", p.UserID, "error", err)
			return err
		}

		logger.Infow("workout reminder delivered", "user_id", p.UserID, "workout", p.WorkoutName)
		return nil
	})

	return mux
}
