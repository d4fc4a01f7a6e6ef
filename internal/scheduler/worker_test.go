package scheduler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	notificationmodels "io.revoapps.revofit/internal/models/notification"
)

func TestWorkerCreatesWorkoutNotification(t *testing.T) {
	st := &recordingStore{}
	mux := NewWorkerMux(st, zap.NewNop().Sugar())

	payload, err := json.Marshal(WorkoutReminderPayload{UserID: "u1", WorkoutName: "Upper Body"})
	require.NoError(t, err)

	task := asynq.NewTask(TaskTypeWorkoutReminder, payload)
	require.NoError(t, mux.ProcessTask(context.Background(), task))

	require.Len(t, st.created, 1)
	assert.Equal(t, "u1", st.created[0].UserID)
	assert.Equal(t, notificationmodels.TypeWorkout, st.created[0].Type)
	assert.Equal(t, notificationmodels.PriorityHigh, st.created[0].Priority)
	assert.Contains(t, st.created[0].Message, "Upper Body")
}

func TestWorkerRejectsMalformedPayload(t *testing.T) {
	mux := NewWorkerMux(&recordingStore{}, zap.NewNop().Sugar())

	task := asynq.NewTask(TaskTypeWorkoutReminder, []byte("not json"))
	assert.Error(t, mux.ProcessTask(context.Background(), task))
}
