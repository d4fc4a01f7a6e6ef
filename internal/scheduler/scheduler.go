package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	notificationmodels "io.revoapps.revofit/internal/models/notification"
	"io.revoapps.revofit/internal/store"
)

// TaskTypeWorkoutReminder is the asynq task type for one-off workout
// reminders.
const TaskTypeWorkoutReminder = "reminder:workout"

// WorkoutReminderPayload rides the asynq task for a scheduled workout
// reminder.
type WorkoutReminderPayload struct {
	UserID      string `json:"user_id"`
	WorkoutName string `json:"workout_name"`
}

// TaskEnqueuer is the slice of asynq.Client the scheduler needs.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type dailySlot struct {
	name    string
	hour    int
	minute  int
	title   string
	message string
}

// The three fixed daily reminder times, expressed in the user's local time.
var dailySlots = []dailySlot{
	{name: "morning", hour: 7, minute: 30, title: "Good morning!", message: "Start your day strong — check today's workout plan."},
	{name: "midday", hour: 12, minute: 30, title: "Midday check-in", message: "Don't forget to log your lunch and stay hydrated."},
	{name: "evening", hour: 18, minute: 30, title: "Evening reminder", message: "There's still time to finish today's workout."},
}

// Scheduler fires the fixed daily reminders through a cron manager and
// one-off workout reminders through the asynq delayed queue. Firing a
// reminder creates a notification record, which triggers the push send.
type Scheduler struct {
	cron   *cron.Cron
	tasks  TaskEnqueuer
	store  store.Store
	logger *zap.SugaredLogger
	now    func() time.Time

	mu sync.Mutex
	// Cron entry IDs this scheduler created, per user. Rescheduling removes
	// only these, never foreign entries or other users' triggers.
	dailyEntries map[string][]cron.EntryID
}

func NewScheduler(c *cron.Cron, tasks TaskEnqueuer, st store.Store, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		cron:         c,
		tasks:        tasks,
		store:        st,
		logger:       logger,
		now:          time.Now,
		dailyEntries: make(map[string][]cron.EntryID),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron manager and returns a context that is done when all
// running jobs have completed.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// ScheduleDailyReminders registers the three fixed-time daily triggers for
// the user, cancelling and replacing the triggers this scheduler previously
// created for the same user. Re-invoking is cheap and idempotent.
func (s *Scheduler) ScheduleDailyReminders(userID, timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		s.logger.Warnw("invalid timezone for daily reminders, falling back to UTC", "user_id", userID, "timezone", timezone)
		loc = time.UTC
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.dailyEntries[userID] {
		s.cron.Remove(id)
	}
	s.dailyEntries[userID] = nil

	for _, slot := range dailySlots {
		// CRON_TZ keeps the trigger at the slot's local wall-clock time, so a
		// DST transition does not shift the firing hour.
		spec := fmt.Sprintf("CRON_TZ=%s %d %d * * *", loc.String(), slot.minute, slot.hour)

		slot := slot
		id, err := s.cron.AddFunc(spec, func() {
			s.fireDailyReminder(userID, slot)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule %s reminder: %w", slot.name, err)
		}
		s.dailyEntries[userID] = append(s.dailyEntries[userID], id)
	}

	s.logger.Infow("daily reminders scheduled", "user_id", userID, "timezone", loc.String())
	return nil
}

// CancelDailyReminders removes the user's daily triggers, scoped to the
// entries this scheduler created.
func (s *Scheduler) CancelDailyReminders(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.dailyEntries[userID] {
		s.cron.Remove(id)
	}
	delete(s.dailyEntries, userID)
}

func (s *Scheduler) fireDailyReminder(userID string, slot dailySlot) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.store.Create(ctx, store.CreateInput{
		UserID:   userID,
		Type:     notificationmodels.TypeReminder,
		Title:    slot.title,
		Message:  slot.message,
		Data:     map[string]string{"type": "daily_reminder", "slot": slot.name, "userId": userID},
		Priority: notificationmodels.PriorityNormal,
	})
	if err != nil {
		s.logger.Errorw("failed to create daily reminder", "user_id", userID, "slot", slot.name, "error", err)
	}
}

// ScheduleWorkoutReminder enqueues a one-off reminder for a future
// timestamp. A past timestamp is silently dropped — a stale reminder is not
// actionable — and reported as not scheduled, not as an error.
func (s *Scheduler) ScheduleWorkoutReminder(userID, workoutName string, when time.Time) (bool, error) {
	if !when.After(s.now()) {
		s.logger.Debugw("dropping workout reminder in the past", "user_id", userID, "when", when)
		return false, nil
	}

	payload, err := json.Marshal(WorkoutReminderPayload{UserID: userID, WorkoutName: workoutName})
	if err != nil {
		return false, fmt.Errorf("failed to encode workout reminder: %w", err)
	}

	task := asynq.NewTask(TaskTypeWorkoutReminder, payload)
	if _, err := s.tasks.Enqueue(task, asynq.ProcessAt(when)); err != nil {
		return false, fmt.Errorf("failed to enqueue workout reminder: %w", err)
	}

	s.logger.Infow("workout reminder scheduled", "user_id", userID, "workout", workoutName, "when", when)
	return true, nil
}
