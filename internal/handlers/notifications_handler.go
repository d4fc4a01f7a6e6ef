package handlers

import (
	"go.uber.org/zap"

	"io.revoapps.revofit/internal/feed"
	"io.revoapps.revofit/internal/push"
	"io.revoapps.revofit/internal/scheduler"
	"io.revoapps.revofit/internal/store"
)

// NotificationsHandler serves the notification feed, device registration,
// and reminder scheduling endpoints.
type NotificationsHandler struct {
	store     store.Store
	registry  *push.Registry
	feeds     *feed.Manager
	scheduler *scheduler.Scheduler
	logger    *zap.SugaredLogger
}

// NewNotificationsHandler creates a new notifications handler
func NewNotificationsHandler(
	st store.Store,
	registry *push.Registry,
	feeds *feed.Manager,
	sched *scheduler.Scheduler,
	logger *zap.SugaredLogger,
) *NotificationsHandler {
	return &NotificationsHandler{
		store:     st,
		registry:  registry,
		feeds:     feeds,
		scheduler: sched,
		logger:    logger,
	}
}
