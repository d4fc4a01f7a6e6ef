package badge

import (
	"context"

	"go.uber.org/zap"
)

// Pusher writes a badge value to all of a user's devices. Implemented by
// the push service's silent badge send.
type Pusher interface {
	PushBadge(ctx context.Context, userID string, count int) error
}

// Synchronizer mirrors the feed's derived unread count to the OS app badge.
// Every sync is a full overwrite of the latest count; there is no
// incremental add/subtract, so missed updates cannot accumulate drift.
// Writes are best-effort: failures are logged and never propagated, the
// badge being a cosmetic mirror of state the feed already holds correctly.
type Synchronizer struct {
	pusher Pusher
	logger *zap.SugaredLogger
}

func NewSynchronizer(pusher Pusher, logger *zap.SugaredLogger) *Synchronizer {
	return &Synchronizer{pusher: pusher, logger: logger}
}

func (s *Synchronizer) SetBadge(ctx context.Context, userID string, count int) {
	if count < 0 {
		count = 0
	}
	if err := s.pusher.PushBadge(ctx, userID, count); err != nil {
		s.logger.Warnw("badge sync failed", "user_id", userID, "count", count, "error", err)
	}
}

func (s *Synchronizer) ClearBadge(ctx context.Context, userID string) {
	s.SetBadge(ctx, userID, 0)
}
