package store

import (
	"context"
	"sync"

	notificationmodels "io.revoapps.revofit/internal/models/notification"
)

// subscription adapts the backend change stream to the Subscription
// contract. The channel holds at most one pending snapshot; a newer
// snapshot replaces an unconsumed one, since only the latest full list
// matters to the consumer.
type subscription struct {
	ch     chan []*notificationmodels.Notification
	cancel context.CancelFunc
	once   sync.Once
}

func newSubscription(cancel context.CancelFunc) *subscription {
	return &subscription{
		ch:     make(chan []*notificationmodels.Notification, 1),
		cancel: cancel,
	}
}

func (s *subscription) Snapshots() <-chan []*notificationmodels.Notification {
	return s.ch
}

// Unsubscribe stops the listener. Safe to call any number of times.
func (s *subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

func (s *subscription) deliver(items []*notificationmodels.Notification) {
	select {
	case s.ch <- items:
	default:
		// Drop the stale pending snapshot and try again.
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- items:
		default:
		}
	}
}
