package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	notificationmodels "io.revoapps.revofit/internal/models/notification"
	"io.revoapps.revofit/internal/store"
)

// State is the feed session lifecycle. A session is created Unauthenticated,
// moves to Loading when the initial fetch is issued, then Ready with a live
// subscription, or Error with a retry path that re-attempts the same
// transition. Sign-out tears the session back down to Unauthenticated.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateLoading         State = "loading"
	StateReady           State = "ready"
	StateError           State = "error"
)

const unreadCacheTTL = 24 * time.Hour

// BadgeSink receives every unread-count recomputation. Only the feed (or an
// explicit clear) may drive the badge; no other component writes it.
type BadgeSink interface {
	SetBadge(ctx context.Context, userID string, count int)
	ClearBadge(ctx context.Context, userID string)
}

// Snapshot is the feed view exposed to clients: the current list, the
// derived unread count, and the session state.
type Snapshot struct {
	State         State                              `json:"state"`
	Notifications []*notificationmodels.Notification `json:"notifications"`
	UnreadCount   int                                `json:"unread_count"`
	Error         string                             `json:"error,omitempty"`
}

// Session is one user's live notification feed. All mutations are
// optimistic: the local state change stands even if the server write fails,
// and the next write-through subscription snapshot corrects any divergence.
type Session struct {
	userID string
	store  store.Store
	badge  BadgeSink
	cache  *redis.Client
	logger *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	items     []*notificationmodels.Notification
	unread    int
	errMsg    string
	sub       store.Subscription
	listeners map[int]chan Snapshot
	nextID    int
}

func newSession(userID string, st store.Store, badge BadgeSink, cache *redis.Client, logger *zap.SugaredLogger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		userID:    userID,
		store:     st,
		badge:     badge,
		cache:     cache,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		state:     StateUnauthenticated,
		listeners: make(map[int]chan Snapshot),
	}
}

// start issues the initial fetch and, on success, opens the live
// subscription. Only valid from Unauthenticated or Error.
func (s *Session) start(ctx context.Context) {
	s.mu.Lock()
	if s.state == StateLoading || s.state == StateReady {
		s.mu.Unlock()
		return
	}
	s.state = StateLoading
	s.errMsg = ""
	s.mu.Unlock()
	s.broadcast()

	items, err := s.store.List(ctx, s.userID, store.DefaultListLimit)
	if err != nil {
		s.logger.Errorw("feed initial fetch failed", "user_id", s.userID, "error", err)
		s.mu.Lock()
		s.state = StateError
		s.errMsg = "Failed to load notifications"
		s.mu.Unlock()
		s.broadcast()
		return
	}

	sub, err := s.store.Subscribe(s.ctx, s.userID)
	if err != nil {
		s.logger.Errorw("feed subscription failed", "user_id", s.userID, "error", err)
		s.mu.Lock()
		s.state = StateError
		s.errMsg = "Failed to load notifications"
		s.mu.Unlock()
		s.broadcast()
		return
	}

	s.mu.Lock()
	s.state = StateReady
	s.items = items
	s.unread = notificationmodels.UnreadCount(items)
	s.sub = sub
	unread := s.unread
	s.mu.Unlock()

	s.syncBadge(unread)
	s.broadcast()

	go s.consume(sub)
}

// Retry re-attempts the Loading transition after a failed fetch.
func (s *Session) Retry(ctx context.Context) {
	s.start(ctx)
}

func (s *Session) consume(sub store.Subscription) {
	for items := range sub.Snapshots() {
		s.apply(items)
	}
}

// apply installs a subscription snapshot, recomputes the unread count, and
// mirrors it to the badge.
func (s *Session) apply(items []*notificationmodels.Notification) {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return
	}
	s.items = items
	s.unread = notificationmodels.UnreadCount(items)
	unread := s.unread
	s.mu.Unlock()

	s.syncBadge(unread)
	s.broadcast()
}

// MarkAsRead delegates to the store, applies the change locally without
// waiting for the write-through snapshot, and re-syncs the badge. A write
// failure is logged; the optimistic local change stands.
func (s *Session) MarkAsRead(ctx context.Context, id string) error {
	err := s.store.MarkRead(ctx, id)
	if err != nil && err != store.ErrNotFound {
		s.logger.Warnw("mark-read write failed", "user_id", s.userID, "notification_id", id, "error", err)
	}

	// Snapshots share record pointers with listeners, so the optimistic
	// change replaces the record instead of mutating it in place.
	now := time.Now()
	s.mu.Lock()
	changed := false
	for i, item := range s.items {
		if item.ID == id && !item.IsRead {
			read := *item
			read.IsRead = true
			read.ReadAt = &now
			s.items[i] = &read
			changed = true
		}
	}
	if changed {
		s.unread = notificationmodels.UnreadCount(s.items)
	}
	unread := s.unread
	s.mu.Unlock()

	if changed {
		s.syncBadge(unread)
		s.broadcast()
	}
	return err
}

// DeleteNotification delegates to the store with the same optimistic local
// removal.
func (s *Session) DeleteNotification(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if err != nil {
		s.logger.Warnw("delete write failed", "user_id", s.userID, "notification_id", id, "error", err)
	}

	s.mu.Lock()
	changed := false
	kept := make([]*notificationmodels.Notification, 0, len(s.items))
	for _, item := range s.items {
		if item.ID == id {
			changed = true
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	if changed {
		s.unread = notificationmodels.UnreadCount(s.items)
	}
	unread := s.unread
	s.mu.Unlock()

	if changed {
		s.syncBadge(unread)
		s.broadcast()
	}
	return err
}

// ClearAll deletes every record for the user and clears the badge
// unconditionally, even if some deletes are still draining.
func (s *Session) ClearAll(ctx context.Context) error {
	err := s.store.DeleteAllForUser(ctx, s.userID)
	if err != nil {
		s.logger.Warnw("clear-all incomplete", "user_id", s.userID, "error", err)
	}

	s.mu.Lock()
	s.items = nil
	s.unread = 0
	s.mu.Unlock()

	s.badge.ClearBadge(s.ctx, s.userID)
	s.cacheUnread(0)
	s.broadcast()
	return err
}

// HandlePushReceipt reconciles unread state when the user acts on a system
// notification: a payload referencing a notification marks it read.
func (s *Session) HandlePushReceipt(ctx context.Context, data map[string]string) {
	id := data["notificationId"]
	if id == "" {
		return
	}
	if err := s.MarkAsRead(ctx, id); err != nil && err != store.ErrNotFound {
		s.logger.Warnw("push receipt mark-read failed", "user_id", s.userID, "notification_id", id, "error", err)
	}
}

// Snapshot returns the current feed view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	items := make([]*notificationmodels.Notification, len(s.items))
	copy(items, s.items)
	return Snapshot{
		State:         s.state,
		Notifications: items,
		UnreadCount:   s.unread,
		Error:         s.errMsg,
	}
}

// UnreadCount is the latest derived unread count.
func (s *Session) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Listen registers a snapshot listener (used by the SSE stream). The current
// snapshot is delivered immediately; afterwards a newer snapshot replaces an
// unconsumed one. The returned cancel func is idempotent.
func (s *Session) Listen() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// ListenerCount reports how many stream listeners are attached.
func (s *Session) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

func (s *Session) broadcast() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	for _, ch := range s.listeners {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	s.mu.Unlock()
}

// close tears the session down: unsubscribe (idempotent), reset to
// Unauthenticated with an empty list.
func (s *Session) close() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.state = StateUnauthenticated
	s.items = nil
	s.unread = 0
	s.errMsg = ""
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	s.cancel()
	s.broadcast()
}

func (s *Session) syncBadge(count int) {
	s.badge.SetBadge(s.ctx, s.userID, count)
	s.cacheUnread(count)
}

// cacheUnread mirrors the latest derivation to Redis so unread-count reads
// do not need a store query while a session is live. The mirror is a cache
// of a derived value, never an independently maintained counter.
func (s *Session) cacheUnread(count int) {
	if s.cache == nil {
		return
	}
	key := unreadCacheKey(s.userID)
	if err := s.cache.Set(s.ctx, key, count, unreadCacheTTL).Err(); err != nil {
		s.logger.Debugw("failed to cache unread count", "user_id", s.userID, "error", err)
	}
}

func unreadCacheKey(userID string) string {
	return fmt.Sprintf("unread_count:%s", userID)
}
