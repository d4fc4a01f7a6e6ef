package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	notificationmodels "io.revoapps.revofit/internal/models/notification"
	"io.revoapps.revofit/internal/store"
)

// fakeStore is an in-memory Store that mirrors the backend contract:
// newest-first lists, idempotent mark-read, and write-through snapshots
// delivered to live subscriptions after every mutation.
type fakeStore struct {
	mu             sync.Mutex
	seq            int
	items          map[string]*notificationmodels.Notification
	subs           []*fakeSub
	listErr        error
	markReadWrites map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:          make(map[string]*notificationmodels.Notification),
		markReadWrites: make(map[string]int),
	}
}

func (f *fakeStore) Create(ctx context.Context, in store.CreateInput) (string, error) {
	f.mu.Lock()
	f.seq++
	id := fmt.Sprintf("n%03d", f.seq)
	f.items[id] = &notificationmodels.Notification{
		ID:        id,
		UserID:    in.UserID,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		Data:      in.Data,
		Priority:  in.Priority,
		CreatedAt: time.Unix(1700000000, 0).Add(time.Duration(f.seq) * time.Second),
	}
	f.mu.Unlock()
	f.publish(in.UserID)
	return id, nil
}

func (f *fakeStore) List(ctx context.Context, userID string, limit int) ([]*notificationmodels.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listLocked(userID), nil
}

func (f *fakeStore) listLocked(userID string) []*notificationmodels.Notification {
	var out []*notificationmodels.Notification
	for _, n := range f.items {
		if n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeStore) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	n, ok := f.items[id]
	if !ok {
		f.mu.Unlock()
		return store.ErrNotFound
	}
	userID := n.UserID
	if !n.IsRead {
		now := time.Now()
		n.IsRead = true
		n.ReadAt = &now
		f.markReadWrites[id]++
	}
	f.mu.Unlock()
	f.publish(userID)
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	n, ok := f.items[id]
	var userID string
	if ok {
		userID = n.UserID
		delete(f.items, id)
	}
	f.mu.Unlock()
	if ok {
		f.publish(userID)
	}
	return nil
}

func (f *fakeStore) DeleteAllForUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	for id, n := range f.items {
		if n.UserID == userID {
			delete(f.items, id)
		}
	}
	f.mu.Unlock()
	f.publish(userID)
	return nil
}

func (f *fakeStore) Subscribe(ctx context.Context, userID string) (store.Subscription, error) {
	sub := &fakeSub{
		userID: userID,
		ch:     make(chan []*notificationmodels.Notification, 1),
	}
	f.mu.Lock()
	f.subs = append(f.subs, sub)
	f.mu.Unlock()
	return sub, nil
}

func (f *fakeStore) publish(userID string) {
	f.mu.Lock()
	items := f.listLocked(userID)
	subs := make([]*fakeSub, len(f.subs))
	copy(subs, f.subs)
	f.mu.Unlock()

	for _, sub := range subs {
		if sub.userID == userID {
			sub.deliver(items)
		}
	}
}

type fakeSub struct {
	userID     string
	ch         chan []*notificationmodels.Notification
	unsubCalls int
	once       sync.Once
	mu         sync.Mutex
}

func (s *fakeSub) Snapshots() <-chan []*notificationmodels.Notification { return s.ch }

func (s *fakeSub) Unsubscribe() {
	s.mu.Lock()
	s.unsubCalls++
	s.mu.Unlock()
	s.once.Do(func() { close(s.ch) })
}

func (s *fakeSub) deliver(items []*notificationmodels.Notification) {
	select {
	case s.ch <- items:
	default:
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

// fakeBadge records every badge write in order.
type fakeBadge struct {
	mu    sync.Mutex
	calls []int
}

func (b *fakeBadge) SetBadge(ctx context.Context, userID string, count int) {
	b.mu.Lock()
	b.calls = append(b.calls, count)
	b.mu.Unlock()
}

func (b *fakeBadge) ClearBadge(ctx context.Context, userID string) {
	b.SetBadge(ctx, userID, 0)
}

func (b *fakeBadge) last() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.calls) == 0 {
		return 0, false
	}
	return b.calls[len(b.calls)-1], true
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func waitForUnread(t *testing.T, s *Session, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.UnreadCount() == want
	}, 2*time.Second, 5*time.Millisecond, "unread count never reached %d", want)
}

func TestUnreadLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	bd := &fakeBadge{}
	m := NewManager(st, bd, nil, testLogger())

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := st.Create(ctx, store.CreateInput{
			UserID:  "u1",
			Type:    notificationmodels.TypeWorkout,
			Title:   fmt.Sprintf("Workout %d", i),
			Message: "Done!",
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	s := m.Session(ctx, "u1")
	require.Equal(t, StateReady, s.State())
	assert.Equal(t, 3, s.UnreadCount())

	require.NoError(t, s.MarkAsRead(ctx, ids[0]))
	waitForUnread(t, s, 2)

	require.NoError(t, s.ClearAll(ctx))
	waitForUnread(t, s, 0)

	items, err := st.List(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, s.Snapshot().Notifications)
}

func TestBadgeMirrorsFeed(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	bd := &fakeBadge{}
	m := NewManager(st, bd, nil, testLogger())

	for i := 0; i < 2; i++ {
		_, err := st.Create(ctx, store.CreateInput{UserID: "u1", Type: notificationmodels.TypeSystem, Title: "t", Message: "m"})
		require.NoError(t, err)
	}

	s := m.Session(ctx, "u1")
	waitForUnread(t, s, 2)

	// Three more arrive through the subscription: 2 -> 5
	for i := 0; i < 3; i++ {
		_, err := st.Create(ctx, store.CreateInput{UserID: "u1", Type: notificationmodels.TypeCoach, Title: "t", Message: "m"})
		require.NoError(t, err)
	}
	waitForUnread(t, s, 5)

	require.Eventually(t, func() bool {
		last, ok := bd.last()
		return ok && last == 5
	}, 2*time.Second, 5*time.Millisecond, "badge did not settle on the latest unread count")
}

func TestMarkAsReadIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	m := NewManager(st, &fakeBadge{}, nil, testLogger())

	id, err := st.Create(ctx, store.CreateInput{UserID: "u1", Type: notificationmodels.TypeReminder, Title: "t", Message: "m"})
	require.NoError(t, err)

	s := m.Session(ctx, "u1")
	require.NoError(t, s.MarkAsRead(ctx, id))
	require.NoError(t, s.MarkAsRead(ctx, id))

	st.mu.Lock()
	writes := st.markReadWrites[id]
	readAt := st.items[id].ReadAt
	isRead := st.items[id].IsRead
	st.mu.Unlock()

	assert.True(t, isRead)
	assert.NotNil(t, readAt)
	assert.Equal(t, 1, writes, "readAt must be stamped exactly once")
}

func TestSnapshotImmutableUnderMutation(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	m := NewManager(st, &fakeBadge{}, nil, testLogger())

	id, err := st.Create(ctx, store.CreateInput{UserID: "u1", Type: notificationmodels.TypeSystem, Title: "t", Message: "m"})
	require.NoError(t, err)

	s := m.Session(ctx, "u1")
	waitForUnread(t, s, 1)

	// A delivered snapshot (as held by an SSE listener mid-serialization)
	// must not change when a later mutation lands.
	before := s.Snapshot()
	require.Len(t, before.Notifications, 1)

	done := make(chan bool)
	go func() {
		read := false
		for i := 0; i < 1000; i++ {
			read = before.Notifications[0].IsRead
		}
		done <- read
	}()

	require.NoError(t, s.MarkAsRead(ctx, id))
	<-done

	assert.False(t, before.Notifications[0].IsRead)
	assert.Nil(t, before.Notifications[0].ReadAt)
	assert.True(t, s.Snapshot().Notifications[0].IsRead)

	// Same for delete: the held snapshot keeps the record.
	held := s.Snapshot()
	require.NoError(t, s.DeleteNotification(ctx, id))
	assert.Len(t, held.Notifications, 1)
	assert.Empty(t, s.Snapshot().Notifications)
}

func TestMarkAsReadUnknownID(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	m := NewManager(st, &fakeBadge{}, nil, testLogger())

	s := m.Session(ctx, "u1")
	err := s.MarkAsRead(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateRoundTripOrdering(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()

	_, err := st.Create(ctx, store.CreateInput{UserID: "u1", Type: notificationmodels.TypeSystem, Title: "old", Message: "m"})
	require.NoError(t, err)
	newest, err := st.Create(ctx, store.CreateInput{UserID: "u1", Type: notificationmodels.TypeSystem, Title: "new", Message: "m"})
	require.NoError(t, err)

	items, err := st.List(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newest, items[0].ID, "newest record must come first")
}

func TestInitialLoadErrorAndRetry(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.listErr = errors.New("backend unreachable")
	m := NewManager(st, &fakeBadge{}, nil, testLogger())

	s := m.Session(ctx, "u1")
	require.Equal(t, StateError, s.State())
	assert.NotEmpty(t, s.Snapshot().Error)

	st.mu.Lock()
	st.listErr = nil
	st.mu.Unlock()

	s.Retry(ctx)
	require.Equal(t, StateReady, s.State())
}

func TestPushReceiptMarksRead(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	m := NewManager(st, &fakeBadge{}, nil, testLogger())

	id, err := st.Create(ctx, store.CreateInput{UserID: "u1", Type: notificationmodels.TypeMessage, Title: "t", Message: "m"})
	require.NoError(t, err)

	s := m.Session(ctx, "u1")
	waitForUnread(t, s, 1)

	s.HandlePushReceipt(ctx, map[string]string{"notificationId": id})
	waitForUnread(t, s, 0)

	// Payload without a reference is ignored
	s.HandlePushReceipt(ctx, map[string]string{"type": "badge_sync"})
	assert.Equal(t, 0, s.UnreadCount())
}

func TestSignOutTeardown(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	m := NewManager(st, &fakeBadge{}, nil, testLogger())

	_, err := st.Create(ctx, store.CreateInput{UserID: "u1", Type: notificationmodels.TypeSystem, Title: "t", Message: "m"})
	require.NoError(t, err)

	s := m.Session(ctx, "u1")
	require.Equal(t, StateReady, s.State())

	m.Close("u1")
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Empty(t, s.Snapshot().Notifications)
	assert.Equal(t, 0, s.UnreadCount())

	// Unsubscribe must stay safe to call after teardown
	st.mu.Lock()
	sub := st.subs[0]
	st.mu.Unlock()
	sub.Unsubscribe()
	sub.Unsubscribe()
}

func TestListenerReceivesSnapshots(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	m := NewManager(st, &fakeBadge{}, nil, testLogger())

	s := m.Session(ctx, "u1")
	ch, cancel := s.Listen()
	defer cancel()

	// The current snapshot arrives immediately
	select {
	case snap := <-ch:
		assert.Equal(t, StateReady, snap.State)
		assert.Equal(t, 0, snap.UnreadCount)
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	_, err := st.Create(ctx, store.CreateInput{UserID: "u1", Type: notificationmodels.TypeWorkout, Title: "t", Message: "m"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		select {
		case snap := <-ch:
			return snap.UnreadCount == 1
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	cancel() // idempotent
	assert.Equal(t, 0, s.ListenerCount())
}
