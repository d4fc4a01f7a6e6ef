package feed

import (
	"context"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	notificationmodels "io.revoapps.revofit/internal/models/notification"
	"io.revoapps.revofit/internal/store"
)

// Manager owns the per-user feed sessions. A session is started lazily on
// first use and torn down on sign-out.
type Manager struct {
	store  store.Store
	badge  BadgeSink
	cache  *redis.Client
	logger *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(st store.Store, badge BadgeSink, cache *redis.Client, logger *zap.SugaredLogger) *Manager {
	return &Manager{
		store:    st,
		badge:    badge,
		cache:    cache,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Session returns the user's feed session, starting one if needed. The
// start is synchronous: on return the session is Ready or Error.
func (m *Manager) Session(ctx context.Context, userID string) *Session {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if !ok {
		s = newSession(userID, m.store, m.badge, m.cache, m.logger)
		m.sessions[userID] = s
	}
	m.mu.Unlock()

	if s.State() == StateUnauthenticated || s.State() == StateError {
		s.start(ctx)
	}
	return s
}

// Close tears down the user's session, if any. Called on sign-out.
func (m *Manager) Close(userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	if ok {
		s.close()
	}
}

// CloseAll tears down every live session. Called on server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

// UnreadCount answers without forcing a session: a live Ready session wins,
// then the Redis mirror of the last derivation, then a store fetch.
func (m *Manager) UnreadCount(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if ok && s.State() == StateReady {
		return s.UnreadCount(), nil
	}

	if m.cache != nil {
		if cached, err := m.cache.Get(ctx, unreadCacheKey(userID)).Result(); err == nil {
			if n, err := strconv.Atoi(cached); err == nil {
				return n, nil
			}
		}
	}

	items, err := m.store.List(ctx, userID, store.DefaultListLimit)
	if err != nil {
		return 0, err
	}
	return notificationmodels.UnreadCount(items), nil
}
