package push

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pushmodels "io.revoapps.revofit/internal/models/push"
)

// fakeTokenRepo keys rows by (user_id, token), matching the unique
// constraint on the real table.
type fakeTokenRepo struct {
	mu   sync.Mutex
	seq  int
	rows map[string]*pushmodels.PushToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{rows: make(map[string]*pushmodels.PushToken)}
}

func repoKey(userID, token string) string { return userID + "\x00" + token }

func (r *fakeTokenRepo) Upsert(ctx context.Context, t *pushmodels.PushToken) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := repoKey(t.UserID, t.Token)
	if existing, ok := r.rows[key]; ok {
		existing.Platform = t.Platform
		existing.Timezone = t.Timezone
		existing.Active = true
		return existing.ID, nil
	}
	r.seq++
	row := *t
	row.ID = fmt.Sprintf("tok%03d", r.seq)
	row.Active = true
	r.rows[key] = &row
	return row.ID, nil
}

func (r *fakeTokenRepo) Deactivate(ctx context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[repoKey(userID, token)]; ok {
		row.Active = false
	}
	return nil
}

func (r *fakeTokenRepo) DeactivateAll(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.UserID == userID {
			row.Active = false
		}
	}
	return nil
}

func (r *fakeTokenRepo) ActiveTokens(ctx context.Context, userID string) ([]*pushmodels.PushToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*pushmodels.PushToken
	for _, row := range r.rows {
		if row.UserID == userID && row.Active {
			c := *row
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func TestRegisterDeviceIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTokenRepo()
	registry := NewRegistry(repo, nil, zap.NewNop().Sugar())

	reg := DeviceRegistration{
		UserID:            "u1",
		Token:             "ExponentPushToken[abc]",
		Platform:          pushmodels.PlatformIOS,
		Timezone:          "America/New_York",
		PermissionGranted: true,
	}

	first, err := registry.RegisterDevice(ctx, reg)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := registry.RegisterDevice(ctx, reg)
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.ID, second.ID, "re-registering the same token must update, not insert")
	assert.Equal(t, 1, repo.count())

	tokens, err := registry.ActiveTokens(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.True(t, tokens[0].Active)
}

func TestRegisterDevicePermissionDenied(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTokenRepo()
	registry := NewRegistry(repo, nil, zap.NewNop().Sugar())

	// Denial is "push unavailable", not an error
	token, err := registry.RegisterDevice(ctx, DeviceRegistration{
		UserID:            "u1",
		Token:             "ExponentPushToken[abc]",
		Platform:          pushmodels.PlatformIOS,
		PermissionGranted: false,
	})
	require.NoError(t, err)
	assert.Nil(t, token)
	assert.Equal(t, 0, repo.count())

	// Same for a device that produced no token
	token, err = registry.RegisterDevice(ctx, DeviceRegistration{
		UserID:            "u1",
		Platform:          pushmodels.PlatformAndroid,
		PermissionGranted: true,
	})
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestRegisterDeviceUnknownPlatform(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(newFakeTokenRepo(), nil, zap.NewNop().Sugar())

	_, err := registry.RegisterDevice(ctx, DeviceRegistration{
		UserID:            "u1",
		Token:             "ExponentPushToken[abc]",
		Platform:          "windows",
		PermissionGranted: true,
	})
	assert.Error(t, err)
}

func TestSignOutDeactivatesWithoutDeleting(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTokenRepo()
	registry := NewRegistry(repo, nil, zap.NewNop().Sugar())

	for _, tok := range []string{"ExponentPushToken[a]", "ExponentPushToken[b]"} {
		_, err := registry.RegisterDevice(ctx, DeviceRegistration{
			UserID:            "u1",
			Token:             tok,
			Platform:          pushmodels.PlatformAndroid,
			PermissionGranted: true,
		})
		require.NoError(t, err)
	}

	require.NoError(t, registry.SignOut(ctx, "u1"))

	tokens, err := registry.ActiveTokens(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, tokens)
	assert.Equal(t, 2, repo.count(), "sign-out must deactivate, never delete")
}
