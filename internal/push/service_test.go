package push

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pushmodels "io.revoapps.revofit/internal/models/push"
)

type fakeExpoSender struct {
	mu      sync.Mutex
	sends   [][]string
	lastMsg Message
	invalid []string
}

func (f *fakeExpoSender) Send(ctx context.Context, tokens []string, msg Message) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, tokens)
	f.lastMsg = msg
	return f.invalid, nil
}

type fakeFCMSender struct {
	mu     sync.Mutex
	tokens []string
}

func (f *fakeFCMSender) Send(ctx context.Context, token string, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return nil
}

func registerToken(t *testing.T, registry *Registry, userID, token, platform string) {
	t.Helper()
	_, err := registry.RegisterDevice(context.Background(), DeviceRegistration{
		UserID:            userID,
		Token:             token,
		Platform:          platform,
		PermissionGranted: true,
	})
	require.NoError(t, err)
}

func TestPushToUserSplitsTransports(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTokenRepo()
	registry := NewRegistry(repo, nil, zap.NewNop().Sugar())
	expo := &fakeExpoSender{}
	fcm := &fakeFCMSender{}
	svc := NewService(registry, expo, fcm, zap.NewNop().Sugar())

	registerToken(t, registry, "u1", "ExponentPushToken[a]", pushmodels.PlatformIOS)
	registerToken(t, registry, "u1", "fcm-token-1", pushmodels.PlatformAndroid)

	err := svc.PushToUser(ctx, "u1", "Title", "Body", map[string]string{"k": "v"}, "high", "activity")
	require.NoError(t, err)

	require.Len(t, expo.sends, 1)
	assert.Equal(t, []string{"ExponentPushToken[a]"}, expo.sends[0])
	assert.Equal(t, "Title", expo.lastMsg.Title)
	assert.Equal(t, []string{"fcm-token-1"}, fcm.tokens)
}

func TestPushToUserNoTokensIsNotAnError(t *testing.T) {
	registry := NewRegistry(newFakeTokenRepo(), nil, zap.NewNop().Sugar())
	expo := &fakeExpoSender{}
	svc := NewService(registry, expo, nil, zap.NewNop().Sugar())

	err := svc.PushToUser(context.Background(), "nobody", "t", "b", nil, "normal", "general")
	require.NoError(t, err)
	assert.Empty(t, expo.sends)
}

func TestPushDeactivatesDeadTokens(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTokenRepo()
	registry := NewRegistry(repo, nil, zap.NewNop().Sugar())
	expo := &fakeExpoSender{invalid: []string{"ExponentPushToken[dead]"}}
	svc := NewService(registry, expo, nil, zap.NewNop().Sugar())

	registerToken(t, registry, "u1", "ExponentPushToken[dead]", pushmodels.PlatformIOS)
	registerToken(t, registry, "u1", "ExponentPushToken[live]", pushmodels.PlatformIOS)

	require.NoError(t, svc.PushToUser(ctx, "u1", "t", "b", nil, "normal", "general"))

	tokens, err := registry.ActiveTokens(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "ExponentPushToken[live]", tokens[0].Token)
}

func TestPushBadgeIsSilentOverwrite(t *testing.T) {
	ctx := context.Background()
	registry := NewRegistry(newFakeTokenRepo(), nil, zap.NewNop().Sugar())
	expo := &fakeExpoSender{}
	svc := NewService(registry, expo, nil, zap.NewNop().Sugar())

	registerToken(t, registry, "u1", "ExponentPushToken[a]", pushmodels.PlatformIOS)

	require.NoError(t, svc.PushBadge(ctx, "u1", 7))

	require.Len(t, expo.sends, 1)
	require.NotNil(t, expo.lastMsg.Badge)
	assert.Equal(t, 7, *expo.lastMsg.Badge)
	assert.True(t, expo.lastMsg.Silent)
	assert.Empty(t, expo.lastMsg.Title)
}
