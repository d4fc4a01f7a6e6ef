package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	pushmodels "io.revoapps.revofit/internal/models/push"
)

const tokenCacheTTL = 24 * time.Hour

// TokenRepository persists device push registrations. Upsert must be keyed
// by (user_id, token): re-registering an existing token updates the row in
// place rather than inserting a duplicate.
type TokenRepository interface {
	Upsert(ctx context.Context, token *pushmodels.PushToken) (string, error)
	Deactivate(ctx context.Context, userID, token string) error
	DeactivateAll(ctx context.Context, userID string) error
	ActiveTokens(ctx context.Context, userID string) ([]*pushmodels.PushToken, error)
}

// DeviceRegistration is the outcome of the device-side permission flow.
type DeviceRegistration struct {
	UserID            string
	Token             string
	Platform          string
	Timezone          string
	PermissionGranted bool
}

// Registry owns the push-token lifecycle: idempotent registration,
// deactivation on sign-out, and the active-token lookup used by every send.
type Registry struct {
	repo   TokenRepository
	cache  *redis.Client
	logger *zap.SugaredLogger
}

func NewRegistry(repo TokenRepository, cache *redis.Client, logger *zap.SugaredLogger) *Registry {
	return &Registry{repo: repo, cache: cache, logger: logger}
}

// RegisterDevice records a device token for the user. A denied permission or
// missing token is not an error: it returns (nil, nil) and the caller treats
// the absence of a token as "push unavailable".
func (r *Registry) RegisterDevice(ctx context.Context, reg DeviceRegistration) (*pushmodels.PushToken, error) {
	if !reg.PermissionGranted || reg.Token == "" {
		r.logger.Infow("device registered without push capability", "user_id", reg.UserID)
		return nil, nil
	}
	if !pushmodels.ValidPlatform(reg.Platform) {
		return nil, fmt.Errorf("unsupported platform %q", reg.Platform)
	}
	if reg.Timezone == "" {
		reg.Timezone = "UTC"
	}

	token := &pushmodels.PushToken{
		UserID:   reg.UserID,
		Token:    reg.Token,
		Platform: reg.Platform,
		Timezone: reg.Timezone,
		Active:   true,
	}

	id, err := r.repo.Upsert(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to save push token: %w", err)
	}
	token.ID = id

	r.invalidateCache(ctx, reg.UserID)
	return token, nil
}

// SignOut marks every token for the user inactive. Rows are never deleted,
// preserving registration history.
func (r *Registry) SignOut(ctx context.Context, userID string) error {
	if err := r.repo.DeactivateAll(ctx, userID); err != nil {
		return fmt.Errorf("failed to deactivate push tokens: %w", err)
	}
	r.invalidateCache(ctx, userID)
	return nil
}

// DeactivateToken retires a single token, typically after the gateway
// reported it as no longer registered.
func (r *Registry) DeactivateToken(ctx context.Context, userID, token string) error {
	if err := r.repo.Deactivate(ctx, userID, token); err != nil {
		return err
	}
	r.invalidateCache(ctx, userID)
	return nil
}

// ActiveTokens returns the user's active tokens, Redis cache first.
func (r *Registry) ActiveTokens(ctx context.Context, userID string) ([]*pushmodels.PushToken, error) {
	key := tokenCacheKey(userID)

	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, key).Result(); err == nil {
			var tokens []*pushmodels.PushToken
			if err := json.Unmarshal([]byte(cached), &tokens); err == nil {
				return tokens, nil
			}
		}
	}

	tokens, err := r.repo.ActiveTokens(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load push tokens: %w", err)
	}

	if r.cache != nil {
		if b, err := json.Marshal(tokens); err == nil {
			r.cache.Set(ctx, key, b, tokenCacheTTL)
		}
	}
	return tokens, nil
}

func (r *Registry) invalidateCache(ctx context.Context, userID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, tokenCacheKey(userID)).Err(); err != nil {
		r.logger.Warnw("failed to invalidate token cache", "user_id", userID, "error", err)
	}
}

func tokenCacheKey(userID string) string {
	return fmt.Sprintf("push_tokens:%s", userID)
}
