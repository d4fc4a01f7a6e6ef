package push

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ExpoSender is the batch gateway transport. Implemented by ExpoClient.
type ExpoSender interface {
	Send(ctx context.Context, tokens []string, msg Message) (invalid []string, err error)
}

// Service fans a push out to every active token of a user, routing Expo
// tokens through the gateway in a single batch and the rest through FCM.
type Service struct {
	registry *Registry
	expo     ExpoSender
	fcm      FCMSender
	logger   *zap.SugaredLogger
}

func NewService(registry *Registry, expo ExpoSender, fcm FCMSender, logger *zap.SugaredLogger) *Service {
	return &Service{registry: registry, expo: expo, fcm: fcm, logger: logger}
}

// PushToUser sends a visible notification to all of the user's devices.
// No active tokens means push is unavailable for the user, which is not an
// error.
func (s *Service) PushToUser(ctx context.Context, userID, title, body string, data map[string]string, priority, channel string) error {
	return s.send(ctx, userID, Message{
		Title:    title,
		Body:     body,
		Data:     data,
		Priority: priority,
		Channel:  channel,
	})
}

// PushBadge overwrites the OS badge on all of the user's devices with count
// via a silent push. Each sync carries the full value, never a delta.
func (s *Service) PushBadge(ctx context.Context, userID string, count int) error {
	return s.send(ctx, userID, Message{
		Data:   map[string]string{"type": "badge_sync"},
		Badge:  &count,
		Silent: true,
	})
}

func (s *Service) send(ctx context.Context, userID string, msg Message) error {
	tokens, err := s.registry.ActiveTokens(ctx, userID)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	var expoTokens []string
	var fcmTokens []string
	for _, t := range tokens {
		if IsExpoToken(t.Token) {
			expoTokens = append(expoTokens, t.Token)
		} else {
			fcmTokens = append(fcmTokens, t.Token)
		}
	}

	var firstErr error

	if len(expoTokens) > 0 && s.expo != nil {
		invalid, err := s.expo.Send(ctx, expoTokens, msg)
		if err != nil {
			firstErr = err
		}
		for _, token := range invalid {
			if err := s.registry.DeactivateToken(ctx, userID, token); err != nil {
				s.logger.Warnw("failed to deactivate dead token", "user_id", userID, "error", err)
			} else {
				s.logger.Infow("deactivated unregistered push token", "user_id", userID)
			}
		}
	}

	if s.fcm != nil {
		for _, token := range fcmTokens {
			if err := s.fcm.Send(ctx, token, msg); err != nil {
				s.logger.Warnw("FCM send failed", "user_id", userID, "error", err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}

	if firstErr != nil {
		return fmt.Errorf("push send incomplete for user %s: %w", userID, firstErr)
	}
	return nil
}
