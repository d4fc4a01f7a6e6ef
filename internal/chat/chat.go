package chat

import (
	"fmt"
	"time"

	stream "github.com/GetStream/stream-chat-go/v5"
)

// Service wraps the Stream Chat client used for the coach messaging
// channel: token provisioning for the mobile app and webhook verification.
type Service struct {
	client *stream.Client
}

func NewService(apiKey, apiSecret string) (*Service, error) {
	client, err := stream.NewClient(apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create Stream Chat client: %w", err)
	}
	return &Service{client: client}, nil
}

// UserToken issues a non-expiring Stream Chat token for the user.
func (s *Service) UserToken(userID string) (string, error) {
	token, err := s.client.CreateToken(userID, time.Time{})
	if err != nil {
		return "", fmt.Errorf("failed to create chat token: %w", err)
	}
	return token, nil
}

// VerifyWebhook checks the X-Signature header Stream attaches to webhook
// deliveries against the raw request body.
func (s *Service) VerifyWebhook(body, signature []byte) bool {
	return s.client.VerifyWebhook(body, signature)
}
