package push

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// FCMSender delivers a push to a single non-Expo device token.
type FCMSender interface {
	Send(ctx context.Context, token string, msg Message) error
}

// FCMClient sends through Firebase Cloud Messaging. The APNS badge field
// carries the unread count when the message sets one.
type FCMClient struct {
	client *messaging.Client
}

func NewFCMClient(client *messaging.Client) *FCMClient {
	return &FCMClient{client: client}
}

func (c *FCMClient) Send(ctx context.Context, token string, msg Message) error {
	if c.client == nil {
		return fmt.Errorf("FCM client not initialized")
	}

	aps := &messaging.Aps{
		Badge: msg.Badge,
	}
	if !msg.Silent {
		aps.Alert = &messaging.ApsAlert{
			Title: msg.Title,
			Body:  msg.Body,
		}
		aps.Sound = "default"
	} else {
		aps.ContentAvailable = true
	}

	message := &messaging.Message{
		Token: token,
		Data:  msg.Data,
		Android: &messaging.AndroidConfig{
			Notification: &messaging.AndroidNotification{
				ChannelID: msg.Channel,
				Priority:  fcmPriority(msg.Priority),
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{Aps: aps},
		},
	}
	if !msg.Silent {
		message.Notification = &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		}
	}

	if _, err := c.client.Send(ctx, message); err != nil {
		return fmt.Errorf("error sending FCM message: %w", err)
	}
	return nil
}

func fcmPriority(p string) messaging.AndroidNotificationPriority {
	switch p {
	case "high":
		return messaging.PriorityHigh
	case "low":
		return messaging.PriorityLow
	default:
		return messaging.PriorityDefault
	}
}
