package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultExpoPushURL = "https://exp.host/--/api/v2/push/send"

// IsExpoToken reports whether token is addressed through the Expo push
// gateway rather than FCM directly.
func IsExpoToken(token string) bool {
	return strings.HasPrefix(token, "ExponentPushToken") || strings.HasPrefix(token, "ExpoPushToken")
}

// expoPushMessage is one element of the gateway request body.
type expoPushMessage struct {
	To        string            `json:"to"`
	Title     string            `json:"title,omitempty"`
	Body      string            `json:"body,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	Priority  string            `json:"priority,omitempty"`
	ChannelID string            `json:"channelId,omitempty"`
	Sound     string            `json:"sound,omitempty"`
	Badge     *int              `json:"badge,omitempty"`
}

type expoPushTicket struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details struct {
		Error string `json:"error"`
	} `json:"details"`
}

type expoPushResponse struct {
	Data []expoPushTicket `json:"data"`
}

// ExpoClient sends batches of push messages through the Expo gateway with a
// single HTTP POST, one body element per token.
type ExpoClient struct {
	url    string
	client *http.Client
	logger *zap.SugaredLogger
}

func NewExpoClient(url string, logger *zap.SugaredLogger) *ExpoClient {
	if url == "" {
		url = DefaultExpoPushURL
	}
	return &ExpoClient{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Send pushes msg to every token in one request. It returns the subset of
// tokens the gateway reported as no longer registered, so the caller can
// deactivate them instead of leaving dead tokens active indefinitely.
func (c *ExpoClient) Send(ctx context.Context, tokens []string, msg Message) (invalid []string, err error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	payload := make([]expoPushMessage, 0, len(tokens))
	for _, token := range tokens {
		payload = append(payload, expoPushMessage{
			To:        token,
			Title:     msg.Title,
			Body:      msg.Body,
			Data:      msg.Data,
			Priority:  expoPriority(msg.Priority),
			ChannelID: msg.Channel,
			Sound:     msg.sound(),
			Badge:     msg.Badge,
		})
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode expo push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("expo push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("expo push failed with status %d", resp.StatusCode)
	}

	var parsed expoPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		// Delivery likely succeeded; only the ticket inspection is lost.
		c.logger.Warnw("failed to decode expo push response", "error", err)
		return nil, nil
	}

	for i, ticket := range parsed.Data {
		if i >= len(tokens) {
			break
		}
		if ticket.Status == "error" {
			c.logger.Warnw("expo push ticket error",
				"token", tokens[i],
				"message", ticket.Message,
				"detail", ticket.Details.Error,
			)
			if ticket.Details.Error == "DeviceNotRegistered" {
				invalid = append(invalid, tokens[i])
			}
		}
	}

	return invalid, nil
}

// expoPriority maps the record priority onto the gateway's default/normal/high.
func expoPriority(p string) string {
	switch p {
	case "high":
		return "high"
	case "low":
		return "normal"
	default:
		return "default"
	}
}
